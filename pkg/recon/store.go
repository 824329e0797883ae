package recon

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/latentscope/pkg/dataset"
	"github.com/matzehuels/latentscope/pkg/errors"
	"github.com/matzehuels/latentscope/pkg/latent"
	"github.com/matzehuels/latentscope/pkg/observability"
	"github.com/matzehuels/latentscope/pkg/source"
)

type defaultsKey struct{}

type (
	// DefaultsJob fetches the shared defaults table.
	DefaultsJob = Job[defaultsKey, *dataset.Defaults]
	// DefaultsResult is the outcome of a DefaultsJob.
	DefaultsResult = Result[defaultsKey, *dataset.Defaults]
	// TreeJob fetches one sample's reconstruction tree.
	TreeJob = Job[int, *dataset.Tree]
	// TreeResult is the outcome of a TreeJob.
	TreeResult = Result[int, *dataset.Tree]
)

// Store holds the defaults table and the reconstruction trees of one
// explorer session. Like [Loader], it belongs to a single event loop.
type Store struct {
	defaults *Loader[defaultsKey, *dataset.Defaults]
	trees    *Loader[int, *dataset.Tree]
	logger   *log.Logger
}

// NewStore returns a store that fetches from src.
func NewStore(src source.Source, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		defaults: NewLoader[defaultsKey, *dataset.Defaults](func(ctx context.Context, _ defaultsKey) (*dataset.Defaults, error) {
			return src.Defaults(ctx)
		}),
		trees:  NewLoader[int, *dataset.Tree](src.Tree),
		logger: logger,
	}
}

// Defaults requests the defaults table.
func (s *Store) Defaults() (Lookup[*dataset.Defaults], *DefaultsJob) {
	l, job := s.defaults.Request(defaultsKey{})
	if job != nil {
		s.logger.Debug("fetching defaults", "ticket", job.Ticket)
	}
	return l, job
}

// ResolveDefaults records a finished defaults fetch.
func (s *Store) ResolveDefaults(r DefaultsResult) Lookup[*dataset.Defaults] {
	l, ok := s.defaults.Resolve(r)
	s.logResolve("defaults", r.Ticket, ok, r.Err)
	return l
}

// Sample returns the normalized original text and default vector of a
// sample, or a pending/unavailable lookup while the table is not loaded.
func (s *Store) Sample(sample int) (text string, v latent.Vector, l Lookup[*dataset.Defaults]) {
	l = s.defaults.Peek(defaultsKey{})
	if !l.Ready() {
		return "", nil, l
	}
	text, v, err := l.Value.Sample(sample)
	if err != nil {
		return "", nil, Lookup[*dataset.Defaults]{Status: StatusUnavailable, Err: err}
	}
	return text, v, l
}

// Reconstruction looks up the text for (sample, v). On the first request
// for a sample it returns a job that must be run and resolved; while that
// job is outstanding further requests return StatusPending and no job.
func (s *Store) Reconstruction(sample int, v latent.Vector) (Lookup[string], *TreeJob) {
	tl, job := s.trees.Request(sample)
	if job != nil {
		s.logger.Debug("fetching tree", "sample", sample, "ticket", job.Ticket)
	}
	l := s.describe(sample, v, tl)
	observability.Fetch().OnLookup(context.Background(), l.Status.String())
	return l, job
}

// Peek returns the text for (sample, v) without starting a fetch.
func (s *Store) Peek(sample int, v latent.Vector) Lookup[string] {
	return s.describe(sample, v, s.trees.Peek(sample))
}

// ResolveTree records a finished tree fetch.
func (s *Store) ResolveTree(r TreeResult) {
	_, ok := s.trees.Resolve(r)
	s.logResolve("tree", r.Ticket, ok, r.Err, "sample", r.Key)
}

// Retry forgets a failed sample so the next request refetches it. A failed
// defaults table is forgotten as well.
func (s *Store) Retry(sample int) bool {
	d := s.defaults.Retry(defaultsKey{})
	t := s.trees.Retry(sample)
	return d || t
}

// Fetches returns the number of fetches issued for defaults and trees.
func (s *Store) Fetches() (defaults, trees int) {
	return s.defaults.Issued(), s.trees.Issued()
}

func (s *Store) describe(sample int, v latent.Vector, tl Lookup[*dataset.Tree]) Lookup[string] {
	switch tl.Status {
	case StatusLoaded:
	case StatusUnavailable:
		return Lookup[string]{Status: StatusUnavailable, Err: unavailable(sample, tl.Err)}
	default:
		return Lookup[string]{Status: tl.Status}
	}
	text, err := tl.Value.Reconstruction(v)
	if err != nil {
		return Lookup[string]{Status: StatusUnavailable, Err: unavailable(sample, err)}
	}
	return Lookup[string]{Status: StatusLoaded, Value: text}
}

func (s *Store) logResolve(what string, ticket any, applied bool, err error, kv ...any) {
	kv = append([]any{"ticket", ticket}, kv...)
	switch {
	case !applied:
		s.logger.Debug("ignoring unexpected "+what+" result", kv...)
	case err != nil:
		s.logger.Warn(what+" unavailable", append(kv, "err", err)...)
	default:
		s.logger.Debug(what+" loaded", kv...)
	}
}

func unavailable(sample int, cause error) error {
	return errors.Wrap(errors.ErrCodeUnavailable, cause, "no reconstruction available for sample %d", sample)
}
