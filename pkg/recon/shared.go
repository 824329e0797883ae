package recon

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/latentscope/pkg/dataset"
	"github.com/matzehuels/latentscope/pkg/latent"
	"github.com/matzehuels/latentscope/pkg/source"
)

// Shared is a goroutine-safe memoizing [source.Source]. Concurrent requests
// for the same asset share one fetch. Loaded assets are kept for the
// lifetime of the value; failures are not remembered, so the next caller
// tries again.
type Shared struct {
	src   source.Source
	group singleflight.Group

	mu       sync.RWMutex
	defaults *dataset.Defaults
	trees    map[int]*dataset.Tree

	fetches atomic.Int64
}

// NewShared wraps src.
func NewShared(src source.Source) *Shared {
	return &Shared{src: src, trees: make(map[int]*dataset.Tree)}
}

// Defaults implements source.Source.
func (s *Shared) Defaults(ctx context.Context) (*dataset.Defaults, error) {
	if d := s.cachedDefaults(); d != nil {
		return d, nil
	}
	v, err := s.do(ctx, "defaults", func(ctx context.Context) (any, error) {
		if d := s.cachedDefaults(); d != nil {
			return d, nil
		}
		s.fetches.Add(1)
		d, err := s.src.Defaults(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.defaults = d
		s.mu.Unlock()
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*dataset.Defaults), nil
}

// Tree implements source.Source.
func (s *Shared) Tree(ctx context.Context, sample int) (*dataset.Tree, error) {
	if t := s.cachedTree(sample); t != nil {
		return t, nil
	}
	v, err := s.do(ctx, "tree:"+strconv.Itoa(sample), func(ctx context.Context) (any, error) {
		if t := s.cachedTree(sample); t != nil {
			return t, nil
		}
		s.fetches.Add(1)
		t, err := s.src.Tree(ctx, sample)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.trees[sample] = t
		s.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*dataset.Tree), nil
}

// do runs fetch once per key across concurrent callers. The fetch is
// detached from any single caller's cancellation; each caller stops
// waiting when its own ctx is done.
func (s *Shared) do(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) { return fetch(detached) })
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Shared) cachedDefaults() *dataset.Defaults {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults
}

func (s *Shared) cachedTree(sample int) *dataset.Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trees[sample]
}

// Reconstruction returns the normalized text for (sample, v).
func (s *Shared) Reconstruction(ctx context.Context, sample int, v latent.Vector) (string, error) {
	if err := v.Validate(); err != nil {
		return "", err
	}
	t, err := s.Tree(ctx, sample)
	if err != nil {
		return "", unavailable(sample, err)
	}
	text, err := t.Reconstruction(v)
	if err != nil {
		return "", unavailable(sample, err)
	}
	return text, nil
}

// Fetches returns the number of fetches issued to the underlying source.
func (s *Shared) Fetches() int64 { return s.fetches.Load() }

var _ source.Source = (*Shared)(nil)
