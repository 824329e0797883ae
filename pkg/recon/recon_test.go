package recon

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/latentscope/pkg/dataset"
	"github.com/matzehuels/latentscope/pkg/errors"
	"github.com/matzehuels/latentscope/pkg/latent"
)

// countingSource serves generated trees and counts every fetch.
type countingSource struct {
	defaults  atomic.Int32
	trees     atomic.Int32
	fail      map[int]bool
	treeDelay time.Duration
}

func (c *countingSource) Defaults(ctx context.Context) (*dataset.Defaults, error) {
	c.defaults.Add(1)
	return &dataset.Defaults{
		Texts:   []string{"zero EOS", "one EOS", "two EOS", "the cat sat EOS"},
		Vectors: []latent.Vector{latent.Zero(), {1, 1, 1, 1, 1}, {2, 2, 2, 2, 2}, {0, 1, 2, 0, 1}},
	}, nil
}

func (c *countingSource) Tree(ctx context.Context, sample int) (*dataset.Tree, error) {
	c.trees.Add(1)
	if c.treeDelay > 0 {
		time.Sleep(c.treeDelay)
	}
	if c.fail[sample] {
		return nil, stderrors.New("connection reset")
	}
	return dataset.Build(latent.Dims, latent.Levels, func(path []int) string {
		return fmt.Sprintf("s%d %v EOS", sample, path)
	}), nil
}

func TestLoaderSingleFetch(t *testing.T) {
	calls := 0
	l := NewLoader[string, int](func(ctx context.Context, k string) (int, error) {
		calls++
		return len(k), nil
	})

	first, job := l.Request("abc")
	if first.Status != StatusPending || job == nil {
		t.Fatalf("first Request = %v, job %v", first.Status, job)
	}
	for range 3 {
		again, dup := l.Request("abc")
		if again.Status != StatusPending || dup != nil {
			t.Fatalf("Request while pending = %v, job %v", again.Status, dup)
		}
	}

	got, ok := l.Resolve(job.Run(context.Background()))
	if !ok || !got.Ready() || got.Value != 3 {
		t.Fatalf("Resolve = %+v, %v", got, ok)
	}
	hit, none := l.Request("abc")
	if !hit.Ready() || hit.Value != 3 || none != nil {
		t.Errorf("Request after load = %+v, job %v", hit, none)
	}
	if calls != 1 || l.Issued() != 1 {
		t.Errorf("calls = %d, issued = %d, want 1", calls, l.Issued())
	}
}

func TestLoaderFailureAndRetry(t *testing.T) {
	fail := true
	l := NewLoader[int, string](func(ctx context.Context, k int) (string, error) {
		if fail {
			return "", stderrors.New("boom")
		}
		return "ok", nil
	})

	_, job := l.Request(1)
	got, _ := l.Resolve(job.Run(context.Background()))
	if got.Status != StatusUnavailable || got.Err == nil {
		t.Fatalf("failed fetch = %+v", got)
	}
	if again, dup := l.Request(1); again.Status != StatusUnavailable || dup != nil {
		t.Errorf("failure should be memoized, got %v, job %v", again.Status, dup)
	}

	if !l.Retry(1) {
		t.Fatal("Retry should forget a failed key")
	}
	fail = false
	_, job = l.Request(1)
	if job == nil {
		t.Fatal("Request after Retry should start a fetch")
	}
	if got, _ := l.Resolve(job.Run(context.Background())); got.Value != "ok" {
		t.Errorf("retried value = %q", got.Value)
	}
	if l.Retry(1) {
		t.Error("Retry must not forget a loaded key")
	}
}

func TestLoaderIgnoresUnknownTickets(t *testing.T) {
	l := NewLoader[int, int](func(ctx context.Context, k int) (int, error) { return k, nil })
	_, job := l.Request(7)
	r := job.Run(context.Background())

	forged := r
	forged.Ticket[0] ^= 0xff
	if _, ok := l.Resolve(forged); ok {
		t.Error("result with a foreign ticket should be ignored")
	}
	if _, ok := l.Resolve(r); !ok {
		t.Error("matching result should apply")
	}
	if _, ok := l.Resolve(r); ok {
		t.Error("second delivery of the same result should be ignored")
	}
}

func TestStoreReconstruction(t *testing.T) {
	src := &countingSource{}
	s := NewStore(src, nil)
	v := latent.Vector{0, 1, 2, 0, 1}

	l, job := s.Reconstruction(3, v)
	if l.Status != StatusPending || job == nil {
		t.Fatalf("first lookup = %v", l.Status)
	}
	if _, dup := s.Reconstruction(3, latent.Zero()); dup != nil {
		t.Fatal("second vector for same sample must not fetch again")
	}
	s.ResolveTree(job.Run(context.Background()))

	for range 2 {
		l, job = s.Reconstruction(3, v)
		if job != nil {
			t.Fatal("loaded sample must not fetch again")
		}
		if !l.Ready() || l.Value != "s3 [0 1 2 0 1]" {
			t.Errorf("lookup = %+v", l)
		}
	}
	if n := src.trees.Load(); n != 1 {
		t.Errorf("tree fetches = %d, want 1", n)
	}
	if _, trees := s.Fetches(); trees != 1 {
		t.Errorf("Fetches trees = %d", trees)
	}
}

func TestStoreUnavailable(t *testing.T) {
	src := &countingSource{fail: map[int]bool{5: true}}
	s := NewStore(src, nil)

	_, job := s.Reconstruction(5, latent.Zero())
	s.ResolveTree(job.Run(context.Background()))

	l := s.Peek(5, latent.Zero())
	if l.Status != StatusUnavailable {
		t.Fatalf("status = %v, want unavailable", l.Status)
	}
	if !errors.Is(l.Err, errors.ErrCodeUnavailable) {
		t.Errorf("err = %v, want SAMPLE_UNAVAILABLE", l.Err)
	}
	if !s.Retry(5) {
		t.Error("Retry(5) = false")
	}
	if _, job := s.Reconstruction(5, latent.Zero()); job == nil {
		t.Error("retried sample should fetch again")
	}
}

func TestStoreSample(t *testing.T) {
	s := NewStore(&countingSource{}, nil)

	if _, _, l := s.Sample(3); l.Status != StatusMissing {
		t.Errorf("Sample before request = %v", l.Status)
	}
	_, job := s.Defaults()
	if _, dup := s.Defaults(); dup != nil {
		t.Fatal("defaults fetched twice")
	}
	s.ResolveDefaults(job.Run(context.Background()))

	text, v, l := s.Sample(3)
	if !l.Ready() || text != "the cat sat" || !v.Equal(latent.Vector{0, 1, 2, 0, 1}) {
		t.Errorf("Sample(3) = %q, %v, %v", text, v, l.Status)
	}
	if _, _, l := s.Sample(40); l.Status != StatusUnavailable {
		t.Errorf("Sample(40) = %v", l.Status)
	}
}

func TestSharedDeduplicates(t *testing.T) {
	src := &countingSource{treeDelay: 20 * time.Millisecond}
	s := NewShared(src)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Reconstruction(ctx, 2, latent.Zero()); err != nil {
				t.Errorf("Reconstruction: %v", err)
			}
		}()
	}
	wg.Wait()

	text, err := s.Reconstruction(ctx, 2, latent.Vector{2, 2, 2, 2, 2})
	if err != nil || text != "s2 [2 2 2 2 2]" {
		t.Errorf("Reconstruction = %q, %v", text, err)
	}
	if n := src.trees.Load(); n != 1 {
		t.Errorf("tree fetches = %d, want 1", n)
	}
	if _, err := s.Reconstruction(ctx, 2, latent.Vector{3}); !errors.Is(err, errors.ErrCodeInvalidVector) {
		t.Errorf("invalid vector error = %v", err)
	}
}

func TestSharedDoesNotMemoizeFailures(t *testing.T) {
	src := &countingSource{fail: map[int]bool{1: true}}
	s := NewShared(src)
	ctx := context.Background()

	for range 2 {
		if _, err := s.Reconstruction(ctx, 1, latent.Zero()); !errors.Is(err, errors.ErrCodeUnavailable) {
			t.Errorf("err = %v", err)
		}
	}
	if n := src.trees.Load(); n != 2 {
		t.Errorf("tree fetches = %d, want 2", n)
	}
}

func TestStatusString(t *testing.T) {
	for s, want := range map[Status]string{
		StatusMissing: "missing", StatusPending: "pending",
		StatusLoaded: "loaded", StatusUnavailable: "unavailable",
	} {
		if s.String() != want {
			t.Errorf("%d.String() = %q", s, s.String())
		}
	}
}

// gatedSource holds every tree fetch until release is closed.
type gatedSource struct {
	countingSource
	started chan struct{}
	release chan struct{}
	ctxErr  atomic.Value
	once    sync.Once
}

func (g *gatedSource) Tree(ctx context.Context, sample int) (*dataset.Tree, error) {
	g.once.Do(func() { close(g.started) })
	<-g.release
	if err := ctx.Err(); err != nil {
		g.ctxErr.Store(err)
	}
	return g.countingSource.Tree(ctx, sample)
}

func TestSharedFetchOutlivesCancelledCaller(t *testing.T) {
	src := &gatedSource{started: make(chan struct{}), release: make(chan struct{})}
	s := NewShared(src)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Tree(ctx, 2)
		firstErr <- err
	}()
	<-src.started

	second := make(chan error, 1)
	go func() {
		_, err := s.Tree(context.Background(), 2)
		second <- err
	}()

	cancel()
	if err := <-firstErr; !stderrors.Is(err, context.Canceled) {
		t.Errorf("cancelled caller error = %v, want context.Canceled", err)
	}

	close(src.release)
	if err := <-second; err != nil {
		t.Errorf("waiting caller failed with the first caller's cancellation: %v", err)
	}
	if err := src.ctxErr.Load(); err != nil {
		t.Errorf("fetch saw a cancelled context: %v", err)
	}
	if n := src.trees.Load(); n != 1 {
		t.Errorf("tree fetches = %d, want 1", n)
	}
	if _, err := s.Tree(context.Background(), 2); err != nil || src.trees.Load() != 1 {
		t.Errorf("loaded tree not reused: %v, fetches = %d", err, src.trees.Load())
	}
}
