// Package recon memoizes the dataset assets the explorer reads.
//
// [Loader] is a single-threaded memo: the owner calls [Loader.Request] from
// its event loop, runs the returned [Job] elsewhere, and hands the [Result]
// back to [Loader.Resolve] on the loop. Each key is fetched at most once
// while pending or loaded; a failure is remembered until [Loader.Retry].
//
// [Store] composes two loaders for the explorer: the shared defaults table
// and the per-sample reconstruction trees. [Shared] offers the same
// memoization to concurrent callers such as the HTTP server.
package recon

import (
	"context"

	"github.com/google/uuid"
)

// Status is the state of a memoized key.
type Status int

const (
	// StatusMissing means the key was never requested.
	StatusMissing Status = iota
	// StatusPending means a fetch is in flight.
	StatusPending
	// StatusLoaded means the value is available.
	StatusLoaded
	// StatusUnavailable means the fetch failed and no value will arrive
	// until the key is retried.
	StatusUnavailable
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusLoaded:
		return "loaded"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "missing"
	}
}

// Lookup is the answer to a request.
type Lookup[V any] struct {
	Status Status
	Value  V
	Err    error
}

// Ready reports whether Value holds a result.
func (l Lookup[V]) Ready() bool { return l.Status == StatusLoaded }

// FetchFunc produces the value for a key.
type FetchFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Job is one outstanding fetch. It is safe to run on any goroutine.
type Job[K comparable, V any] struct {
	Ticket uuid.UUID
	Key    K
	fetch  FetchFunc[K, V]
}

// Run performs the fetch.
func (j *Job[K, V]) Run(ctx context.Context) Result[K, V] {
	v, err := j.fetch(ctx, j.Key)
	return Result[K, V]{Ticket: j.Ticket, Key: j.Key, Value: v, Err: err}
}

// Result is the outcome of a [Job].
type Result[K comparable, V any] struct {
	Ticket uuid.UUID
	Key    K
	Value  V
	Err    error
}

type entry[V any] struct {
	status Status
	value  V
	err    error
	ticket uuid.UUID
}

// Loader memoizes values by key. It is not safe for concurrent use.
type Loader[K comparable, V any] struct {
	fetch   FetchFunc[K, V]
	entries map[K]*entry[V]
	issued  int
}

// NewLoader returns a loader backed by fetch.
func NewLoader[K comparable, V any](fetch FetchFunc[K, V]) *Loader[K, V] {
	return &Loader[K, V]{fetch: fetch, entries: make(map[K]*entry[V])}
}

// Request looks key up. The job is non-nil only when this call started a
// fetch, which happens on the first request for a missing key.
func (l *Loader[K, V]) Request(key K) (Lookup[V], *Job[K, V]) {
	if e, ok := l.entries[key]; ok {
		return e.lookup(), nil
	}
	ticket := uuid.New()
	l.entries[key] = &entry[V]{status: StatusPending, ticket: ticket}
	l.issued++
	return Lookup[V]{Status: StatusPending}, &Job[K, V]{Ticket: ticket, Key: key, fetch: l.fetch}
}

// Peek returns the current state of key without starting a fetch.
func (l *Loader[K, V]) Peek(key K) Lookup[V] {
	if e, ok := l.entries[key]; ok {
		return e.lookup()
	}
	return Lookup[V]{Status: StatusMissing}
}

// Resolve records the result of a job. Results whose ticket no longer
// matches a pending entry are ignored and reported with ok == false.
func (l *Loader[K, V]) Resolve(r Result[K, V]) (Lookup[V], bool) {
	e, found := l.entries[r.Key]
	if !found || e.status != StatusPending || e.ticket != r.Ticket {
		return l.Peek(r.Key), false
	}
	if r.Err != nil {
		e.status, e.err = StatusUnavailable, r.Err
	} else {
		e.status, e.value = StatusLoaded, r.Value
	}
	return e.lookup(), true
}

// Retry forgets a failed key so the next request fetches it again.
// Loaded and pending keys are left alone.
func (l *Loader[K, V]) Retry(key K) bool {
	if e, ok := l.entries[key]; ok && e.status == StatusUnavailable {
		delete(l.entries, key)
		return true
	}
	return false
}

// Issued returns the number of fetches started.
func (l *Loader[K, V]) Issued() int { return l.issued }

// Len returns the number of tracked keys.
func (l *Loader[K, V]) Len() int { return len(l.entries) }

func (e *entry[V]) lookup() Lookup[V] {
	return Lookup[V]{Status: e.status, Value: e.value, Err: e.err}
}
