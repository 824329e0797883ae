package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDraws(t *testing.T) {
	var out syncBuffer
	s := newSpinner(context.Background(), &out, "fetching defaults.json")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.SetMessage("fetching 3.json")
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "fetching defaults.json") || !strings.Contains(got, "fetching 3.json") {
		t.Errorf("spinner output = %q", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Error("Stop should clear the line")
	}
	if !s.Cancelled() {
		t.Error("a stopped spinner reports its context as done")
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var out syncBuffer
	s := newSpinner(ctx, &out, "waiting")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	if !s.Cancelled() {
		t.Error("spinner should be cancelled after context timeout")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var out syncBuffer
	s := newSpinner(context.Background(), &out, "idempotent")
	s.Start()
	s.Stop()
	s.Stop()
}

func TestWithSpinner(t *testing.T) {
	var out syncBuffer
	want := errors.New("boom")
	calls := 0
	err := withSpinner(context.Background(), &out, "work", func() error {
		calls++
		return want
	})
	if !errors.Is(err, want) || calls != 1 {
		t.Errorf("withSpinner = %v after %d calls", err, calls)
	}
}
