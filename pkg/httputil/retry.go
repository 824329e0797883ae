package httputil

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/matzehuels/latentscope/pkg/errors"
)

// Policy is a retry budget for asset fetches.
type Policy struct {
	// Attempts is the total number of tries, including the first (default 3).
	Attempts int
	// Delay is the wait before the second try. It doubles after each
	// failure (default 1s).
	Delay time.Duration
}

// WithDefaults fills unset fields.
func (p Policy) WithDefaults() Policy {
	if p.Attempts <= 0 {
		p.Attempts = 3
	}
	if p.Delay <= 0 {
		p.Delay = time.Second
	}
	return p
}

// RetryableError marks a failure as transient. [Retry] tries again only
// for errors carrying it.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Transient wraps err as a network failure worth retrying.
func Transient(err error, format string, args ...any) error {
	return &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, format, args...)}
}

// IsRetryable reports whether err is marked transient.
func IsRetryable(err error) bool {
	return stderrors.As(err, new(*RetryableError))
}

// CheckStatus classifies the status of an asset response. A missing asset
// is NOT_FOUND and final; 5xx and 429 are retried; anything else other
// than 200 fails at once.
func CheckStatus(code int, rawURL string) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "GET %s: status %d", rawURL, code)
	case code >= 500, code == http.StatusTooManyRequests:
		return &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "GET %s: status %d", rawURL, code)}
	default:
		return errors.New(errors.ErrCodeNetwork, "GET %s: status %d", rawURL, code)
	}
}

// Retry runs fn under policy p. Errors not marked with [RetryableError]
// return at once; a cancelled ctx ends the wait between tries.
func Retry(ctx context.Context, p Policy, fn func() error) error {
	p = p.WithDefaults()
	delay := p.Delay
	var lastErr error
	for i := range p.Attempts {
		if lastErr = fn(); lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if i == p.Attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return lastErr
}
