package httpx

import (
	"errors"
	"net"
	"strconv"
	"time"
)

// =============================================================================
// RETRY POLICY
// An explicit policy value passed to the client, rather than behavior
// hidden inside call sites.
// =============================================================================

// RetryPolicy bounds retries around a single network call. Only
// transient conditions are retried; non-transient failures surface
// immediately.
type RetryPolicy struct {
	// MaxAttempts is the total attempt count, first try included.
	MaxAttempts int

	// MinDelay and MaxDelay bound the exponential backoff curve.
	MinDelay time.Duration
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns the policy used by every source client:
// 3 attempts, backoff doubling from 2s, capped at 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		MinDelay:    2 * time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// Backoff returns the delay before the given retry (attempt is
// 0-based: the delay after the first failure is Backoff(0)).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := p.MinDelay << uint(attempt)
	if d > p.MaxDelay || d <= 0 {
		return p.MaxDelay
	}
	return d
}

// StatusError is an HTTP error response.
type StatusError struct {
	StatusCode int
	Message    string

	// RetryAfter carries the server's Retry-After hint on rate-limit
	// responses; it overrides the backoff curve verbatim.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return "HTTP " + strconv.Itoa(e.StatusCode) + ": " + e.Message
}

// IsRateLimited reports whether this is an explicit rate-limit response.
func (e *StatusError) IsRateLimited() bool { return e.StatusCode == 429 }

// IsServerError reports whether this is a 5xx response.
func (e *StatusError) IsServerError() bool { return e.StatusCode >= 500 }

// IsTransient decides whether an error should be retried: timeouts,
// 5xx, and rate-limit responses qualify; other 4xx (bad credentials,
// not found) fail immediately.
func IsTransient(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.IsRateLimited() || se.IsServerError()
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}

// IsAuthRejected reports whether the error is an outright credential
// rejection.
func IsAuthRejected(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && (se.StatusCode == 401 || se.StatusCode == 403)
}

// retryAfterHint extracts the Retry-After override from an error, if
// the server supplied one.
func retryAfterHint(err error) (time.Duration, bool) {
	var se *StatusError
	if errors.As(err, &se) && se.IsRateLimited() && se.RetryAfter > 0 {
		return se.RetryAfter, true
	}
	return 0, false
}
