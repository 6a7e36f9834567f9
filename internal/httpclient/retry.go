package httpclient

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy bounds how many times a single HTTP call is attempted.
type RetryPolicy struct {
	// MaxAttempts counts the first try. Values below 1 mean 1.
	MaxAttempts uint
	// InitialInterval is the first backoff wait.
	InitialInterval time.Duration
	// MaxInterval caps any single wait.
	MaxInterval time.Duration
	// RetryStatuses lists response codes worth another attempt.
	RetryStatuses []int
	// OnRetry is called before each wait.
	OnRetry func(err error, wait time.Duration)
}

// DefaultRetryPolicy tries twice on connection errors and on 429/5xx gateway
// statuses.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     2,
		InitialInterval: 250 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		RetryStatuses: []int{
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

// retryTransport re-issues idempotent requests according to a RetryPolicy.
type retryTransport struct {
	next     http.RoundTripper
	policy   RetryPolicy
	statuses map[int]bool
}

// NewRetryTransport wraps next with the policy. Requests with a body are
// retried only when they can be rewound through GetBody.
func NewRetryTransport(next http.RoundTripper, policy RetryPolicy) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	statuses := make(map[int]bool, len(policy.RetryStatuses))
	for _, s := range policy.RetryStatuses {
		statuses[s] = true
	}
	return &retryTransport{next: next, policy: policy, statuses: statuses}
}

type retryableStatusError struct {
	status int
}

func (e *retryableStatusError) Error() string {
	return fmt.Sprintf("retryable status %d", e.status)
}

// RoundTrip implements http.RoundTripper.
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	eb := backoff.NewExponentialBackOff()
	if t.policy.InitialInterval > 0 {
		eb.InitialInterval = t.policy.InitialInterval
	}
	if t.policy.MaxInterval > 0 {
		eb.MaxInterval = t.policy.MaxInterval
	}

	var attempt uint
	op := func() (*http.Response, error) {
		attempt++
		last := attempt >= t.policy.MaxAttempts

		r := req
		if attempt > 1 {
			if req.Body != nil && req.GetBody == nil {
				return nil, backoff.Permanent(errors.New("request body cannot be replayed"))
			}
			r = req.Clone(ctx)
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, backoff.Permanent(err)
				}
				r.Body = body
			}
		}

		resp, err := t.next.RoundTrip(r)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}

		if !t.statuses[resp.StatusCode] || last {
			return resp, nil
		}

		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			return nil, backoff.RetryAfter(secs)
		}
		return nil, &retryableStatusError{status: resp.StatusCode}
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(eb),
		backoff.WithMaxTries(t.policy.MaxAttempts),
	}
	if t.policy.OnRetry != nil {
		opts = append(opts, backoff.WithNotify(t.policy.OnRetry))
	}

	return backoff.Retry(ctx, op, opts...)
}
