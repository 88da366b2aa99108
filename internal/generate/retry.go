package generate

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Backoff configures retries of transient model errors.
type Backoff struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxAttempts  int
	// JitterFactor is the fraction of the delay to randomise, 0 to 1.
	JitterFactor float64
}

func DefaultBackoff() Backoff {
	return Backoff{
		InitialDelay: time.Second,
		MaxDelay:     32 * time.Second,
		MaxAttempts:  4,
		JitterFactor: 0.1,
	}
}

// Delay returns the wait before retry number attempt (1-indexed).
func (b Backoff) Delay(attempt int) time.Duration {
	delay := time.Duration(float64(b.InitialDelay) * math.Pow(2, float64(attempt-1)))
	if delay > b.MaxDelay {
		delay = b.MaxDelay
	}
	if b.JitterFactor > 0 {
		jitter := float64(delay) * b.JitterFactor
		delay = time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
	}
	return max(delay, 0)
}

// retry runs fn until it succeeds, fails with a non-retryable error, the
// attempts run out or ctx is done.
func retry(ctx context.Context, b Backoff, op string, fn func() error) error {
	attempts := max(b.MaxAttempts, 1)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !isRetryable(err) || attempt == attempts {
			break
		}

		delay := b.Delay(attempt)
		slog.Warn("generation attempt failed, retrying",
			"op", op, "attempt", attempt, "of", attempts, "delay", delay, "error", err)

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return errors.Join(err, ctx.Err())
		case <-t.C:
		}
	}
	return err
}

// isRetryable reports whether err looks transient: rate limiting or a
// server-side failure.
func isRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return retryableStatus(apiErrPtr.Code)
	}

	msg := err.Error()
	for _, s := range []string{"429", "RESOURCE_EXHAUSTED", "UNAVAILABLE", "rate limit", "503", "500"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
