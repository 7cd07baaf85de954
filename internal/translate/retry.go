package translate

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"
)

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// Retrying re-issues calls that fail with a RetryableError, up to
// MaxRetries extra attempts. Other errors are returned immediately.
type Retrying struct {
	next       Translator
	maxRetries int
	log        *slog.Logger
	backoff    func(attempt int) time.Duration
}

func NewRetrying(next Translator, maxRetries int, log *slog.Logger) *Retrying {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Retrying{next: next, maxRetries: maxRetries, log: log, backoff: Backoff}
}

func (r *Retrying) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	for attempt := 0; ; attempt++ {
		out, err := r.next.Translate(ctx, text, targetLang, sourceLang)
		if err == nil || !IsRetryable(err) || attempt >= r.maxRetries {
			return out, err
		}
		r.log.Warn("retryable translation error", "attempt", attempt, "error", err)
		select {
		case <-time.After(r.backoff(attempt)):
		case <-ctx.Done():
			return text, ctx.Err()
		}
	}
}
