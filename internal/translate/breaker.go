package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Breaker stops calling a backend after a run of consecutive failures and
// fails fast until the cooldown has passed.
type Breaker struct {
	next Translator
	cb   *gobreaker.CircuitBreaker
}

func NewBreaker(next Translator, name string, failures uint32, cooldown time.Duration, log *slog.Logger) *Breaker {
	if failures == 0 {
		failures = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("translation breaker state change", "backend", name, "from", from.String(), "to", to.String())
		},
		// A caller giving up is not the backend's fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *Breaker) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		s, err := b.next.Translate(ctx, text, targetLang, sourceLang)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
	if err != nil {
		return text, fmt.Errorf("%s: %w", b.cb.Name(), err)
	}
	return out.(string), nil
}

// State reports the breaker state: "closed", "half-open" or "open".
func (b *Breaker) State() string {
	return b.cb.State().String()
}
