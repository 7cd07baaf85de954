package translate

import (
	"context"
	"log/slog"
)

// Memory is a persistent store of finished translations.
type Memory interface {
	Lookup(ctx context.Context, text, targetLang, sourceLang string) (string, bool, error)
	Remember(ctx context.Context, text, targetLang, sourceLang, translated string) error
}

// Cached answers repeat requests from a Memory and only reaches the backend
// on a miss. Failed translations are never remembered.
type Cached struct {
	next Translator
	mem  Memory
	log  *slog.Logger
}

func NewCached(next Translator, mem Memory, log *slog.Logger) *Cached {
	return &Cached{next: next, mem: mem, log: log}
}

func (c *Cached) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	hit, ok, err := c.mem.Lookup(ctx, text, targetLang, sourceLang)
	if err != nil {
		c.log.Warn("translation memory lookup failed", "error", err)
	} else if ok {
		return hit, nil
	}

	out, err := c.next.Translate(ctx, text, targetLang, sourceLang)
	if err != nil {
		return out, err
	}
	if err := c.mem.Remember(ctx, text, targetLang, sourceLang, out); err != nil {
		c.log.Warn("translation memory write failed", "error", err)
	}
	return out, nil
}
