package translate

import (
	"context"
	"errors"
	"fmt"
)

// Translator turns text into the target language. Implementations return
// the input text unchanged together with any error, so a caller that
// ignores the error still has something usable to show.
type Translator interface {
	Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error)
}

// Func adapts a plain function to the Translator interface.
type Func func(ctx context.Context, text, targetLang, sourceLang string) (string, error)

func (f Func) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	return f(ctx, text, targetLang, sourceLang)
}

// ErrMalformedResponse means the backend answered but the payload could not
// be read as a translation.
var ErrMalformedResponse = errors.New("malformed translation response")

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// sourceOrAuto maps an empty source language to "auto" detection.
func sourceOrAuto(lang string) string {
	if lang == "" {
		return "auto"
	}
	return lang
}
