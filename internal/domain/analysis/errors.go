package analysis

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoText means the document produced no extractable text. Not retried.
	ErrNoText = errors.New("no text extracted from document")
	// ErrEmptyResponse means the model answered with nothing usable.
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrUnknownResponseShape means the adapter could not find a JSON or text payload.
	ErrUnknownResponseShape = errors.New("unknown model response shape")
	// ErrModelExhausted is matched by *ExhaustedError.
	ErrModelExhausted = errors.New("model did not return valid JSON")
	// ErrQuotaExceeded is returned by adapters when the provider answers 429.
	ErrQuotaExceeded = errors.New("model quota exceeded")
	// ErrInvalidResult means the decoded answer breaks a result invariant
	// the schema cannot express (duplicate clause ids).
	ErrInvalidResult = errors.New("invalid analysis result")
)

// ExhaustedError is returned once every attempt has failed.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("model did not return valid JSON after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Is(target error) bool { return target == ErrModelExhausted }

func (e *ExhaustedError) Unwrap() error { return e.Last }

// RetryAfter returns the wait a provider asked for, if any error in err's
// chain carries one.
func RetryAfter(err error) (time.Duration, bool) {
	var ra interface{ RetryAfterDelay() time.Duration }
	if errors.As(err, &ra) {
		if d := ra.RetryAfterDelay(); d > 0 {
			return d, true
		}
	}
	return 0, false
}
