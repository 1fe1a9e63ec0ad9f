package insight

import (
	"errors"
	"fmt"
)

// ErrInsufficientHistory is the only failure Produce surfaces to callers.
var ErrInsufficientHistory = errors.New("insight: at least 2 entries are required")

// Kind classifies a remote generation failure.
type Kind string

const (
	KindNotConfigured      Kind = "not_configured"
	KindTimeout            Kind = "timeout"
	KindMalformedResponse  Kind = "malformed_response"
	KindModelUnavailable   Kind = "model_unavailable"
	KindAllModelsExhausted Kind = "all_models_exhausted"
)

// Sentinels matched by GenerationError.Is so callers can write
// errors.Is(err, insight.ErrTimeout).
var (
	ErrNotConfigured      = errors.New("insight: remote generation not configured")
	ErrTimeout            = errors.New("insight: attempt timed out")
	ErrMalformedResponse  = errors.New("insight: malformed model response")
	ErrModelUnavailable   = errors.New("insight: model unavailable")
	ErrAllModelsExhausted = errors.New("insight: all models exhausted")
)

var kindSentinel = map[Kind]error{
	KindNotConfigured:      ErrNotConfigured,
	KindTimeout:            ErrTimeout,
	KindMalformedResponse:  ErrMalformedResponse,
	KindModelUnavailable:   ErrModelUnavailable,
	KindAllModelsExhausted: ErrAllModelsExhausted,
}

// GenerationError is returned by generators that can fail.
type GenerationError struct {
	Kind  Kind
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	msg := string(e.Kind)
	if e.Model != "" {
		msg += " (" + e.Model + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return "insight: " + msg
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool {
	s, ok := kindSentinel[e.Kind]
	return ok && s == target
}

func newGenErr(kind Kind, model string, err error) *GenerationError {
	return &GenerationError{Kind: kind, Model: model, Err: err}
}

func malformed(model, format string, args ...any) *GenerationError {
	return newGenErr(KindMalformedResponse, model, fmt.Errorf(format, args...))
}

// KindOf returns the Kind of err if it is a GenerationError, or "".
func KindOf(err error) Kind {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}
