package llmclient

import (
	"context"
	"errors"
	"strings"
)

// LLMClient is one remote text-generation model. The prompt is free-form and
// the reply is returned verbatim; callers extract structure from it.
type LLMClient interface {
	// Name identifies the client as "Provider:model".
	Name() string
	Model() string
	GenerateText(ctx context.Context, prompt string) (string, error)
	Close() error
}

var (
	ErrEmptyResponse = errors.New("empty response from model")
	ErrModelNotFound = errors.New("model not found")
	ErrQuotaExceeded = errors.New("model quota exceeded")
)

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err is marked as non-recoverable.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

// classifyMessage maps a provider error text onto the shared sentinels. It
// is used for SDKs that do not expose a typed status.
func classifyMessage(err error) error {
	if err == nil {
		return nil
	}
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "404") || strings.Contains(s, "not_found") || strings.Contains(s, "not found"):
		return NewPermanentError(errors.Join(ErrModelNotFound, err))
	case strings.Contains(s, "429") || strings.Contains(s, "resource_exhausted") || strings.Contains(s, "quota"):
		return errors.Join(ErrQuotaExceeded, err)
	default:
		return err
	}
}
