package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// ErrInvalidInput is the umbrella for every caller-correctable failure.
	ErrInvalidInput = errors.New("invalid input")

	ErrInvalidRewardCategory = wrap(ErrInvalidInput, "invalid reward type")
	ErrInvalidEmotionLabel   = wrap(ErrInvalidInput, "invalid emotion label")
	ErrMissingField          = wrap(ErrInvalidInput, "missing required field")
	ErrMalformedBody         = wrap(ErrInvalidInput, "malformed request body")

	// ErrNoData means a trend window holds no observations. Not a failure.
	ErrNoData = errors.New("no data available")
)

// kindError is a sentinel that also matches its parent with errors.Is.
type kindError struct {
	parent error
	msg    string
}

func wrap(parent error, msg string) error { return &kindError{parent: parent, msg: msg} }

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.parent }
