package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a business error for callers and the HTTP layer.
//
// Validation and Conflict are reported before (or instead of) any write.
// NotFound means a referenced entity no longer exists. Secondary faults are
// not a Kind on the main path: they are reported after a committed primary
// decision via SecondaryFault and never fail the operation that produced them.
type Kind int

const (
	// KindValidation means a precondition was not met; nothing was mutated.
	KindValidation Kind = iota + 1
	// KindConflict means a conditional write's guard failed because another
	// actor already transitioned the entity. Callers must refresh; the
	// engine never retries silently.
	KindConflict
	// KindNotFound means the referenced entity does not exist.
	KindNotFound
)

// Error is a classified business error.
type Error struct {
	kind Kind
	err  error
}

func (e *Error) Error() string { return e.err.Error() }
func (e *Error) Unwrap() error { return e.err }
func (e *Error) Kind() Kind    { return e.kind }

// New creates a classified error with fixed text, suitable as a sentinel.
func New(kind Kind, text string) *Error {
	return &Error{kind: kind, err: errors.New(text)}
}

// Wrap classifies an existing error.
func Wrap(kind Kind, err error) *Error {
	return &Error{kind: kind, err: err}
}

// KindOf reports the classification of err, or 0 if unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return 0
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }

// SecondaryFault records the failure of a best-effort step that ran after
// the primary decision of a multi-step operation had already committed.
// It is advisory: the decision stands, the cleanup or paperwork it names
// needs manual follow-up.
type SecondaryFault struct {
	Step string // "decline_rivals" | "claim_shift" | "render_document"
	Err  error
}

func (f *SecondaryFault) Error() string {
	return fmt.Sprintf("secondary fault at %s: %v", f.Step, f.Err)
}

func (f *SecondaryFault) Unwrap() error { return f.Err }
