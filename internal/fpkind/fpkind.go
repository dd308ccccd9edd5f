// Package fpkind defines the error taxonomy shared across the fingerprinting
// pipeline: ArgumentInvalid, SourceFailure, and Exhausted.
package fpkind

import "github.com/pkg/errors"

// Kind classifies a pipeline failure.
type Kind int

const (
	// ArgumentInvalid covers configuration mutation after start, a
	// parameter that isn't a power of two when required, K > L*P, a zero
	// comparison range, and mismatched subfingerprint lengths.
	ArgumentInvalid Kind = iota
	// SourceFailure covers an underlying sample source that could not
	// produce further samples; propagated verbatim.
	SourceFailure
	// Exhausted marks a source that drained before any complete
	// subfingerprint could be produced. Not itself an error condition for
	// callers that tolerate a count=0 fingerprint.
	Exhausted
)

func (k Kind) String() string {
	switch k {
	case ArgumentInvalid:
		return "argument_invalid"
	case SourceFailure:
		return "source_failure"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

type kindedError struct {
	kind Kind
	err  error
}

func (e *kindedError) Error() string { return e.err.Error() }
func (e *kindedError) Cause() error  { return e.err }
func (e *kindedError) Unwrap() error { return e.err }

// New creates a new error of the given kind with the given message.
func New(kind Kind, msg string) error {
	return &kindedError{kind: kind, err: errors.New(msg)}
}

// Newf creates a new error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &kindedError{kind: kind, err: errors.Errorf(format, args...)}
}

// Wrap annotates err with msg and tags it with kind. Returns nil if err is
// nil, matching pkg/errors.Wrap.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &kindedError{kind: kind, err: errors.Wrap(err, msg)}
}

// Is reports whether err (or something it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var ke *kindedError
	for err != nil {
		if k, ok := err.(*kindedError); ok {
			ke = k
			break
		}
		err = errors.Unwrap(err)
	}
	return ke != nil && ke.kind == kind
}

// KindOf returns the Kind tagged on err, and false if err carries none.
func KindOf(err error) (Kind, bool) {
	for err != nil {
		if k, ok := err.(*kindedError); ok {
			return k.kind, true
		}
		err = errors.Unwrap(err)
	}
	return 0, false
}
