// Package errhandling defines the error kinds a run can fail with and the
// helpers used to recover a kind from an error that crossed the runner.
package errhandling

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the category of a run failure.
type Kind int

const (
	KindUnknown Kind = iota

	// KindInput covers a missing, unreadable or malformed input file.
	KindInput

	// KindData covers a row whose values fail conversion
	// (non-numeric amount, unparseable timestamp).
	KindData

	// KindOutput covers an unwritable destination.
	KindOutput
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindData:
		return "data"
	case KindOutput:
		return "output"
	default:
		return "unknown"
	}
}

// tag is the prefix every classified error message starts with. Runners that
// flatten errors to text keep it, which is what KindOf falls back to.
func (k Kind) tag() string {
	return k.String() + " error"
}

// Error is a classified run failure.
type Error struct {
	Kind Kind

	// Op names the stage that failed ("read csv", "derive date", ...).
	Op string

	// Err is the underlying cause.
	Err error
}

// Sentinels for errors.Is.
var (
	ErrInput  = &Error{Kind: KindInput}
	ErrData   = &Error{Kind: KindData}
	ErrOutput = &Error{Kind: KindOutput}
)

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.tag())
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the cause for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches a bare sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

func Input(op string, err error) error {
	return &Error{Kind: KindInput, Op: op, Err: err}
}

func Inputf(op, format string, args ...interface{}) error {
	return Input(op, fmt.Errorf(format, args...))
}

func Data(op string, err error) error {
	return &Error{Kind: KindData, Op: op, Err: err}
}

func Output(op string, err error) error {
	return &Error{Kind: KindOutput, Op: op, Err: err}
}

// KindOf reports the kind of err. Classified errors found in the chain win;
// otherwise the earliest kind tag in the message is used.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}

	msg := err.Error()
	found, at := KindUnknown, -1
	for _, k := range []Kind{KindInput, KindData, KindOutput} {
		i := strings.Index(msg, k.tag()+":")
		if i >= 0 && (at < 0 || i < at) {
			found, at = k, i
		}
	}
	return found
}
