package psxdmh

import "fmt"

// ErrorKind classifies engine failures.
type ErrorKind int

const (
	// CorruptStream indicates malformed ADPCM or music event data.
	CorruptStream ErrorKind = iota

	// MissingResource indicates a patch or sub-instrument that could not be
	// located, or a seek beyond the end of a stream.
	MissingResource

	// InvalidConfig indicates configuration outside the supported range.
	InvalidConfig

	// PatchRepairMismatch indicates a patch whose details do not match the
	// repair table.
	PatchRepairMismatch

	// IoFailure indicates a temporary file read or write failure.
	IoFailure

	// Aborted indicates host-initiated termination.
	Aborted
)

// Error is the single error type used by the engine. Fatal conditions
// detected inside Next unwind the whole pull call as a panic carrying an
// *Error; Recover converts it back to an ordinary error at the driving
// boundary.
type Error struct {
	Kind ErrorKind
	Msg  string

	// Err is the underlying error for IoFailure.
	Err error
}

func (e *Error) Error() string { return e.Msg }

// Unwrap exposes the underlying error, if any.
func (e *Error) Unwrap() error { return e.Err }

// Is matches errors of the same kind, allowing errors.Is against a bare
// kind-carrying *Error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

// Errorf constructs an *Error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Fatal panics with an *Error. Modules use this to abandon the pull call
// when they encounter a fatal condition; the extraction driver recovers the
// panic and surfaces it as an ordinary error.
func Fatal(kind ErrorKind, format string, args ...interface{}) {
	panic(Errorf(kind, format, args...))
}

// FatalIo panics with an IoFailure wrapping err.
func FatalIo(err error, format string, args ...interface{}) {
	panic(&Error{Kind: IoFailure, Msg: fmt.Sprintf(format, args...) + ": " + err.Error(), Err: err})
}

// Recover converts a panic value raised by Fatal back into an error. It is
// intended to be used in a deferred function by whatever drives the graph:
//
//	defer func() { psxdmh.Recover(recover(), &err) }()
//
// Panics that did not originate from Fatal are re-raised.
func Recover(value interface{}, err *error) {
	if value == nil {
		return
	}
	e, ok := value.(*Error)
	if !ok {
		panic(value)
	}
	*err = e
}
