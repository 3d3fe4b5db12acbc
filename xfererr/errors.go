package xfererr

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Type classifies where an error arose.
type Type int

const (
	// TypeTransport is an error on the underlying byte stream.
	TypeTransport Type = iota
	// TypeFile is an error opening or reading a served file.
	TypeFile
	// TypeProtocol is a malformed or unrecognised exchange.
	TypeProtocol
	// TypeSession is misuse of a session state value.
	TypeSession
)

func (t Type) String() string {
	switch t {
	case TypeTransport:
		return "transport"
	case TypeFile:
		return "file"
	case TypeProtocol:
		return "protocol"
	case TypeSession:
		return "session"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Severity says whether a session can continue after the error.
type Severity int

const (
	// SeverityFatal errors abort the session.
	SeverityFatal Severity = iota
	// SeverityRecoverable errors are handled locally and the session
	// carries on.
	SeverityRecoverable
)

func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal"
	case SeverityRecoverable:
		return "recoverable"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Error is a file transfer session error.
type Error struct {
	Type     Type
	Tag      string
	Severity Severity
	// Op names the operation which failed, if any.
	Op      string
	Message string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	s := fmt.Sprintf("%s error tag:%s", e.Type, e.Tag)
	if e.Op != "" {
		s += " op:" + e.Op
	}
	if e.Message != "" {
		s += " " + e.Message
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Cause returns the underlying cause, for github.com/pkg/errors.Cause.
func (e *Error) Cause() error { return e.Err }

// Fatal reports whether the session must be aborted.
func (e *Error) Fatal() bool { return e.Severity == SeverityFatal }

// IsFatal reports whether err must abort the session. Errors not
// produced by this package are treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if pkgerrors.As(err, &e) {
		return e.Fatal()
	}
	return true
}

// Is reports whether err, or any error it wraps, is an *Error with the
// given type and tag.
func Is(err error, t Type, tag string) bool {
	var e *Error
	return pkgerrors.As(err, &e) && e.Type == t && e.Tag == tag
}

func newError(t Type, tag string, sev Severity, opts []Option) *Error {
	e := &Error{Type: t, Tag: tag, Severity: sev}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TransportFailure wraps err, an error from the byte stream.
func TransportFailure(err error, opts ...Option) *Error {
	e := newError(TypeTransport, "transport-failure", SeverityFatal, opts)
	e.Err = pkgerrors.WithStack(err)
	return e
}

// EndOfStream reports that the peer closed the stream while a read was
// outstanding.
func EndOfStream(opts ...Option) *Error {
	return newError(TypeTransport, "end-of-stream", SeverityFatal, opts)
}

// FileUnavailable reports that filename could not be opened or read.
// The session degrades to an empty response.
func FileUnavailable(filename string, err error, opts ...Option) *Error {
	e := newError(TypeFile, "file-unavailable", SeverityRecoverable, opts)
	if e.Message == "" {
		e.Message = fmt.Sprintf("%q", filename)
	}
	e.Err = err
	return e
}

// UnknownCommand reports a command line matching no command token.
func UnknownCommand(line string, opts ...Option) *Error {
	e := newError(TypeProtocol, "unknown-command", SeverityRecoverable, opts)
	if e.Message == "" {
		e.Message = fmt.Sprintf("%q", line)
	}
	return e
}

// LineTooLong reports a received line which did not fit in the read
// buffer. The line has been skipped.
func LineTooLong(opts ...Option) *Error {
	return newError(TypeProtocol, "line-too-long", SeverityRecoverable, opts)
}

// BadFilename reports a filename which cannot be sent on a single line.
func BadFilename(filename string, err error, opts ...Option) *Error {
	e := newError(TypeProtocol, "bad-filename", SeverityRecoverable, opts)
	if e.Message == "" {
		e.Message = fmt.Sprintf("%q", filename)
	}
	e.Err = err
	return e
}

// StateConsumed reports an operation on a session state value which
// has already transitioned.
func StateConsumed(state string, opts ...Option) *Error {
	e := newError(TypeSession, "state-consumed", SeverityFatal, opts)
	if e.Message == "" {
		e.Message = state
	}
	return e
}
