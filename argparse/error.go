package argparse

import "fmt"

// NewError creates a new error with the given error code and error. Commands return one with
// [ErrShowHelp] to have their usage printed along with err.
func NewError(code ErrorCode, err error) error {
	return &Error{Code: code, err: err}
}

// ErrorCode classifies input errors reported by [Parse].
type ErrorCode int

const (
	ErrShowHelp ErrorCode = iota + 1
	ErrUnknownCommand
	ErrMissingCommand
	ErrMissingArgument
	ErrInvalidChoice
	ErrInvalidValue
	ErrUnrecognizedArgs
)

func (c ErrorCode) String() string {
	switch c {
	case ErrShowHelp:
		return "show help"
	case ErrUnknownCommand:
		return "unknown command"
	case ErrMissingCommand:
		return "missing command"
	case ErrMissingArgument:
		return "missing argument"
	case ErrInvalidChoice:
		return "invalid choice"
	case ErrInvalidValue:
		return "invalid value"
	case ErrUnrecognizedArgs:
		return "unrecognized arguments"
	default:
		return "unknown error"
	}
}

// Error is a usage error: the input does not fit the command tree. Command is the deepest command
// that was resolved when the error occurred, suitable for printing its usage.
type Error struct {
	Code    ErrorCode
	Command *Command
	err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.err == nil {
		return e.Code.String() + ": <nil>"
	}
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

func (c *Command) errorf(code ErrorCode, format string, args ...any) error {
	return &Error{Code: code, Command: c, err: fmt.Errorf(format, args...)}
}
