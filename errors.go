package msgchan

import (
	"errors"
	"fmt"

	"github.com/awilkes/msgchan/code"
)

// Error is the concrete type of errors reported by channels and
// messengers.
type Error struct {
	Code    code.Code
	Message string
}

// Error renders e to a human-readable string for the error interface.
func (e *Error) Error() string { return fmt.Sprintf("[%d] %s", e.Code, e.Message) }

// ErrCode reports the code value of e, satisfying code.Coder.
func (e *Error) ErrCode() code.Code { return e.Code }

// Errorf returns an error value of concrete type *Error having the
// specified code and formatted message string.
func Errorf(c code.Code, msg string, args ...any) error {
	return &Error{Code: c, Message: fmt.Sprintf(msg, args...)}
}

// ErrMessengerStopped is reported for operations issued through a
// messenger that has been stopped.
var ErrMessengerStopped = errors.New("the messenger has been stopped")

// codeError converts err to a *Error, categorizing it with c unless it
// already carries a code of its own.
func codeError(c code.Code, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: c, Message: err.Error()}
}
