// Package code defines error code values used by the msgchan package.
package code

import (
	"context"
	"errors"
	"fmt"
)

// A Code classifies an error reported by a channel or a messenger.
//
// Codes from and including 1 to 99 are reserved for the msgchan
// package. The remainder of the space is available for application
// defined errors.
type Code int32

func (c Code) String() string {
	if s, ok := stdError[c]; ok {
		return s
	}
	return fmt.Sprintf("error code %d", c)
}

// A Coder is a value that can report an error code value.
type Coder interface {
	ErrCode() Code
}

// Err converts c to an error value, which is nil for code.NoError and
// otherwise an error value whose message is the string value of c.
func (c Code) Err() error {
	if c == NoError {
		return nil
	} else if s, ok := stdError[c]; ok {
		return fmt.Errorf("[%d] %s", c, s)
	}
	return errors.New(c.String())
}

// Pre-defined error codes for the conditions the channel layer can
// report.
const (
	NoError          Code = 0 // Denotes a nil error (used by FromError)
	EncodeError      Code = 1 // The codec cannot represent the value
	DecodeError      Code = 2 // Malformed bytes received on a channel
	HandleRedeemed   Code = 3 // The response handle was already redeemed
	TransportError   Code = 4 // The underlying messenger failed
	NoHandler        Code = 5 // No handler registered on the remote side
	Cancelled        Code = 6 // Request cancelled (context.Canceled)
	DeadlineExceeded Code = 7 // Request deadline exceeded (context.DeadlineExceeded)
	SystemError      Code = 8 // Errors from the operating environment
)

var stdError = map[Code]string{
	NoError:          "no error (success)",
	EncodeError:      "encode error",
	DecodeError:      "decode error",
	HandleRedeemed:   "response handle already redeemed",
	TransportError:   "transport error",
	NoHandler:        "no handler registered",
	Cancelled:        "request cancelled",
	DeadlineExceeded: "deadline exceeded",
	SystemError:      "system error",
}

// Register adds a new Code value with the specified message string.
// This function will panic if the proposed value is already registered.
func Register(value int32, message string) Code {
	code := Code(value)
	if s, ok := stdError[code]; ok {
		panic(fmt.Sprintf("code %d is already registered for %q", code, s))
	}
	stdError[code] = message
	return code
}

// FromError returns a Code to categorize the specified error.
// If err == nil, it returns code.NoError.
// If err is a Coder, it returns the reported code value.
// If err is context.Canceled, it returns code.Cancelled.
// If err is context.DeadlineExceeded, it returns code.DeadlineExceeded.
// Otherwise it returns code.SystemError.
func FromError(err error) Code {
	if err == nil {
		return NoError
	}
	var c Coder
	if errors.As(err, &c) {
		return c.ErrCode()
	}
	switch {
	case errors.Is(err, context.Canceled):
		return Cancelled
	case errors.Is(err, context.DeadlineExceeded):
		return DeadlineExceeded
	default:
		return SystemError
	}
}
