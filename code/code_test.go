package code

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestRegistration(t *testing.T) {
	const message = "fun for the whole family"
	c := Register(-100, message)
	if got := c.String(); got != message {
		t.Errorf("Register(-100): got %q, want %q", got, message)
	} else if c != -100 {
		t.Errorf("Register(-100): got %d instead", c)
	}
}

func TestRegistrationError(t *testing.T) {
	defer func() {
		if v := recover(); v != nil {
			t.Logf("Register correctly panicked: %v", v)
		} else {
			t.Fatalf("Register should have panicked on input %d, but did not", DecodeError)
		}
	}()
	Register(int32(DecodeError), "bogus")
}

type testCoder Code

func (t testCoder) ErrCode() Code { return Code(t) }
func (testCoder) Error() string   { return "bogus" }

func TestFromError(t *testing.T) {
	tests := []struct {
		input error
		want  Code
	}{
		{nil, NoError},
		{testCoder(DecodeError), DecodeError},
		{testCoder(NoHandler), NoHandler},
		{fmt.Errorf("wrapped: %w", testCoder(HandleRedeemed)), HandleRedeemed},
		{context.Canceled, Cancelled},
		{fmt.Errorf("wrapped: %w", context.Canceled), Cancelled},
		{context.DeadlineExceeded, DeadlineExceeded},
		{errors.New("other"), SystemError},
		{io.EOF, SystemError},
	}
	for _, test := range tests {
		if got := FromError(test.input); got != test.want {
			t.Errorf("FromError(%v): got %v, want %v", test.input, got, test.want)
		}
	}
}

func TestErr(t *testing.T) {
	if err := NoError.Err(); err != nil {
		t.Errorf("NoError.Err(): got %v, want nil", err)
	}
	if err := DecodeError.Err(); err == nil {
		t.Error("DecodeError.Err(): got nil, want an error")
	} else if got, want := FromError(err), SystemError; got != want {
		// A bare code error does not implement Coder.
		t.Errorf("FromError(DecodeError.Err()): got %v, want %v", got, want)
	}
	if got, want := Code(-999).Err().Error(), "error code -999"; got != want {
		t.Errorf("Code(-999).Err(): got %q, want %q", got, want)
	}
}
