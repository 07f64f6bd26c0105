package msgchan

import (
	"context"
	"sync/atomic"

	"github.com/awilkes/msgchan/code"
)

// A Messenger is a shared byte-message carrier that multiplexes named
// channels onto a single connection. Implementations must be safe for
// concurrent use by multiple goroutines, and must identify traffic
// only by channel name.
//
// The wire package provides a Messenger implementation; the interface
// is exported so that channels can be tested against in-memory fakes.
type Messenger interface {
	// Send transmits data tagged with the given channel name to the
	// remote side and blocks until reply bytes arrive, ctx ends, or
	// the messenger fails. An empty reply is valid and yields nil.
	Send(ctx context.Context, name string, data []byte) ([]byte, error)

	// Post transmits data tagged with the given channel name for
	// which no reply is expected. It returns once the message has
	// been handed to the connection.
	Post(name string, data []byte) error

	// Register installs the raw handler for the given channel name,
	// replacing any previous registration. Replacement is atomic with
	// respect to inbound dispatch.
	Register(name string, h BinaryHandler)

	// Unregister removes the handler registration for the given
	// channel name, if any. Subsequent inbound requests on that name
	// are answered by the messenger with a code.NoHandler error.
	Unregister(name string)

	// Complete redeems a response handle produced by this messenger
	// with the given reply bytes (nil for an empty reply). It reports
	// an error if the handle was already redeemed, belongs to a
	// different messenger, or the reply cannot be transmitted.
	Complete(h *ResponseHandle, data []byte) error
}

// A BinaryHandler receives raw inbound messages for a channel name.
// For messages that expect a response, reply is a single-use handle
// that must eventually be redeemed through the messenger; for
// fire-and-forget messages reply is nil.
//
// The context is cancelled if the remote sender abandons the request
// or the messenger shuts down.
type BinaryHandler func(ctx context.Context, data []byte, reply *ResponseHandle)

// A ResponseHandle represents the right to reply to exactly one
// inbound message. It is created by a Messenger alongside the message
// it answers, and is redeemable at most once.
type ResponseHandle struct {
	owner    any
	reply    func(data []byte) error
	redeemed atomic.Bool
}

// NewResponseHandle returns a handle owned by owner whose redemption
// invokes reply with the response bytes. It is intended for use by
// Messenger implementations.
func NewResponseHandle(owner any, reply func(data []byte) error) *ResponseHandle {
	return &ResponseHandle{owner: owner, reply: reply}
}

// Owner returns the value the handle was created with, typically the
// messenger that produced it.
func (h *ResponseHandle) Owner() any { return h.owner }

// Redeem consumes h, transmitting data as the reply to the message h
// was delivered with. The first call consumes the handle whether or
// not transmission succeeds; every later call fails with
// code.HandleRedeemed.
func (h *ResponseHandle) Redeem(data []byte) error {
	if h.redeemed.Swap(true) {
		return Errorf(code.HandleRedeemed, "response handle already redeemed")
	}
	return h.reply(data)
}
