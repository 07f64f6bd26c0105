package msgchan

import (
	"context"
	"sync/atomic"

	"github.com/awilkes/msgchan/code"
	"github.com/awilkes/msgchan/codec"
)

// A Handler receives inbound messages on a channel. The message value
// is the decoded payload; if decoding failed, msg is the *Error value
// describing the failure (with code.DecodeError) so the handler can
// decide how to resolve the pending reply.
//
// For messages that expect a response, reply must eventually be
// redeemed by a call to the channel's Respond method; the handler may
// retain the handle and redeem it after returning. For fire-and-forget
// messages reply is nil.
type Handler func(ctx context.Context, msg any, reply *ResponseHandle)

// A Channel is a named, codec-typed conduit for request/response
// messages carried by a Messenger. The zero value is not usable; call
// New. A Channel holds no locks and is safe for concurrent use.
//
// Channel names are not validated for uniqueness: binding two
// channels to the same name on one messenger makes them race for
// inbound delivery, which is a caller error.
type Channel struct {
	m     Messenger
	name  string
	codec codec.Codec

	handler atomic.Pointer[Handler] // current inbound handler, nil when unset
}

// New constructs a channel bound to the given name on m. The codec
// must match the one used by the remote side of the channel. New
// panics if m or c is nil or name is empty.
//
// The channel does not register anything with the messenger until a
// handler is set.
func New(m Messenger, name string, c codec.Codec) *Channel {
	if m == nil {
		panic("nil messenger")
	} else if c == nil {
		panic("nil codec")
	} else if name == "" {
		panic("empty channel name")
	}
	return &Channel{m: m, name: name, codec: c}
}

// Name reports the channel name c is bound to.
func (c *Channel) Name() string { return c.name }

// SetHandler installs h as the inbound handler for the channel,
// replacing and discarding any previous handler. Passing nil removes
// the registration entirely, after which inbound requests on the name
// are answered by the messenger with a code.NoHandler error.
//
// The current handler is looked up when each message is dispatched,
// never cached across calls, so a handler may replace or remove
// itself from within its own invocation.
func (c *Channel) SetHandler(h Handler) {
	if h == nil {
		c.handler.Store(nil)
		c.m.Unregister(c.name)
		return
	}
	c.handler.Store(&h)
	c.m.Register(c.name, c.dispatch)
}

// Close discards the channel, clearing its handler registration on
// the messenger so stale deliveries cannot fire into it. Close does
// not wait for in-flight operations; the caller should cancel any
// pending sends first.
func (c *Channel) Close() { c.SetHandler(nil) }

// dispatch is the raw handler registered with the messenger. It
// decodes the payload and invokes the current handler.
func (c *Channel) dispatch(ctx context.Context, data []byte, reply *ResponseHandle) {
	hp := c.handler.Load()
	if hp == nil {
		// Unregistration raced an in-flight delivery. Resolve the
		// sender's wait with an empty reply rather than leaking the
		// handle.
		if reply != nil {
			c.m.Complete(reply, nil)
		}
		return
	}
	msg, err := c.codec.Decode(data)
	if err != nil {
		(*hp)(ctx, codeError(code.DecodeError, err), reply)
		return
	}
	(*hp)(ctx, msg, reply)
}

// Send transmits msg on the channel and blocks until the remote side
// replies, ctx ends, or the messenger fails. An empty reply yields a
// nil value. Errors have concrete type *Error; a send interrupted by
// ctx reports code.Cancelled or code.DeadlineExceeded, and no
// late-arriving reply is delivered afterward.
func (c *Channel) Send(ctx context.Context, msg any) (any, error) {
	bits, err := c.codec.Encode(msg)
	if err != nil {
		return nil, codeError(code.EncodeError, err)
	}
	rsp, err := c.m.Send(ctx, c.name, bits)
	if err != nil {
		return nil, codeError(code.TransportError, err)
	} else if len(rsp) == 0 {
		return nil, nil // empty reply
	}
	out, err := c.codec.Decode(rsp)
	if err != nil {
		return nil, codeError(code.DecodeError, err)
	}
	return out, nil
}

// Post transmits msg on the channel without expecting a reply. It
// returns once the message has been handed to the messenger.
func (c *Channel) Post(msg any) error {
	bits, err := c.codec.Encode(msg)
	if err != nil {
		return codeError(code.EncodeError, err)
	}
	if err := c.m.Post(c.name, bits); err != nil {
		return codeError(code.TransportError, err)
	}
	return nil
}

// Respond redeems reply with msg as the response to the inbound
// message the handle was delivered with. A nil msg sends an empty
// reply. Respond reports an error if the handle was already redeemed
// (code.HandleRedeemed), does not belong to this channel's messenger,
// or the reply could not be transmitted.
func (c *Channel) Respond(reply *ResponseHandle, msg any) error {
	var bits []byte
	if msg != nil {
		v, err := c.codec.Encode(msg)
		if err != nil {
			return codeError(code.EncodeError, err)
		}
		bits = v
	}
	return c.m.Complete(reply, bits)
}
