// Package wire implements a msgchan.Messenger that multiplexes named
// message channels over a single frame.Channel.
//
// Each record on the underlying channel carries one envelope: a JSON
// object naming the envelope kind, the target channel, an optional
// correlation ID, and an opaque payload. The payload bytes are those
// produced by the channel's codec; the wire layer never interprets
// them.
package wire

import (
	"encoding/json"
	"errors"

	"github.com/awilkes/msgchan"
	"github.com/awilkes/msgchan/code"
)

// Envelope kinds. A request expects exactly one reply or error
// envelope bearing its ID; a message expects none. A cancel envelope
// tells the receiving side that the sender has abandoned the request
// with the given ID.
const (
	kindMessage = 1 // fire-and-forget message
	kindRequest = 2 // message expecting a reply
	kindReply   = 3 // successful reply to a request
	kindError   = 4 // error reply to a request
	kindCancel  = 5 // sender abandoned a request
)

// An envelope is the transmission format of one wire record.
type envelope struct {
	Kind int        `json:"kind"`
	ID   string     `json:"id,omitempty"`      // set on request, reply, error, cancel
	Name string     `json:"name,omitempty"`    // target channel, set on request and message
	P    []byte     `json:"payload,omitempty"` // codec-produced bytes
	E    *wireError `json:"error,omitempty"`   // set on error envelopes
}

func (e *envelope) encode() ([]byte, error) { return json.Marshal(e) }

func parseEnvelope(data []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Kind < kindMessage || env.Kind > kindCancel {
		return nil, errors.New("invalid envelope kind")
	}
	return &env, nil
}

// A wireError is the transmission format of an error object.
type wireError struct {
	Code int32  `json:"code"`
	Msg  string `json:"message,omitempty"`
}

// toError converts a wire-format error object into a *msgchan.Error.
func (e *wireError) toError() *msgchan.Error {
	if e == nil {
		return nil
	}
	return &msgchan.Error{Code: code.Code(e.Code), Message: e.Msg}
}
