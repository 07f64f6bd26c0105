// Package frame defines byte-record framing for msgchan messengers.
//
// A frame.Channel carries opaque byte records over a stream,
// supplying the record boundaries that the wire protocol needs; it
// does not interpret record contents.
package frame

import (
	"errors"
	"io"
	"net"
)

// A Channel represents the ability to transmit and receive byte
// records. A channel does not interpret the contents of a record, but
// may add and remove framing so that records can be embedded in
// byte-stream protocols. The methods of a Channel need not be safe
// for concurrent use.
type Channel interface {
	// Send transmits a record on the channel.
	Send([]byte) error

	// Recv returns the next available record from the channel. If no
	// further records are available, it returns io.EOF.
	Recv() ([]byte, error)

	// Close shuts down the channel, after which no further records
	// may be sent or received.
	Close() error
}

// A Framing converts a reader and a writer into a Channel with a
// particular message-framing discipline.
type Framing func(io.Reader, io.WriteCloser) Channel

// IsErrClosing reports whether err is an error that results from
// reading a connection that was closed by the reader's own side.
func IsErrClosing(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}
