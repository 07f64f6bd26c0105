package frame

import "io"

// Pipe creates a pair of connected channels using the specified
// framing discipline over in-memory pipes. Pipe will panic if framing
// == nil.
func Pipe(framing Framing) (local, remote Channel) {
	lr, rw := io.Pipe()
	rr, lw := io.Pipe()
	local = framing(lr, lw)
	remote = framing(rr, rw)
	return
}
