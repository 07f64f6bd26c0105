package wire

import "github.com/awilkes/msgchan/frame"

// Direct returns a pair of running messengers connected to each other
// through an in-memory channel with no framing. Both messengers use
// the same options; a nil opts provides defaults for both. Stopping
// either messenger stops the other as the shared channel closes.
func Direct(opts *Options) (local, remote *Messenger) {
	lch, rch := frame.Direct()
	return New(opts).Start(lch), New(opts).Start(rch)
}

// Pipe returns a pair of running messengers connected to each other
// through in-memory pipes using the specified framing discipline.
// Both messengers use the same options; a nil opts provides defaults
// for both.
func Pipe(framing frame.Framing, opts *Options) (local, remote *Messenger) {
	lch, rch := frame.Pipe(framing)
	return New(opts).Start(lch), New(opts).Start(rch)
}
