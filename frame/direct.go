package frame

import (
	"errors"
	"io"
)

type direct struct {
	send chan<- []byte
	recv <-chan []byte
}

func (d direct) Send(msg []byte) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.New("send on closed channel")
		}
	}()
	cp := make([]byte, len(msg))
	copy(cp, msg)
	d.send <- cp
	return nil
}

func (d direct) Recv() ([]byte, error) {
	msg, ok := <-d.recv
	if ok {
		return msg, nil
	}
	return nil, io.EOF
}

func (d direct) Close() error { close(d.send); return nil }

// Direct returns a pair of connected in-memory channels that pass
// record buffers directly without framing or encoding. Records sent
// on one side are received by the other, and vice versa.
func Direct() (local, remote Channel) {
	l2r := make(chan []byte)
	r2l := make(chan []byte)
	local = direct{send: l2r, recv: r2l}
	remote = direct{send: r2l, recv: l2r}
	return
}
