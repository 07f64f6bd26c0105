package wire

import (
	"fmt"
	"io"
	"log"

	"github.com/awilkes/msgchan/metrics"
)

const logFlags = log.LstdFlags | log.Lshortfile

// Options control the behaviour of a messenger created by New. A nil
// *Options provides sensible defaults.
type Options struct {
	// If not nil, send debug logs to this writer.
	LogWriter io.Writer

	// Allows up to the specified number of handler invocations to
	// execute concurrently. A value less than 1 uses 1, which
	// serializes deliveries in the order they were received.
	Concurrency int

	// If not nil, the messenger counts its activity in this collector:
	// bytes read and written, requests sent and cancelled, messages
	// received, unhandled messages, discarded replies, and the maximum
	// depth reached by the inbound dispatch queue.
	Metrics *metrics.M
}

func (o *Options) logger() func(string, ...any) {
	if o == nil || o.LogWriter == nil {
		return func(string, ...any) {}
	}
	logger := log.New(o.LogWriter, "[wire.Messenger] ", logFlags)
	return func(msg string, args ...any) { logger.Output(2, fmt.Sprintf(msg, args...)) }
}

func (o *Options) concurrency() int64 {
	if o == nil || o.Concurrency < 1 {
		return 1
	}
	return int64(o.Concurrency)
}

func (o *Options) metrics() *metrics.M {
	if o == nil {
		return nil // a nil collector discards all metrics
	}
	return o.Metrics
}
