package wire

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"

	"github.com/creachadair/mds/mlink"
	"golang.org/x/sync/semaphore"

	"github.com/awilkes/msgchan"
	"github.com/awilkes/msgchan/code"
	"github.com/awilkes/msgchan/frame"
	"github.com/awilkes/msgchan/metrics"
)

// A Messenger carries messages for any number of named channels over
// a single frame.Channel. It implements msgchan.Messenger, and is
// safe for concurrent use by multiple goroutines.
//
// Inbound messages are delivered to registered handlers in the order
// they were received. With the default concurrency of 1, each handler
// invocation completes before the next begins; higher concurrency
// preserves the start order of invocations but allows them to
// overlap.
type Messenger struct {
	log    func(string, ...any) // write debug logs here
	metric *metrics.M           // count activity here (nil discards)
	sem    *semaphore.Weighted  // bounds concurrent handler execution

	wg sync.WaitGroup // reader, dispatcher, and in-flight handlers

	mu       sync.Mutex // protects the fields below
	ch       frame.Channel
	err      error                   // error from a previous operation
	work     chan struct{}           // signals message availability
	base     context.Context         // parent context for handler invocations
	halt     context.CancelFunc      // cancels base at shutdown
	inq      *mlink.Queue[*envelope] // inbound messages awaiting dispatch
	handlers map[string]msgchan.BinaryHandler

	// For each outbound request awaiting a reply, the channel on which
	// its reply envelope will be delivered.
	pending map[string]chan *envelope
	nextID  int64

	// For each inbound request being handled, the cancel function for
	// the context passed to its handler.
	inflight map[string]context.CancelFunc
}

// New returns a new unstarted messenger with the given options. To
// begin exchanging messages, call Start.
func New(opts *Options) *Messenger {
	return &Messenger{
		log:      opts.logger(),
		metric:   opts.metrics(),
		sem:      semaphore.NewWeighted(opts.concurrency()),
		inq:      mlink.NewQueue[*envelope](),
		handlers: make(map[string]msgchan.BinaryHandler),
		pending:  make(map[string]chan *envelope),
		nextID:   1,
		inflight: make(map[string]context.CancelFunc),
	}
}

// Start enables processing of messages from ch and returns. Start
// does not block while the messenger runs. It will panic if the
// messenger is already running. It returns m to allow chaining with
// construction.
func (m *Messenger) Start(ch frame.Channel) *Messenger {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ch != nil {
		panic("messenger is already running")
	}
	m.ch = ch
	m.err = nil
	m.work = make(chan struct{}, 1)
	m.base, m.halt = context.WithCancel(context.Background())

	m.wg.Add(2)
	go func() { defer m.wg.Done(); m.read(ch) }()
	go func() { defer m.wg.Done(); m.dispatch() }()
	return m
}

// Send transmits data as a request on the named channel and blocks
// until reply bytes arrive, ctx ends, or the messenger stops. It
// implements part of msgchan.Messenger.
//
// If ctx ends first, Send reports a *msgchan.Error carrying
// code.Cancelled or code.DeadlineExceeded, the correlation state for
// the request is discarded so a late reply cannot resolve it, and the
// remote side is told (best effort) to abandon the request.
func (m *Messenger) Send(ctx context.Context, name string, data []byte) ([]byte, error) {
	m.mu.Lock()
	if m.ch == nil {
		m.mu.Unlock()
		return nil, msgchan.ErrMessengerStopped
	}
	id := strconv.FormatInt(m.nextID, 10)
	m.nextID++
	bits, err := (&envelope{Kind: kindRequest, ID: id, Name: name, P: data}).encode()
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if err := m.ch.Send(bits); err != nil {
		m.mu.Unlock()
		return nil, msgchan.Errorf(code.TransportError, "send request: %v", err)
	}
	// Record the pending request only after a successful transmit, so
	// a failed send does not leave a dead entry awaiting a reply. The
	// channel is buffered so the reader does not need to rendezvous
	// with this goroutine.
	p := make(chan *envelope, 1)
	m.pending[id] = p
	m.mu.Unlock()

	m.metric.Count("requests_sent", 1)
	m.metric.Count("bytes_written", int64(len(bits)))

	select {
	case rsp := <-p:
		return replyValue(rsp)
	case <-ctx.Done():
	}

	// The context ended. If the request is still pending, resolve it
	// as cancelled; otherwise the reply won the race and is already
	// sitting in the buffer.
	m.mu.Lock()
	_, waiting := m.pending[id]
	delete(m.pending, id)
	m.mu.Unlock()
	if !waiting {
		return replyValue(<-p)
	}

	m.log("Context ended for request %q, err=%v", id, ctx.Err())
	m.metric.Count("requests_cancelled", 1)
	if err := m.push(&envelope{Kind: kindCancel, ID: id}); err != nil {
		m.log("Posting cancel for request %q failed: %v", id, err)
	}
	cerr := ctx.Err()
	return nil, &msgchan.Error{Code: code.FromError(cerr), Message: cerr.Error()}
}

func replyValue(env *envelope) ([]byte, error) {
	if env.E != nil {
		return nil, env.E.toError()
	}
	return env.P, nil
}

// Post transmits data as a fire-and-forget message on the named
// channel. It implements part of msgchan.Messenger.
func (m *Messenger) Post(name string, data []byte) error {
	if err := m.push(&envelope{Kind: kindMessage, Name: name, P: data}); err != nil {
		return err
	}
	m.metric.Count("messages_posted", 1)
	return nil
}

// Register implements part of msgchan.Messenger. Registering a nil
// handler is equivalent to Unregister.
func (m *Messenger) Register(name string, h msgchan.BinaryHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h == nil {
		delete(m.handlers, name)
	} else {
		m.handlers[name] = h
	}
}

// Unregister implements part of msgchan.Messenger.
func (m *Messenger) Unregister(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handlers, name)
}

// Complete redeems h with the given reply bytes. It implements part
// of msgchan.Messenger.
func (m *Messenger) Complete(h *msgchan.ResponseHandle, data []byte) error {
	if h == nil || h.Owner() != m {
		return msgchan.Errorf(code.TransportError, "response handle does not belong to this messenger")
	}
	return h.Redeem(data)
}

// push marshals env and transmits it on the underlying channel.
func (m *Messenger) push(env *envelope) error {
	bits, err := env.encode()
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ch == nil {
		return msgchan.ErrMessengerStopped
	}
	if err := m.ch.Send(bits); err != nil {
		return msgchan.Errorf(code.TransportError, "send: %v", err)
	}
	m.metric.Count("bytes_written", int64(len(bits)))
	return nil
}

// read is the main receiver loop, decoding envelopes from the remote
// side and routing them. Replies are delivered directly to their
// pending requests; requests and messages are enqueued for the
// dispatcher so handler execution never blocks the reader.
func (m *Messenger) read(ch frame.Channel) {
	for {
		bits, err := ch.Recv()
		if err != nil {
			m.mu.Lock()
			m.stop(err)
			m.mu.Unlock()
			return
		}
		m.metric.Count("bytes_read", int64(len(bits)))
		env, err := parseEnvelope(bits)
		if err != nil {
			m.log("Discarding malformed envelope: %v", err)
			m.metric.Count("envelopes_malformed", 1)
			continue
		}

		m.mu.Lock()
		if m.ch == nil {
			// Stopped while this record was in flight; drop it.
			m.mu.Unlock()
			return
		}
		switch env.Kind {
		case kindReply, kindError:
			m.deliverReply(env)
		case kindCancel:
			if cancel, ok := m.inflight[env.ID]; ok {
				m.log("Remote abandoned request %q", env.ID)
				cancel()
				delete(m.inflight, env.ID)
			}
		default: // kindRequest, kindMessage
			m.metric.Count("messages_received", 1)
			m.inq.Add(env)
			m.metric.SetMax("inq_depth", int64(m.inq.Len()))
			if m.inq.Len() == 1 { // the queue was empty
				m.signal()
			}
		}
		m.mu.Unlock()
	}
}

// deliverReply finds the request pending on the reply's ID and
// delivers it. Unknown reply IDs are logged and discarded; this is
// how a reply that lost the race against cancellation ends. The
// caller must hold m.mu.
func (m *Messenger) deliverReply(env *envelope) {
	p, ok := m.pending[env.ID]
	if !ok {
		m.log("Discarding reply for unknown request %q", env.ID)
		m.metric.Count("replies_discarded", 1)
		return
	}
	delete(m.pending, env.ID)
	p <- env
}

func (m *Messenger) signal() {
	select {
	case m.work <- struct{}{}:
	default:
	}
}

// dispatch removes inbound messages from the queue and invokes their
// handlers, each on its own goroutine gated by the concurrency
// semaphore. The semaphore is acquired before the goroutine starts,
// so with weight 1 deliveries are fully serialized in receipt order.
func (m *Messenger) dispatch() {
	for {
		env, ok := m.nextMessage()
		if !ok {
			return
		}
		m.sem.Acquire(context.Background(), 1) // cannot fail: context never ends
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			defer m.sem.Release(1)
			m.deliver(env)
		}()
	}
}

// nextMessage blocks until an inbound message is available and
// returns it. It reports false when the messenger has stopped and the
// queue is drained.
func (m *Messenger) nextMessage() (*envelope, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for m.ch != nil && m.inq.IsEmpty() {
		m.mu.Unlock()
		<-m.work
		m.mu.Lock()
	}
	return m.inq.Pop()
}

// deliver invokes the registered handler for one inbound message. If
// no handler is registered for the target channel, a request is
// answered with a code.NoHandler error so the sender does not wait
// forever, and a message is dropped.
func (m *Messenger) deliver(env *envelope) {
	m.mu.Lock()
	h := m.handlers[env.Name]
	hctx := m.base
	if h != nil && env.Kind == kindRequest {
		ctx, cancel := context.WithCancel(m.base)
		m.inflight[env.ID] = cancel
		hctx = ctx
	}
	m.mu.Unlock()

	if h == nil {
		m.log("No handler registered for channel %q", env.Name)
		m.metric.Count("messages_unhandled", 1)
		if env.Kind == kindRequest {
			err := m.push(&envelope{Kind: kindError, ID: env.ID, E: &wireError{
				Code: int32(code.NoHandler),
				Msg:  "no handler registered for channel " + strconv.Quote(env.Name),
			}})
			if err != nil {
				m.log("Failed to reject request %q: %v", env.ID, err)
			}
		}
		return
	}

	var reply *msgchan.ResponseHandle
	if env.Kind == kindRequest {
		id := env.ID
		reply = msgchan.NewResponseHandle(m, func(data []byte) error {
			m.finishInbound(id)
			err := m.push(&envelope{Kind: kindReply, ID: id, P: data})
			if errors.Is(err, msgchan.ErrMessengerStopped) {
				return msgchan.Errorf(code.TransportError, "complete reply: %v", err)
			}
			return err
		})
	}
	h(hctx, env.P, reply)
}

// finishInbound retires the context reservation for an inbound
// request that is being answered.
func (m *Messenger) finishInbound(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cancel, ok := m.inflight[id]; ok {
		cancel()
		delete(m.inflight, id)
	}
}

// Stop shuts down the messenger: the underlying channel is closed,
// every pending send resolves with a transport error, and the
// contexts of in-flight handler invocations are cancelled. It is safe
// to call Stop multiple times or from concurrent goroutines; it takes
// effect once.
func (m *Messenger) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop(msgchan.ErrMessengerStopped)
}

// stop closes down the connection and records err as its final state.
// The caller must hold m.mu. If multiple callers invoke stop, only
// the first will successfully record its error status.
func (m *Messenger) stop(err error) {
	if m.ch == nil {
		return // nothing is running
	}
	m.log("Messenger signaled to stop with err=%v", err)
	m.ch.Close()
	m.halt()

	// Retain queued fire-and-forget messages so they are still
	// delivered before the dispatcher exits, but drop queued requests:
	// their senders learn of the failure from their own connection.
	var keep []*envelope
	m.inq.Each(func(env *envelope) bool {
		if env.Kind == kindMessage {
			keep = append(keep, env)
		}
		return true
	})
	m.inq.Clear()
	for _, env := range keep {
		m.inq.Add(env)
	}
	close(m.work)

	for id, cancel := range m.inflight {
		cancel()
		delete(m.inflight, id)
	}
	for id, p := range m.pending {
		delete(m.pending, id)
		p <- &envelope{Kind: kindError, ID: id, E: &wireError{
			Code: int32(code.TransportError),
			Msg:  "messenger stopped",
		}}
	}
	m.err = err
	m.ch = nil
}

// Wait blocks until the messenger has stopped and every dispatched
// handler has returned. It reports nil if the messenger stopped
// because Stop was called or because the connection closed normally;
// otherwise it reports the error that caused it to stop. After Wait
// returns it is safe to call Start again with a fresh channel.
func (m *Messenger) Wait() error {
	m.wg.Wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err == io.EOF || errors.Is(m.err, msgchan.ErrMessengerStopped) || frame.IsErrClosing(m.err) {
		return nil
	}
	return m.err
}
