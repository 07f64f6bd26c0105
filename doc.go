/*
Package msgchan implements named, codec-typed message channels for
exchanging discrete application messages across a process boundary.

A Channel binds a name and a codec.Codec to a Messenger, a shared
byte-oriented carrier that multiplexes any number of named channels
onto a single connection. The channel layer encodes and decodes
application values and correlates outbound requests with their
asynchronous replies; it never inspects message structure and never
frames bytes itself.

# Sending

Send transmits a message on the channel and blocks until the remote
side replies, the context ends, or the messenger fails:

	ch := msgchan.New(m, "echo", codec.String{})
	reply, err := ch.Send(ctx, "hello")

Post transmits a message for which no reply is expected; it returns as
soon as the message has been handed to the messenger.

# Receiving

SetHandler registers a function to receive inbound messages. Each
message that expects a reply is delivered together with a
ResponseHandle, a single-use capability that must eventually be
redeemed through Respond:

	ch.SetHandler(func(ctx context.Context, msg any, reply *msgchan.ResponseHandle) {
		if err := ch.Respond(reply, msg); err != nil {
			log.Printf("respond: %v", err)
		}
	})

A handler may retain the handle and redeem it after returning, for
example to complete the reply asynchronously. Redeeming a handle a
second time fails with code.HandleRedeemed.

The wire subpackage provides a production Messenger that multiplexes
channels over a frame.Channel; the codec subpackage provides message
codecs.
*/
package msgchan
