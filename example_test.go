package msgchan_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/awilkes/msgchan"
	"github.com/awilkes/msgchan/codec"
	"github.com/awilkes/msgchan/wire"
)

func Example() {
	host, guest := wire.Direct(nil)
	defer func() {
		host.Stop()
		guest.Stop()
		host.Wait()
		guest.Wait()
	}()

	// The guest side answers each message with its upper-cased form.
	shout := msgchan.New(guest, "shout", codec.String{})
	shout.SetHandler(func(_ context.Context, msg any, reply *msgchan.ResponseHandle) {
		if err := shout.Respond(reply, strings.ToUpper(msg.(string))); err != nil {
			log.Fatalf("Respond: %v", err)
		}
	})

	ch := msgchan.New(host, "shout", codec.String{})
	rsp, err := ch.Send(context.Background(), "is there anybody in there?")
	if err != nil {
		log.Fatalf("Send: %v", err)
	}
	fmt.Println(rsp)
	// Output:
	// IS THERE ANYBODY IN THERE?
}
