package frame_test

import (
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/awilkes/msgchan/frame"
)

func testSendRecv(t *testing.T, s, r frame.Channel, msg string) {
	t.Helper()
	var wg sync.WaitGroup
	var sendErr, recvErr error
	var data []byte

	wg.Add(2)
	go func() {
		defer wg.Done()
		data, recvErr = r.Recv()
	}()
	go func() {
		defer wg.Done()
		sendErr = s.Send([]byte(msg))
	}()
	wg.Wait()

	if sendErr != nil {
		t.Errorf("Send(%q): unexpected error: %v", msg, sendErr)
	}
	if recvErr != nil {
		t.Errorf("Recv(): unexpected error: %v", recvErr)
	}
	if got := string(data); got != msg {
		t.Errorf("Recv():\ngot  %#q\nwant %#q", got, msg)
	}
}

const message1 = `["Full plate and packing steel"]`
const message2 = `{"slogan":"Jump on your sword, evil!"}`

func TestDirect(t *testing.T) {
	lhs, rhs := frame.Direct()
	defer lhs.Close()
	defer rhs.Close()

	testSendRecv(t, lhs, rhs, message1)
	testSendRecv(t, rhs, lhs, message2)
}

func TestDirectClosed(t *testing.T) {
	lhs, rhs := frame.Direct()
	defer rhs.Close()
	lhs.Close() // immediately

	if err := lhs.Send([]byte("nonsense")); err == nil {
		t.Error("Send on closed channel did not fail")
	} else {
		t.Logf("Send correctly failed: %v", err)
	}
}

var framings = []struct {
	name    string
	framing frame.Framing
}{
	{"Varint", frame.Varint},
	{"NoMIME", frame.Header("")},
	{"Header", frame.Header("binary/octet-stream")},
}

var messages = []string{
	message1,
	message2,
	"null",
	"17",
	`"applejack"`,
	"    ",
	"xy z z y",
	string([]byte{0x00, 0x01, 0xfe, 0xff}), // not valid UTF-8

	// Include a long message to ensure size-dependent cases get exercised.
	`[` + strings.Repeat(`"ABCDefghIJKLmnopQRSTuvwxYZ!",`, 8000) + `"END"]`,
}

func TestChannelTypes(t *testing.T) {
	for _, test := range framings {
		t.Run(test.name, func(t *testing.T) {
			lhs, rhs := frame.Pipe(test.framing)
			defer lhs.Close()
			defer rhs.Close()

			for i, msg := range messages {
				n := strconv.Itoa(i + 1)
				t.Run("LR-"+n, func(t *testing.T) {
					testSendRecv(t, lhs, rhs, msg)
				})
				t.Run("RL-"+n, func(t *testing.T) {
					testSendRecv(t, rhs, lhs, msg)
				})
			}
		})
	}
}

func TestEmptyMessage(t *testing.T) {
	for _, test := range framings {
		t.Run(test.name, func(t *testing.T) {
			lhs, rhs := frame.Pipe(test.framing)
			defer lhs.Close()
			defer rhs.Close()

			testSendRecv(t, lhs, rhs, "")
		})
	}
	t.Run("Direct", func(t *testing.T) {
		lhs, rhs := frame.Direct()
		defer lhs.Close()
		defer rhs.Close()

		testSendRecv(t, lhs, rhs, "")
	})
}
