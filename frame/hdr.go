package frame

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Header defines a framing that transmits and receives records with a
// header prefix similar to HTTP, in which the value of the string
// describes the content encoding.
//
// Specifically, each record is sent in the format:
//
//	Content-Type: <mime-type>\r\n
//	Content-Length: <nbytes>\r\n
//	\r\n
//	<payload>
//
// The length (nbytes) is encoded as decimal digits. Unknown header
// fields on received records are ignored.
func Header(mimeType string) Framing {
	return func(r io.Reader, wc io.WriteCloser) Channel {
		return &hdr{
			mtype: mimeType,
			wc:    wc,
			rd:    bufio.NewReader(r),
			buf:   bytes.NewBuffer(nil),
		}
	}
}

// An hdr implements Channel. Records sent on an hdr channel are
// framed as a header/body transaction, similar to HTTP.
type hdr struct {
	mtype string
	wc    io.WriteCloser
	rd    *bufio.Reader
	buf   *bytes.Buffer
}

// Send implements part of the Channel interface.
func (h *hdr) Send(msg []byte) error {
	h.buf.Reset()
	fmt.Fprintf(h.buf, "Content-Type: %s\r\n", h.mtype)
	fmt.Fprintf(h.buf, "Content-Length: %d\r\n\r\n", len(msg))
	h.buf.Write(msg)
	_, err := h.wc.Write(h.buf.Next(h.buf.Len()))
	return err
}

// Recv implements part of the Channel interface.
func (h *hdr) Recv() ([]byte, error) {
	fields := make(map[string]string)
	for {
		raw, err := h.rd.ReadString('\n')
		line := strings.TrimRight(raw, "\r\n")
		if line != "" {
			name, value, ok := strings.Cut(line, ":")
			if !ok {
				return nil, errors.New("invalid header line")
			}
			fields[strings.ToLower(name)] = strings.TrimSpace(value)
		}
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		} else if line == "" {
			break
		}
	}

	if ctype, ok := fields["content-type"]; !ok || ctype != h.mtype {
		return nil, errors.New("invalid content-type")
	}

	clen, ok := fields["content-length"]
	if !ok {
		return nil, errors.New("missing required content-length")
	}
	size, err := strconv.Atoi(clen)
	if err != nil {
		return nil, fmt.Errorf("invalid content-length: %v", err)
	} else if size < 0 {
		return nil, errors.New("negative content-length")
	}

	// ReadFull is required here: the buffered reader may not have a
	// big enough buffer for the whole record, and issues only a single
	// read to the underlying source.
	data := make([]byte, size)
	if _, err := io.ReadFull(h.rd, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Close implements part of the Channel interface.
func (h *hdr) Close() error { return h.wc.Close() }
