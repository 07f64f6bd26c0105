// Package codec defines the message codecs used by msgchan channels.
//
// A Codec converts an application-level message value to and from an
// opaque byte buffer. Codecs are stateless; both sides of a channel
// must use the same codec.
package codec

import "fmt"

// A Codec converts message values to and from byte buffers. Encode
// must not fail on well-formed input; a value the codec cannot
// represent is a caller contract violation and reports an error.
// Decode reports an error for malformed input.
type Codec interface {
	// Encode converts v to its byte encoding.
	Encode(v any) ([]byte, error)

	// Decode converts data back to a message value.
	Decode(data []byte) (any, error)
}

// Raw is the identity codec: messages are byte slices passed through
// without interpretation. A nil value encodes to an empty buffer.
type Raw struct{}

// Encode implements part of the Codec interface. It accepts []byte,
// string, and nil values.
func (Raw) Encode(v any) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return t, nil
	case string:
		return []byte(t), nil
	default:
		return nil, fmt.Errorf("raw codec cannot encode %T", v)
	}
}

// Decode implements part of the Codec interface.
func (Raw) Decode(data []byte) (any, error) { return data, nil }

// String encodes string messages as their UTF-8 bytes. A nil value
// encodes to an empty buffer, which decodes to the empty string.
type String struct{}

// Encode implements part of the Codec interface. It accepts string
// and nil values.
func (String) Encode(v any) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(t), nil
	default:
		return nil, fmt.Errorf("string codec cannot encode %T", v)
	}
}

// Decode implements part of the Codec interface.
func (String) Decode(data []byte) (any, error) { return string(data), nil }
