package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Standard is a compact binary codec for a fixed vocabulary of value
// types: nil, bool, integers (decoded as int64), float64, string,
// []byte, []any, and map[string]any with values drawn from the same
// vocabulary.
//
// Each value is encoded as a single type tag followed by a
// type-specific payload; integers and lengths use the varint encoding
// of the encoding/binary package. A nil value encodes to an empty
// buffer, and an empty buffer decodes to nil.
type Standard struct{}

const (
	tagNil    = 0
	tagTrue   = 1
	tagFalse  = 2
	tagInt    = 3 // zigzag varint
	tagFloat  = 4 // 8 bytes, big-endian IEEE 754
	tagString = 5 // uvarint length + UTF-8 bytes
	tagBytes  = 6 // uvarint length + raw bytes
	tagList   = 7 // uvarint count + encoded elements
	tagMap    = 8 // uvarint count + alternating string keys and values
)

// Encode implements part of the Codec interface.
func (s Standard) Encode(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := s.encodeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s Standard) encodeValue(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case nil:
		buf.WriteByte(tagNil)
	case bool:
		if t {
			buf.WriteByte(tagTrue)
		} else {
			buf.WriteByte(tagFalse)
		}
	case int:
		s.encodeInt(buf, int64(t))
	case int32:
		s.encodeInt(buf, int64(t))
	case int64:
		s.encodeInt(buf, t)
	case float64:
		var fb [8]byte
		binary.BigEndian.PutUint64(fb[:], math.Float64bits(t))
		buf.WriteByte(tagFloat)
		buf.Write(fb[:])
	case string:
		buf.WriteByte(tagString)
		s.encodeLen(buf, len(t))
		buf.WriteString(t)
	case []byte:
		buf.WriteByte(tagBytes)
		s.encodeLen(buf, len(t))
		buf.Write(t)
	case []any:
		buf.WriteByte(tagList)
		s.encodeLen(buf, len(t))
		for _, elt := range t {
			if err := s.encodeValue(buf, elt); err != nil {
				return err
			}
		}
	case map[string]any:
		buf.WriteByte(tagMap)
		s.encodeLen(buf, len(t))
		for key, val := range t {
			buf.WriteByte(tagString)
			s.encodeLen(buf, len(key))
			buf.WriteString(key)
			if err := s.encodeValue(buf, val); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("standard codec cannot encode %T", v)
	}
	return nil
}

func (Standard) encodeInt(buf *bytes.Buffer, z int64) {
	var vb [binary.MaxVarintLen64]byte
	n := binary.PutVarint(vb[:], z)
	buf.WriteByte(tagInt)
	buf.Write(vb[:n])
}

func (Standard) encodeLen(buf *bytes.Buffer, n int) {
	var vb [binary.MaxVarintLen64]byte
	w := binary.PutUvarint(vb[:], uint64(n))
	buf.Write(vb[:w])
}

// Decode implements part of the Codec interface. Trailing bytes after
// a complete value are reported as an error.
func (s Standard) Decode(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	rd := bytes.NewReader(data)
	v, err := s.decodeValue(rd)
	if err != nil {
		return nil, err
	}
	if rd.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after message", rd.Len())
	}
	return v, nil
}

func (s Standard) decodeValue(rd *bytes.Reader) (any, error) {
	tag, err := rd.ReadByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagNil:
		return nil, nil
	case tagTrue:
		return true, nil
	case tagFalse:
		return false, nil
	case tagInt:
		return binary.ReadVarint(rd)
	case tagFloat:
		var fb [8]byte
		if _, err := io.ReadFull(rd, fb[:]); err != nil {
			return nil, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(fb[:])), nil
	case tagString:
		bits, err := s.decodeBytes(rd)
		return string(bits), err
	case tagBytes:
		return s.decodeBytes(rd)
	case tagList:
		n, err := s.decodeLen(rd)
		if err != nil {
			return nil, err
		}
		list := make([]any, n)
		for i := range list {
			if list[i], err = s.decodeValue(rd); err != nil {
				return nil, err
			}
		}
		return list, nil
	case tagMap:
		n, err := s.decodeLen(rd)
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, n)
		for i := 0; i < n; i++ {
			key, err := s.decodeValue(rd)
			if err != nil {
				return nil, err
			}
			ks, ok := key.(string)
			if !ok {
				return nil, fmt.Errorf("map key has type %T, not string", key)
			}
			if out[ks], err = s.decodeValue(rd); err != nil {
				return nil, err
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("invalid type tag %d", tag)
	}
}

func (s Standard) decodeBytes(rd *bytes.Reader) ([]byte, error) {
	n, err := s.decodeLen(rd)
	if err != nil {
		return nil, err
	}
	bits := make([]byte, n)
	if _, err := io.ReadFull(rd, bits); err != nil {
		return nil, err
	}
	return bits, nil
}

func (s Standard) decodeLen(rd *bytes.Reader) (int, error) {
	n, err := binary.ReadUvarint(rd)
	if err != nil {
		return 0, err
	}
	if n > uint64(rd.Len()) {
		return 0, fmt.Errorf("invalid length %d exceeds %d available bytes", n, rd.Len())
	}
	return int(n), nil
}
