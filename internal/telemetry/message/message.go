package message

import (
	"encoding/binary"
	"fmt"
)

const (
	// HeaderSize is the fixed message header length: fourcc(4) +
	// timestamp(6) + payload length(2).
	HeaderSize = 12

	// MaxTimestamp is the largest encodable timestamp (48 bits, nanoseconds).
	MaxTimestamp = 1<<48 - 1

	// MaxPayloadSize is the largest payload the 16-bit length field allows.
	MaxPayloadSize = 65535
)

// Values maps field names to values for one message instance. Encode
// accepts any Go numeric for numeric kinds; Decode produces the canonical
// types documented on decodeField (int64, uint64, float32, float64, string).
type Values map[string]any

// Decoded is the result of decoding a single message: its resolved type,
// the 48-bit timestamp in nanoseconds, and the reconstructed field values.
type Decoded struct {
	Type      *MessageType
	Timestamp uint64
	Values    Values
}

// Encode builds one wire message: the 12-byte header followed by every
// field of the named type, in declared order, taken from values.
//
// Fails with ErrUnknownType for an unregistered code, ErrTimestampRange if
// tsNanos exceeds 48 bits, and ErrMissingField if values lacks a declared
// field. Field-level range and overflow errors propagate unchanged.
func Encode(reg *Registry, code string, tsNanos uint64, values Values) ([]byte, error) {
	t, err := reg.LookupCode(code)
	if err != nil {
		return nil, err
	}
	return t.Encode(tsNanos, values)
}

// Encode builds one wire message of this type. See Encode (package level).
func (t *MessageType) Encode(tsNanos uint64, values Values) ([]byte, error) {
	if tsNanos > MaxTimestamp {
		return nil, fmt.Errorf("%d: %w", tsNanos, ErrTimestampRange)
	}

	buf := make([]byte, HeaderSize, HeaderSize+t.payloadSize)
	copy(buf[0:4], t.fourcc[:])
	// 48-bit timestamp packed as high 16 bits then low 32 bits.
	binary.BigEndian.PutUint16(buf[4:6], uint16(tsNanos>>32))
	binary.BigEndian.PutUint32(buf[6:10], uint32(tsNanos))
	binary.BigEndian.PutUint16(buf[10:12], uint16(t.payloadSize))

	var err error
	for _, f := range t.fields {
		v, ok := values[f.Name]
		if !ok {
			return nil, fmt.Errorf("%s.%s: %w", t.Code(), f.Name, ErrMissingField)
		}
		buf, err = appendField(buf, f, v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Code(), err)
		}
	}
	return buf, nil
}

// Decode parses one message from the front of buf.
//
// It requires a full 12-byte header (ErrTruncated otherwise), a registered
// fourcc (ErrUnknownType), a declared length equal to the type's computed
// payload size (ErrMessageSize), and the full payload present in buf
// (ErrTruncated). On success it returns the decoded message and the number
// of bytes consumed, HeaderSize + payload size.
func Decode(reg *Registry, buf []byte) (*Decoded, int, error) {
	if len(buf) < HeaderSize {
		return nil, 0, fmt.Errorf("need %d header bytes, have %d: %w", HeaderSize, len(buf), ErrTruncated)
	}

	var code [4]byte
	copy(code[:], buf[0:4])
	t, err := reg.Lookup(code)
	if err != nil {
		return nil, 0, err
	}

	ts := uint64(binary.BigEndian.Uint16(buf[4:6]))<<32 | uint64(binary.BigEndian.Uint32(buf[6:10]))
	length := int(binary.BigEndian.Uint16(buf[10:12]))

	if length != t.payloadSize {
		return nil, 0, fmt.Errorf("%s: declared %d, layout requires %d: %w",
			t.Code(), length, t.payloadSize, ErrMessageSize)
	}
	if len(buf) < HeaderSize+length {
		return nil, 0, fmt.Errorf("%s: need %d payload bytes, have %d: %w",
			t.Code(), length, len(buf)-HeaderSize, ErrTruncated)
	}

	values := make(Values, len(t.fields))
	off := HeaderSize
	for _, f := range t.fields {
		values[f.Name] = decodeField(f, buf[off:off+f.Width])
		off += f.Width
	}

	return &Decoded{Type: t, Timestamp: ts, Values: values}, HeaderSize + length, nil
}
