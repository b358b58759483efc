// Package packet frames telemetry messages for transport: one packet is a
// 32-bit big-endian sequence number followed by zero or more concatenated
// wire messages with no separators. A packet with a bare sequence number and
// no messages is a valid keep-alive.
package packet

import (
	"encoding/binary"
	"fmt"

	"github.com/skyward-data/telemetry/internal/telemetry/message"
)

// SequenceSize is the length of the packet sequence prefix in bytes.
const SequenceSize = 4

// Encode prepends the sequence number to the concatenation of the given
// pre-encoded messages, preserving their order. Callers own the sequence
// counter; this layer attaches no meaning to it beyond placement on the wire.
func Encode(sequence uint32, msgs ...[]byte) []byte {
	size := SequenceSize
	for _, m := range msgs {
		size += len(m)
	}
	buf := make([]byte, SequenceSize, size)
	binary.BigEndian.PutUint32(buf, sequence)
	for _, m := range msgs {
		buf = append(buf, m...)
	}
	return buf
}

// Scanner walks the messages of one packet buffer lazily, in wire order.
// Usage follows bufio.Scanner:
//
//	s, err := packet.NewScanner(reg, buf)
//	for s.Scan() {
//		m := s.Message()
//		...
//	}
//	if err := s.Err(); err != nil { ... }
//
// Each message is decoded only when Scan reaches it, so callers may stop
// early without paying for the remainder. Reset restarts the walk over the
// same buffer.
type Scanner struct {
	reg      *message.Registry
	sequence uint32
	payload  []byte
	off      int
	cur      *message.Decoded
	err      error
}

// NewScanner reads the packet's sequence number and prepares to scan its
// messages. A buffer shorter than the 4-byte sequence prefix fails with
// ErrTruncated; in particular an empty buffer is not a valid packet.
func NewScanner(reg *message.Registry, buf []byte) (*Scanner, error) {
	if len(buf) < SequenceSize {
		return nil, fmt.Errorf("need %d sequence bytes, have %d: %w",
			SequenceSize, len(buf), message.ErrTruncated)
	}
	return &Scanner{
		reg:      reg,
		sequence: binary.BigEndian.Uint32(buf),
		payload:  buf[SequenceSize:],
	}, nil
}

// Sequence returns the packet's sequence number.
func (s *Scanner) Sequence() uint32 { return s.sequence }

// Scan advances to the next message. It returns false when the buffer is
// exhausted or a decode error occurred; check Err afterwards. A non-empty
// tail too short for a complete message surfaces as ErrTruncated rather
// than being silently dropped.
func (s *Scanner) Scan() bool {
	if s.err != nil || s.off >= len(s.payload) {
		return false
	}
	dec, n, err := message.Decode(s.reg, s.payload[s.off:])
	if err != nil {
		s.err = fmt.Errorf("message at packet offset %d: %w", SequenceSize+s.off, err)
		return false
	}
	s.cur = dec
	s.off += n
	return true
}

// Message returns the message decoded by the last successful Scan.
func (s *Scanner) Message() *message.Decoded { return s.cur }

// Err returns the first error encountered while scanning, or nil if the
// walk ended cleanly at the end of the buffer.
func (s *Scanner) Err() error { return s.err }

// Reset rewinds the scanner to the first message of the packet.
func (s *Scanner) Reset() {
	s.off = 0
	s.cur = nil
	s.err = nil
}

// Decode eagerly decodes a whole packet. It returns the sequence number and
// every message in wire order, or the first error encountered.
func Decode(reg *message.Registry, buf []byte) (uint32, []*message.Decoded, error) {
	s, err := NewScanner(reg, buf)
	if err != nil {
		return 0, nil, err
	}
	var msgs []*message.Decoded
	for s.Scan() {
		msgs = append(msgs, s.Message())
	}
	if err := s.Err(); err != nil {
		return s.Sequence(), nil, err
	}
	return s.Sequence(), msgs, nil
}
