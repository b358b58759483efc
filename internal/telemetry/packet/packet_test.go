package packet

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/skyward-data/telemetry/internal/telemetry/message"
)

func seqnMessage(t *testing.T, reg *message.Registry, ts uint64, n uint64) []byte {
	t.Helper()
	raw, err := message.Encode(reg, "SEQN", ts, message.Values{"Sequence": n})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return raw
}

func TestEncodeSequencePrefix(t *testing.T) {
	got := Encode(7)
	want := []byte{0, 0, 0, 7}
	if !bytes.Equal(got, want) {
		t.Errorf("keep-alive packet = % x, want % x", got, want)
	}

	reg := message.Standard()
	msg := seqnMessage(t, reg, 1000, 42)
	got = Encode(0xDEADBEEF, msg, msg)
	if len(got) != SequenceSize+2*len(msg) {
		t.Fatalf("packet length = %d", len(got))
	}
	if binary.BigEndian.Uint32(got) != 0xDEADBEEF {
		t.Errorf("sequence prefix = %x", binary.BigEndian.Uint32(got))
	}
	if !bytes.Equal(got[SequenceSize:SequenceSize+len(msg)], msg) {
		t.Error("first message bytes mangled")
	}
}

func TestScannerWalksMessagesInOrder(t *testing.T) {
	reg := message.Standard()
	buf := Encode(3,
		seqnMessage(t, reg, 100, 1),
		seqnMessage(t, reg, 200, 2),
		seqnMessage(t, reg, 300, 3),
	)

	s, err := NewScanner(reg, buf)
	if err != nil {
		t.Fatalf("NewScanner failed: %v", err)
	}
	if s.Sequence() != 3 {
		t.Errorf("Sequence = %d, want 3", s.Sequence())
	}

	var stamps []uint64
	for s.Scan() {
		stamps = append(stamps, s.Message().Timestamp)
	}
	if err := s.Err(); err != nil {
		t.Fatalf("Err = %v", err)
	}
	if len(stamps) != 3 || stamps[0] != 100 || stamps[1] != 200 || stamps[2] != 300 {
		t.Errorf("timestamps = %v, want [100 200 300]", stamps)
	}
}

func TestScannerKeepAlive(t *testing.T) {
	reg := message.Standard()
	s, err := NewScanner(reg, Encode(99))
	if err != nil {
		t.Fatalf("NewScanner on keep-alive failed: %v", err)
	}
	if s.Scan() {
		t.Error("Scan returned true on an empty packet")
	}
	if err := s.Err(); err != nil {
		t.Errorf("keep-alive Err = %v, want nil", err)
	}
	if s.Sequence() != 99 {
		t.Errorf("Sequence = %d", s.Sequence())
	}
}

func TestScannerShortBuffer(t *testing.T) {
	reg := message.Standard()
	for _, n := range []int{0, 1, 3} {
		if _, err := NewScanner(reg, make([]byte, n)); !errors.Is(err, message.ErrTruncated) {
			t.Errorf("NewScanner with %d bytes = %v, want ErrTruncated", n, err)
		}
	}
}

func TestScannerTruncatedTail(t *testing.T) {
	reg := message.Standard()
	msg := seqnMessage(t, reg, 100, 1)
	buf := Encode(1, msg, msg)
	buf = buf[:len(buf)-5] // second message loses its last 5 bytes

	s, err := NewScanner(reg, buf)
	if err != nil {
		t.Fatalf("NewScanner failed: %v", err)
	}
	if !s.Scan() {
		t.Fatalf("first Scan failed: %v", s.Err())
	}
	if s.Scan() {
		t.Error("Scan succeeded on a truncated message")
	}
	if err := s.Err(); !errors.Is(err, message.ErrTruncated) {
		t.Errorf("Err = %v, want ErrTruncated", err)
	}
}

func TestScannerBadMessageStopsWalk(t *testing.T) {
	reg := message.Standard()
	good := seqnMessage(t, reg, 100, 1)
	bad := append([]byte(nil), good...)
	copy(bad[0:4], "XXXX")

	s, err := NewScanner(reg, Encode(1, good, bad, good))
	if err != nil {
		t.Fatalf("NewScanner failed: %v", err)
	}
	var count int
	for s.Scan() {
		count++
	}
	if count != 1 {
		t.Errorf("scanned %d messages before the bad one, want 1", count)
	}
	if err := s.Err(); !errors.Is(err, message.ErrUnknownType) {
		t.Errorf("Err = %v, want ErrUnknownType", err)
	}
}

func TestScannerReset(t *testing.T) {
	reg := message.Standard()
	s, err := NewScanner(reg, Encode(1, seqnMessage(t, reg, 100, 1), seqnMessage(t, reg, 200, 2)))
	if err != nil {
		t.Fatalf("NewScanner failed: %v", err)
	}

	// Stop early after the first message, then rewind and walk it all.
	if !s.Scan() {
		t.Fatalf("Scan failed: %v", s.Err())
	}
	s.Reset()
	var count int
	for s.Scan() {
		count++
	}
	if count != 2 || s.Err() != nil {
		t.Errorf("after Reset scanned %d messages, err %v", count, s.Err())
	}
}

func TestDecodeEager(t *testing.T) {
	reg := message.Standard()
	seq, msgs, err := Decode(reg, Encode(42, seqnMessage(t, reg, 100, 1), seqnMessage(t, reg, 200, 2)))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if seq != 42 || len(msgs) != 2 {
		t.Errorf("seq=%d msgs=%d, want 42 and 2", seq, len(msgs))
	}

	_, _, err = Decode(reg, nil)
	if !errors.Is(err, message.ErrTruncated) {
		t.Errorf("Decode(nil) = %v, want ErrTruncated", err)
	}
}
