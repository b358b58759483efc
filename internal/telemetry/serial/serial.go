// Package serial ingests telemetry packets from a radio modem serial port.
// The modem firmware frames each packet with a 2-byte big-endian length
// prefix; the framed payload is byte-identical to a UDP datagram, so frames
// feed the same handler path as the network listener.
package serial

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"go.bug.st/serial"

	"github.com/skyward-data/telemetry/internal/monitoring"
)

// Handler processes one de-framed packet. Errors are logged and isolated,
// matching the network listener's contract.
type Handler func(frame []byte) error

// Port wraps an open modem serial port.
type Port struct {
	port serial.Port
	name string
}

// Open opens the named serial port at the given baud rate, 8N1.
func Open(name string, baud int) (*Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	return &Port{port: p, name: name}, nil
}

// Monitor reads frames from the port and hands each to handler until the
// stream ends or the context is cancelled. Handler errors are logged and
// the loop continues.
func (p *Port) Monitor(ctx context.Context, handler Handler) error {
	defer p.Close()
	return monitorStream(ctx, bufio.NewReader(p.port), handler)
}

// Close closes the serial port.
func (p *Port) Close() error {
	return p.port.Close()
}

// monitorStream is the framing loop, split from Port so it can run against
// any byte stream in tests.
func monitorStream(ctx context.Context, r io.Reader, handler Handler) error {
	var prefix [2]byte
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if _, err := io.ReadFull(r, prefix[:]); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("serial read: %w", err)
		}
		length := int(binary.BigEndian.Uint16(prefix[:]))
		if length == 0 {
			// Keep-alive from the modem; nothing to dispatch.
			continue
		}

		frame := make([]byte, length)
		if _, err := io.ReadFull(r, frame); err != nil {
			return fmt.Errorf("serial read: truncated frame of %d bytes: %w", length, err)
		}

		if err := handler(frame); err != nil {
			monitoring.Logf("error handling serial frame: %v", err)
		}
	}
}
