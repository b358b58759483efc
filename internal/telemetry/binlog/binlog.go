// Package binlog reads and writes flight log files: a log is nothing more
// than encoded telemetry messages appended back to back, the same bytes
// that travel inside packets on the wire (without packet sequence prefixes).
package binlog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/skyward-data/telemetry/internal/telemetry/message"
)

// defaultChunkSize is how much the Reader pulls from the underlying stream
// per refill.
const defaultChunkSize = 1 << 20

// Writer appends encoded messages to a log stream.
type Writer struct {
	w io.Writer
	f *os.File
}

// NewWriter wraps an existing stream.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Create opens (or creates) a log file for appending.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &Writer{w: f, f: f}, nil
}

// WriteRaw appends one pre-encoded message.
func (w *Writer) WriteRaw(msg []byte) error {
	if _, err := w.w.Write(msg); err != nil {
		return fmt.Errorf("log write: %w", err)
	}
	return nil
}

// WriteMessage encodes a message and appends it.
func (w *Writer) WriteMessage(reg *message.Registry, code string, tsNanos uint64, values message.Values) error {
	raw, err := message.Encode(reg, code, tsNanos, values)
	if err != nil {
		return err
	}
	return w.WriteRaw(raw)
}

// Close closes the underlying file, if Create opened one.
func (w *Writer) Close() error {
	if w.f != nil {
		return w.f.Close()
	}
	return nil
}

// Reader streams decoded messages out of a log. It keeps a rolling buffer:
// when the remaining bytes are too short for a complete message it refills
// from the stream, and only a short tail at true end-of-stream is an error.
type Reader struct {
	r         io.Reader
	reg       *message.Registry
	buf       []byte
	chunkSize int
	eof       bool
}

// NewReader wraps a log stream. Messages decode against reg.
func NewReader(reg *message.Registry, r io.Reader) *Reader {
	return &Reader{r: r, reg: reg, chunkSize: defaultChunkSize}
}

// Open opens a log file for reading. The caller closes the returned file.
func Open(reg *message.Registry, path string) (*Reader, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return NewReader(reg, f), f, nil
}

// Next returns the next message in the log. It returns io.EOF when the log
// ends cleanly on a message boundary. A trailing fragment that cannot form
// a complete message fails with ErrTruncated, and an unregistered fourcc
// with ErrUnknownType; neither is skipped.
func (r *Reader) Next() (*message.Decoded, error) {
	for {
		if len(r.buf) == 0 {
			if r.eof {
				return nil, io.EOF
			}
			if err := r.refill(); err != nil {
				return nil, err
			}
			continue
		}

		dec, n, err := message.Decode(r.reg, r.buf)
		if err == nil {
			r.buf = r.buf[n:]
			return dec, nil
		}
		if isTruncated(err) && !r.eof {
			if ferr := r.refill(); ferr != nil {
				return nil, ferr
			}
			continue
		}
		return nil, err
	}
}

// ReadAll drains the log. It returns every decoded message up to the first
// error; io.EOF counts as clean completion.
func (r *Reader) ReadAll() ([]*message.Decoded, error) {
	var out []*message.Decoded
	for {
		dec, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, dec)
	}
}

func (r *Reader) refill() error {
	chunk := make([]byte, r.chunkSize)
	n, err := r.r.Read(chunk)
	if n > 0 {
		r.buf = append(r.buf, chunk[:n]...)
	}
	if err == io.EOF {
		r.eof = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("log read: %w", err)
	}
	if n == 0 {
		r.eof = true
	}
	return nil
}

func isTruncated(err error) bool {
	return errors.Is(err, message.ErrTruncated)
}
