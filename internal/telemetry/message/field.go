package message

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Kind identifies the wire representation of a field.
type Kind int

const (
	SignedInt   Kind = iota // two's-complement big-endian, width 1/2/4/8
	UnsignedInt             // big-endian, width 1/2/4/8
	Float                   // IEEE-754 big-endian, width 4
	Double                  // IEEE-754 big-endian, width 8
	FixedString             // zero-padded to exactly width bytes
)

// String returns the data-file spelling of the kind.
func (k Kind) String() string {
	switch k {
	case SignedInt:
		return "signed-int"
	case UnsignedInt:
		return "unsigned-int"
	case Float:
		return "float"
	case Double:
		return "double"
	case FixedString:
		return "fixed-string"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindFromString parses the data-file spelling of a kind.
func KindFromString(s string) (Kind, error) {
	switch s {
	case "signed-int":
		return SignedInt, nil
	case "unsigned-int":
		return UnsignedInt, nil
	case "float":
		return Float, nil
	case "double":
		return Double, nil
	case "fixed-string":
		return FixedString, nil
	}
	return 0, fmt.Errorf("unknown field kind %q", s)
}

// FieldSpec declares one field of a message payload: its name, wire kind and
// exact byte width. Field order within a MessageType defines wire order.
type FieldSpec struct {
	Name  string
	Kind  Kind
	Width int

	// Units optionally describes how raw counts map to engineering units.
	// It has no effect on the wire codec; see Engineering and Counts.
	Units *UnitSpec
}

// Validate checks that the width is legal for the kind.
func (f FieldSpec) Validate() error {
	switch f.Kind {
	case SignedInt, UnsignedInt:
		switch f.Width {
		case 1, 2, 4, 8:
		default:
			return fmt.Errorf("field %q: integer width must be 1, 2, 4 or 8, got %d", f.Name, f.Width)
		}
	case Float:
		if f.Width != 4 {
			return fmt.Errorf("field %q: float width must be 4, got %d", f.Name, f.Width)
		}
	case Double:
		if f.Width != 8 {
			return fmt.Errorf("field %q: double width must be 8, got %d", f.Name, f.Width)
		}
	case FixedString:
		if f.Width < 1 || f.Width > 65535 {
			return fmt.Errorf("field %q: string width must be 1..65535, got %d", f.Name, f.Width)
		}
	default:
		return fmt.Errorf("field %q: unknown kind %d", f.Name, int(f.Kind))
	}
	return nil
}

// appendField encodes value per spec and appends exactly spec.Width bytes.
func appendField(dst []byte, spec FieldSpec, value any) ([]byte, error) {
	switch spec.Kind {
	case SignedInt:
		n, err := toInt64(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", spec.Name, err)
		}
		if spec.Width < 8 {
			max := int64(1)<<(8*spec.Width-1) - 1
			min := -int64(1) << (8*spec.Width - 1)
			if n < min || n > max {
				return nil, fmt.Errorf("field %q: %d does not fit %d bytes: %w", spec.Name, n, spec.Width, ErrFieldRange)
			}
		}
		return appendUint(dst, uint64(n), spec.Width), nil

	case UnsignedInt:
		u, err := toUint64(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", spec.Name, err)
		}
		if spec.Width < 8 && u > (uint64(1)<<(8*spec.Width))-1 {
			return nil, fmt.Errorf("field %q: %d does not fit %d bytes: %w", spec.Name, u, spec.Width, ErrFieldRange)
		}
		return appendUint(dst, u, spec.Width), nil

	case Float:
		f, err := toFloat64(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", spec.Name, err)
		}
		return binary.BigEndian.AppendUint32(dst, math.Float32bits(float32(f))), nil

	case Double:
		f, err := toFloat64(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", spec.Name, err)
		}
		return binary.BigEndian.AppendUint64(dst, math.Float64bits(f)), nil

	case FixedString:
		var s []byte
		switch v := value.(type) {
		case string:
			s = []byte(v)
		case []byte:
			s = v
		default:
			return nil, fmt.Errorf("field %q: cannot encode %T as fixed-string", spec.Name, value)
		}
		if len(s) > spec.Width {
			return nil, fmt.Errorf("field %q: %d bytes exceeds width %d: %w", spec.Name, len(s), spec.Width, ErrStringOverflow)
		}
		dst = append(dst, s...)
		for i := len(s); i < spec.Width; i++ {
			dst = append(dst, 0)
		}
		return dst, nil
	}
	return nil, fmt.Errorf("field %q: unknown kind %d", spec.Name, int(spec.Kind))
}

// decodeField decodes exactly spec.Width bytes from b.
//
// Value types are fixed per kind: SignedInt yields int64, UnsignedInt uint64,
// Float float32, Double float64. FixedString yields a string with trailing
// zero padding stripped; zero bytes that appear before a non-zero byte are
// preserved.
func decodeField(spec FieldSpec, b []byte) any {
	switch spec.Kind {
	case SignedInt:
		u := readUint(b, spec.Width)
		shift := uint(64 - 8*spec.Width)
		return int64(u<<shift) >> shift
	case UnsignedInt:
		return readUint(b, spec.Width)
	case Float:
		return math.Float32frombits(binary.BigEndian.Uint32(b))
	case Double:
		return math.Float64frombits(binary.BigEndian.Uint64(b))
	case FixedString:
		return string(bytes.TrimRight(b[:spec.Width], "\x00"))
	}
	return nil
}

func appendUint(dst []byte, u uint64, width int) []byte {
	for i := width - 1; i >= 0; i-- {
		dst = append(dst, byte(u>>(8*i)))
	}
	return dst
}

func readUint(b []byte, width int) uint64 {
	var u uint64
	for i := 0; i < width; i++ {
		u = u<<8 | uint64(b[i])
	}
	return u
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64: %w", v, ErrFieldRange)
		}
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64: %w", v, ErrFieldRange)
		}
		return int64(v), nil
	}
	return 0, fmt.Errorf("cannot encode %T as integer", value)
}

func toUint64(value any) (uint64, error) {
	switch v := value.(type) {
	case uint:
		return uint64(v), nil
	case uint8:
		return uint64(v), nil
	case uint16:
		return uint64(v), nil
	case uint32:
		return uint64(v), nil
	case uint64:
		return v, nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("%d is negative: %w", v, ErrFieldRange)
		}
		return uint64(v), nil
	case int8:
		if v < 0 {
			return 0, fmt.Errorf("%d is negative: %w", v, ErrFieldRange)
		}
		return uint64(v), nil
	case int16:
		if v < 0 {
			return 0, fmt.Errorf("%d is negative: %w", v, ErrFieldRange)
		}
		return uint64(v), nil
	case int32:
		if v < 0 {
			return 0, fmt.Errorf("%d is negative: %w", v, ErrFieldRange)
		}
		return uint64(v), nil
	case int64:
		if v < 0 {
			return 0, fmt.Errorf("%d is negative: %w", v, ErrFieldRange)
		}
		return uint64(v), nil
	}
	return 0, fmt.Errorf("cannot encode %T as unsigned integer", value)
}

func toFloat64(value any) (float64, error) {
	switch v := value.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("cannot encode %T as float", value)
}
