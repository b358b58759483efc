package message

import (
	"fmt"
	"math"
)

// UnitSpec describes how a field's raw wire counts map to an engineering
// quantity: engineering = counts*ScaleBy + Bias. The wire codec never
// applies it; raw values round-trip exactly. Use Engineering and Counts to
// convert at the edges.
type UnitSpec struct {
	// MKS names the engineering unit, e.g. "volt" or "meter/s/s".
	MKS string
	// ScaleBy is the multiplier from counts to MKS. Zero means 1.
	ScaleBy float64
	// Bias is added after scaling.
	Bias float64
}

func (u *UnitSpec) scale() float64 {
	if u == nil || u.ScaleBy == 0 {
		return 1
	}
	return u.ScaleBy
}

func (u *UnitSpec) bias() float64 {
	if u == nil {
		return 0
	}
	return u.Bias
}

// Engineering converts decoded raw values into engineering units. Numeric
// fields with a UnitSpec become float64 MKS quantities; fields without one,
// and string fields, pass through unchanged. Missing entries are skipped.
func (t *MessageType) Engineering(raw Values) Values {
	out := make(Values, len(raw))
	for _, f := range t.fields {
		v, ok := raw[f.Name]
		if !ok {
			continue
		}
		if f.Units == nil || f.Kind == FixedString {
			out[f.Name] = v
			continue
		}
		fv, err := toFloat64(v)
		if err != nil {
			out[f.Name] = v
			continue
		}
		out[f.Name] = fv*f.Units.scale() + f.Units.bias()
	}
	return out
}

// Counts inverts Engineering: it converts MKS quantities back to raw wire
// counts suitable for Encode, rounding integer kinds to the nearest count.
// Values for fields without a UnitSpec pass through unchanged.
func (t *MessageType) Counts(eng Values) (Values, error) {
	out := make(Values, len(eng))
	for _, f := range t.fields {
		v, ok := eng[f.Name]
		if !ok {
			continue
		}
		if f.Units == nil || f.Kind == FixedString {
			out[f.Name] = v
			continue
		}
		fv, err := toFloat64(v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t.Code(), f.Name, err)
		}
		counts := (fv - f.Units.bias()) / f.Units.scale()
		switch f.Kind {
		case SignedInt:
			out[f.Name] = int64(math.Round(counts))
		case UnsignedInt:
			if counts < 0 {
				return nil, fmt.Errorf("%s.%s: %f is negative: %w", t.Code(), f.Name, counts, ErrFieldRange)
			}
			out[f.Name] = uint64(math.Round(counts))
		case Float:
			out[f.Name] = float32(counts)
		case Double:
			out[f.Name] = counts
		}
	}
	return out, nil
}
