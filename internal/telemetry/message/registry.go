package message

import (
	"fmt"
	"sort"
)

// MessageType is the immutable layout of one telemetry message: a fourcc
// code, a display name and an ordered field list. Construct with
// NewMessageType so the payload size is computed and the layout validated
// once, then register into a Registry.
type MessageType struct {
	fourcc      [4]byte
	name        string
	fields      []FieldSpec
	payloadSize int
}

// NewMessageType validates the layout and precomputes the payload size.
// The code must be exactly 4 ASCII bytes. Field names must be unique and
// every width legal for its kind. A type with zero fields is allowed; its
// messages carry an empty payload.
func NewMessageType(code, name string, fields []FieldSpec) (*MessageType, error) {
	if len(code) != 4 {
		return nil, fmt.Errorf("fourcc %q: must be exactly 4 bytes", code)
	}
	for i := 0; i < 4; i++ {
		if code[i] < 0x20 || code[i] > 0x7e {
			return nil, fmt.Errorf("fourcc %q: byte %d is not printable ASCII", code, i)
		}
	}

	t := &MessageType{name: name}
	copy(t.fourcc[:], code)

	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("type %s: %w", code, err)
		}
		if f.Name == "" {
			return nil, fmt.Errorf("type %s: field with empty name", code)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("type %s: duplicate field %q", code, f.Name)
		}
		seen[f.Name] = true
		t.payloadSize += f.Width
	}
	if t.payloadSize > MaxPayloadSize {
		return nil, fmt.Errorf("type %s: payload %d exceeds %d bytes: %w",
			code, t.payloadSize, MaxPayloadSize, ErrMessageSize)
	}
	t.fields = append(t.fields, fields...)
	return t, nil
}

// MustMessageType is NewMessageType that panics on error, for static tables.
func MustMessageType(code, name string, fields []FieldSpec) *MessageType {
	t, err := NewMessageType(code, name, fields)
	if err != nil {
		panic(err)
	}
	return t
}

// Code returns the fourcc as a string.
func (t *MessageType) Code() string { return string(t.fourcc[:]) }

// FourCC returns the fourcc as its 4-byte array form.
func (t *MessageType) FourCC() [4]byte { return t.fourcc }

// Name returns the display name.
func (t *MessageType) Name() string { return t.name }

// Fields returns the ordered field specifications. Callers must not modify
// the returned slice.
func (t *MessageType) Fields() []FieldSpec { return t.fields }

// PayloadSize returns the fixed payload size in bytes, memoized at
// construction.
func (t *MessageType) PayloadSize() int { return t.payloadSize }

func (t *MessageType) String() string {
	return fmt.Sprintf("%s (%s, %d fields, %d byte payload)", t.Code(), t.name, len(t.fields), t.payloadSize)
}

// Registry maps fourcc codes to message types. It is populated during
// process startup and read-only afterwards, which makes concurrent lookups
// safe without locking. Construct explicitly and pass to codecs; there is
// no package-level table.
type Registry struct {
	types map[[4]byte]*MessageType
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[[4]byte]*MessageType)}
}

// Register adds a type. Registering a fourcc twice fails with
// ErrDuplicateCode, even if the layouts are identical.
func (r *Registry) Register(t *MessageType) error {
	if _, ok := r.types[t.fourcc]; ok {
		return fmt.Errorf("%s: %w", t.Code(), ErrDuplicateCode)
	}
	r.types[t.fourcc] = t
	return nil
}

// RegisterAll registers every type, stopping at the first conflict.
func (r *Registry) RegisterAll(types ...*MessageType) error {
	for _, t := range types {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// Lookup resolves a fourcc, failing with ErrUnknownType if absent.
func (r *Registry) Lookup(code [4]byte) (*MessageType, error) {
	t, ok := r.types[code]
	if !ok {
		return nil, fmt.Errorf("%q: %w", string(code[:]), ErrUnknownType)
	}
	return t, nil
}

// LookupCode resolves a fourcc given as a 4-byte string.
func (r *Registry) LookupCode(code string) (*MessageType, error) {
	if len(code) != 4 {
		return nil, fmt.Errorf("%q: %w", code, ErrUnknownType)
	}
	var cc [4]byte
	copy(cc[:], code)
	return r.Lookup(cc)
}

// Len returns the number of registered types.
func (r *Registry) Len() int { return len(r.types) }

// Types returns all registered types sorted by fourcc.
func (r *Registry) Types() []*MessageType {
	out := make([]*MessageType, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code() < out[j].Code() })
	return out
}
