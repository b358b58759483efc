package message

import "errors"

// Error taxonomy for the codec. All errors are surfaced synchronously to the
// immediate caller; malformed data is never fixed up and no partial result is
// ever returned alongside an error.
var (
	// ErrUnknownType means a fourcc code is not present in the Registry.
	ErrUnknownType = errors.New("unknown message type")

	// ErrDuplicateCode means a type with the same fourcc is already registered.
	ErrDuplicateCode = errors.New("duplicate fourcc code")

	// ErrMissingField means an encode call did not supply a required field.
	ErrMissingField = errors.New("missing field")

	// ErrFieldRange means a numeric value does not fit the declared width.
	ErrFieldRange = errors.New("value out of range for field width")

	// ErrStringOverflow means a string value is longer than its field width.
	ErrStringOverflow = errors.New("string exceeds field width")

	// ErrTimestampRange means a timestamp does not fit in 48 bits.
	ErrTimestampRange = errors.New("timestamp exceeds 48-bit range")

	// ErrMessageSize means the declared length field does not match the
	// statically known payload size for the message type.
	ErrMessageSize = errors.New("message length mismatch")

	// ErrTruncated means fewer bytes were available than a complete
	// message or packet requires.
	ErrTruncated = errors.New("truncated buffer")
)
