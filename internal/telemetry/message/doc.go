// Package message implements the fourcc telemetry message format: a fixed
// binary layout of named, typed fields behind a 12-byte header.
//
// Wire layout (all multi-byte integers big-endian):
//
//	code:char[4] | timestamp_ns:uint48 | length:uint16 | payload:byte[length]
//
// The payload is the concatenation of each registered field in declared
// order. Field layout is not self-describing on the wire: both ends must
// share the same compiled-in (or file-loaded) type table, and a message's
// declared length must always match the statically known payload size of
// its type. That check is the format's primary integrity guard and a
// mismatch fails decoding with ErrMessageSize.
//
// Encode and decode are pure functions of their inputs plus an immutable
// Registry, so they are safe to call from many goroutines at once.
package message
