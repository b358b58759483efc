// Package network moves encoded telemetry packets over UDP.
//
// A Sender owns one outbound socket aimed at a fixed destination and writes
// each call as a single datagram, fire-and-forget: datagram loss is silent
// per UDP semantics and is detected downstream via packet sequence gaps, not
// here. A Listener owns one bound socket and runs a receive loop with a
// bounded read deadline per iteration; closing the listener from another
// goroutine is the documented cancellation path and takes effect within one
// deadline interval.
//
// Socket operations sit behind the UDPSocket interface so the receive loop
// can be tested without real network connections.
package network
