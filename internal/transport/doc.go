// Package transport carries unencrypted key-exchange payloads over TCP
// using the intermediate framing mode: a four-byte announcement after
// connect, then length-prefixed frames each wrapping one plain envelope
// (zero auth key id, a clock-derived message id, and the payload).
//
// A bare four-byte frame from the server is a status code, surfaced as
// *ProtocolError.
package transport
