// Package auth negotiates auth keys with data centers.
//
// It drives the handshake engine over a framed connection, persists the
// negotiated key under the data center id, and exposes lookups for stored
// keys.
package auth
