// Package store persists negotiated auth keys to disk.
//
// Keys are serialised as JSON, sealed in a passphrase-encrypted envelope
// (scrypt key derivation, ChaCha20-Poly1305) and written atomically. One
// file holds the keys of every data center. All methods are
// concurrency-safe via internal locking.
package store
