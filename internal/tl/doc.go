// Package tl implements the small subset of TL (Type Language) binary
// serialization the key exchange needs.
//
// Everything is little-endian. A constructor id is a bare uint32. Byte
// strings carry a one-byte length when shorter than 254 bytes, otherwise a
// 0xfe marker followed by a three-byte length; either way the whole field is
// zero-padded to a four-byte boundary. int128 and int256 values are raw 16
// and 32 byte blobs. Vectors are the 0x1cb5c415 constructor, an int32 count,
// then the bare elements.
//
// The Decoder keeps a sticky error: after the first failure every read
// returns a zero value and Err reports what went wrong, so call sites can
// decode a whole message and check once.
package tl
