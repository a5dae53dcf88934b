package tl

import "encoding/binary"

// VectorID is the constructor id of the generic TL vector.
const VectorID = 0x1cb5c415

// Encoder builds a TL-serialized message in memory.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 64)}
}

// PutID appends a constructor id.
func (e *Encoder) PutID(id uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, id)
}

// PutInt appends an int32.
func (e *Encoder) PutInt(v int32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(v))
}

// PutLong appends an int64.
func (e *Encoder) PutLong(v int64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, uint64(v))
}

// PutInt128 appends a raw 16-byte value.
func (e *Encoder) PutInt128(v [16]byte) {
	e.buf = append(e.buf, v[:]...)
}

// PutInt256 appends a raw 32-byte value.
func (e *Encoder) PutInt256(v [32]byte) {
	e.buf = append(e.buf, v[:]...)
}

// PutBytes appends a length-prefixed byte string padded to a four-byte
// boundary.
func (e *Encoder) PutBytes(b []byte) {
	var prefix int
	if len(b) < 254 {
		e.buf = append(e.buf, byte(len(b)))
		prefix = 1
	} else {
		e.buf = append(e.buf,
			0xfe,
			byte(len(b)),
			byte(len(b)>>8),
			byte(len(b)>>16))
		prefix = 4
	}
	e.buf = append(e.buf, b...)
	for pad := padding(prefix + len(b)); pad > 0; pad-- {
		e.buf = append(e.buf, 0)
	}
}

// PutVectorLong appends a vector<long>.
func (e *Encoder) PutVectorLong(v []int64) {
	e.PutID(VectorID)
	e.PutInt(int32(len(v)))
	for _, x := range v {
		e.PutLong(x)
	}
}

// Bytes returns the serialized message.
func (e *Encoder) Bytes() []byte { return e.buf }

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int { return len(e.buf) }

// padding returns how many zero bytes bring n up to a four-byte boundary.
func padding(n int) int { return (4 - n%4) % 4 }
