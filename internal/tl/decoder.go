package tl

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrShortRead is reported when the buffer ends before a field does.
	ErrShortRead = errors.New("tl: unexpected end of buffer")
	// ErrBadPrefix is reported for a malformed length prefix or an
	// unexpected constructor where a specific one is required.
	ErrBadPrefix = errors.New("tl: bad prefix")
)

// Decoder reads TL-serialized fields from a buffer. The first failure
// sticks: subsequent reads return zero values and Err reports the cause.
type Decoder struct {
	buf []byte
	off int
	err error
}

// NewDecoder returns a Decoder over b. The buffer is not copied.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

// Err returns the first decoding error, if any.
func (d *Decoder) Err() error { return d.err }

// Pos returns the current read offset.
func (d *Decoder) Pos() int { return d.off }

// Remaining returns how many bytes are left unread.
func (d *Decoder) Remaining() int { return len(d.buf) - d.off }

func (d *Decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *Decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if d.off+n > len(d.buf) {
		d.fail(fmt.Errorf("%w: need %d bytes at offset %d of %d", ErrShortRead, n, d.off, len(d.buf)))
		return nil
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b
}

// ID reads a constructor id.
func (d *Decoder) ID() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// Int reads an int32.
func (d *Decoder) Int() int32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

// Long reads an int64.
func (d *Decoder) Long() int64 {
	b := d.take(8)
	if b == nil {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(b))
}

// Int128 reads a raw 16-byte value.
func (d *Decoder) Int128() [16]byte {
	var out [16]byte
	if b := d.take(16); b != nil {
		copy(out[:], b)
	}
	return out
}

// Int256 reads a raw 32-byte value.
func (d *Decoder) Int256() [32]byte {
	var out [32]byte
	if b := d.take(32); b != nil {
		copy(out[:], b)
	}
	return out
}

// Bytes reads a length-prefixed byte string and skips its padding. The
// returned slice is a copy.
func (d *Decoder) Bytes() []byte {
	head := d.take(1)
	if head == nil {
		return nil
	}
	n := int(head[0])
	prefix := 1
	if n == 254 {
		rest := d.take(3)
		if rest == nil {
			return nil
		}
		n = int(rest[0]) | int(rest[1])<<8 | int(rest[2])<<16
		prefix = 4
	} else if n == 255 {
		d.fail(fmt.Errorf("%w: reserved length byte 0xff", ErrBadPrefix))
		return nil
	}
	b := d.take(n)
	if b == nil {
		return nil
	}
	if d.take(padding(prefix+n)) == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// VectorLong reads a vector<long>, checking the vector constructor.
func (d *Decoder) VectorLong() []int64 {
	if id := d.ID(); d.err == nil && id != VectorID {
		d.fail(fmt.Errorf("%w: expected vector id %#x, got %#x", ErrBadPrefix, uint32(VectorID), id))
	}
	n := d.Int()
	if d.err != nil {
		return nil
	}
	if n < 0 || int(n)*8 > d.Remaining() {
		d.fail(fmt.Errorf("%w: vector of %d longs exceeds buffer", ErrShortRead, n))
		return nil
	}
	out := make([]int64, 0, n)
	for i := int32(0); i < n; i++ {
		out = append(out, d.Long())
	}
	if d.err != nil {
		return nil
	}
	return out
}
