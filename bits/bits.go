// Package bits encodes and decodes little-endian integers and
// length-prefixed strings and byte slices.
package bits // import "github.com/nicolagi/touchicon/bits"

import "errors"

// ErrShort is returned when a buffer ends before the value being read.
var ErrShort = errors.New("buffer too short")

func Append16(b []byte, v uint16) []byte {
	return append(b, uint8(v), uint8(v>>8))
}

func Append32(b []byte, v uint32) []byte {
	return append(b, uint8(v), uint8(v>>8), uint8(v>>16), uint8(v>>24))
}

func Append64(b []byte, v uint64) []byte {
	b = Append32(b, uint32(v))
	return Append32(b, uint32(v>>32))
}

// Appends is for short strings, at most 65535 bytes. Longer strings are
// truncated.
func Appends(b []byte, v string) []byte {
	if len(v) > 0xffff {
		v = v[:0xffff]
	}
	b = Append16(b, uint16(len(v)))
	return append(b, v...)
}

// Appendb is for byte slices shorter than 4GiB.
func Appendb(b []byte, v []byte) []byte {
	b = Append32(b, uint32(len(v)))
	return append(b, v...)
}

// Reader consumes values from a buffer. After the first short read all
// further reads return zero values, and Err reports ErrShort.
type Reader struct {
	b   []byte
	err error
}

func NewReader(b []byte) *Reader {
	return &Reader{b: b}
}

func (r *Reader) Err() error {
	return r.err
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.b)
}

func (r *Reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n > len(r.b) {
		r.err = ErrShort
		r.b = nil
		return nil
	}
	v := r.b[:n]
	r.b = r.b[n:]
	return v
}

func (r *Reader) Get16() uint16 {
	b := r.next(2)
	if b == nil {
		return 0
	}
	return uint16(b[0]) | uint16(b[1])<<8
}

func (r *Reader) Get32() uint32 {
	b := r.next(4)
	if b == nil {
		return 0
	}
	v := uint32(b[0])
	v += uint32(b[1]) << 8
	v += uint32(b[2]) << 16
	v += uint32(b[3]) << 24
	return v
}

func (r *Reader) Get64() uint64 {
	lo := r.Get32()
	hi := r.Get32()
	return uint64(lo) | uint64(hi)<<32
}

func (r *Reader) Gets() string {
	n := r.Get16()
	return string(r.next(int(n)))
}

// Getb returns a copy, so the buffer may be reused.
func (r *Reader) Getb() []byte {
	n := r.Get32()
	v := r.next(int(n))
	if v == nil {
		return nil
	}
	s := make([]byte, len(v))
	copy(s, v)
	return s
}
