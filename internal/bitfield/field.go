package bitfield

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrFormat tags serialized watched state that cannot be decoded.
	ErrFormat = errors.New("malformed watched state")
	// ErrIndex tags bit writes outside a field's allocated capacity.
	ErrIndex = errors.New("bit index out of range")
)

// Field is a growable array of booleans packed eight per byte. Bit i
// lives at values[i/8] under mask 1<<(i%8). The allocated capacity in
// bits is always at least the logical length.
type Field struct {
	length int
	values []byte
}

// New returns an all-false field with the given number of logical bits.
func New(length int) *Field {
	if length < 0 {
		length = 0
	}
	return &Field{length: length, values: make([]byte, (length+7)/8)}
}

// FromPacked inflates a zlib-compressed buffer produced by Packed. A
// positive length becomes the logical bit count, growing the buffer
// with zero bits when the inflated bytes cannot hold it; a
// non-positive length means "use the inflated capacity". Growing never
// drops bits that are already set.
func FromPacked(compressed []byte, length int) (*Field, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: inflate packed bits: %w", ErrFormat, err)
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: inflate packed bits: %w", ErrFormat, err)
	}
	if err := zr.Close(); err != nil {
		return nil, fmt.Errorf("%w: inflate packed bits: %w", ErrFormat, err)
	}

	f := &Field{length: length, values: raw}
	if length <= 0 {
		f.length = len(raw) * 8
	}
	if need := (f.length + 7) / 8; need > len(f.values) {
		grown := make([]byte, need)
		copy(grown, f.values)
		f.values = grown
	}
	return f, nil
}

// Len reports the logical number of bit slots.
func (f *Field) Len() int {
	return f.length
}

// Get reports bit i. Indices outside the allocated capacity, including
// negative ones, read as false so stale positions stay harmless.
func (f *Field) Get(i int) bool {
	if i < 0 || i/8 >= len(f.values) {
		return false
	}
	return f.values[i/8]&(1<<(i%8)) != 0
}

// Set writes bit i. Unlike Get, writing outside the allocated capacity
// is an error wrapping ErrIndex; callers resize first.
func (f *Field) Set(i int, v bool) error {
	if i < 0 || i/8 >= len(f.values) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndex, i, len(f.values)*8)
	}
	f.set(i, v)
	return nil
}

// set writes bit i without bounds checking. Callers guarantee i is
// inside the allocated capacity.
func (f *Field) set(i int, v bool) {
	mask := byte(1) << (i % 8)
	if v {
		f.values[i/8] |= mask
	} else {
		f.values[i/8] &^= mask
	}
}

// LastIndexOf scans from the end of the logical length for the highest
// index holding v, returning -1 when no bit matches.
func (f *Field) LastIndexOf(v bool) int {
	for i := f.length - 1; i >= 0; i-- {
		if f.Get(i) == v {
			return i
		}
	}
	return -1
}

// Packed deflates the raw byte buffer with zlib, the inverse of
// FromPacked.
func (f *Field) Packed() ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(f.values); err != nil {
		return nil, fmt.Errorf("deflate packed bits: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("deflate packed bits: %w", err)
	}
	return buf.Bytes(), nil
}
