package protocol

import (
	"encoding/binary"
	"errors"
	"io"
	"unicode/utf8"
)

// Limits applied while decoding untrusted input.
const (
	// DefaultMaxAllocation caps a single length-prefixed value (4MB).
	DefaultMaxAllocation = 4 << 20

	// HardMaxAllocation caps a whole frame or HTTP body (16MB).
	HardMaxAllocation = 16 << 20

	// MaxCollectionCount caps the item count of any list.
	MaxCollectionCount = 100_000
)

var (
	ErrVarintOverflow     = errors.New("protocol: varint overflow")
	ErrInvalidBool        = errors.New("protocol: invalid boolean value")
	ErrInvalidUTF8        = errors.New("protocol: invalid UTF-8")
	ErrAllocationTooLarge = errors.New("protocol: allocation size exceeds limit")
	ErrCollectionTooLarge = errors.New("protocol: collection count exceeds limit")
	ErrTrailingData       = errors.New("protocol: trailing data after message")
)

// Decoder reads wire values from a byte slice. Short input yields
// io.ErrUnexpectedEOF rather than a panic.
type Decoder struct {
	buf []byte
	off int
}

func NewDecoder(buf []byte) *Decoder { return &Decoder{buf: buf} }

// Remaining reports how many bytes are left unread.
func (d *Decoder) Remaining() int { return len(d.buf) - d.off }

// Finish fails with ErrTrailingData unless the whole input was consumed.
func (d *Decoder) Finish() error {
	if d.Remaining() > 0 {
		return ErrTrailingData
	}
	return nil
}

// take advances past n bytes and returns them without copying.
func (d *Decoder) take(n int) ([]byte, error) {
	if n < 0 || n > d.Remaining() {
		return nil, io.ErrUnexpectedEOF
	}
	b := d.buf[d.off : d.off+n : d.off+n]
	d.off += n
	return b, nil
}

func (d *Decoder) ReadByte() (byte, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBytes returns the next n bytes. The slice aliases the input.
func (d *Decoder) ReadBytes(n int) ([]byte, error) { return d.take(n) }

func (d *Decoder) ReadUvarint() (uint64, error) {
	v, n := binary.Uvarint(d.buf[d.off:])
	switch {
	case n == 0:
		return 0, io.ErrUnexpectedEOF
	case n < 0:
		return 0, ErrVarintOverflow
	}
	d.off += n
	return v, nil
}

// readLength reads a length prefix that must fit both the input and
// DefaultMaxAllocation.
func (d *Decoder) readLength() (int, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if n > uint64(d.Remaining()) {
		return 0, io.ErrUnexpectedEOF
	}
	if n > DefaultMaxAllocation {
		return 0, ErrAllocationTooLarge
	}
	return int(n), nil
}

// ReadString reads a length-prefixed UTF-8 string.
func (d *Decoder) ReadString() (string, error) {
	n, err := d.readLength()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(d.buf[d.off : d.off+n]) {
		return "", ErrInvalidUTF8
	}
	b, _ := d.take(n)
	return string(b), nil
}

// ReadLenBytes reads length-prefixed bytes into a fresh slice.
func (d *Decoder) ReadLenBytes() ([]byte, error) {
	n, err := d.readLength()
	if err != nil {
		return nil, err
	}
	b, _ := d.take(n)
	return append([]byte(nil), b...), nil
}

func (d *Decoder) ReadBool() (bool, error) {
	b, err := d.ReadByte()
	if err != nil {
		return false, err
	}
	if b > 1 {
		return false, ErrInvalidBool
	}
	return b == 1, nil
}

func (d *Decoder) ReadUint16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *Decoder) ReadUint32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadCollectionCount reads an item count. Every item takes at least one
// byte, so a count above Remaining is truncated input.
func (d *Decoder) ReadCollectionCount() (int, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if n > MaxCollectionCount {
		return 0, ErrCollectionTooLarge
	}
	if n > uint64(d.Remaining()) {
		return 0, io.ErrUnexpectedEOF
	}
	return int(n), nil
}
