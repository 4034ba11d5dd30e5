package protocol

import "encoding/binary"

// Encoder appends wire values to a growing buffer. It never fails;
// string validity is checked by the message encoders before they get here.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an encoder sized for a typical small message.
func NewEncoder() *Encoder { return NewEncoderWithCap(256) }

// NewEncoderWithCap returns an encoder whose buffer starts with room for n bytes.
func NewEncoderWithCap(n int) *Encoder {
	return &Encoder{buf: make([]byte, 0, n)}
}

// Reset empties the encoder and keeps its buffer.
func (e *Encoder) Reset() { e.buf = e.buf[:0] }

// Bytes returns the encoded message. It aliases the buffer until the next write.
func (e *Encoder) Bytes() []byte { return e.buf }

func (e *Encoder) Len() int { return len(e.buf) }

func (e *Encoder) WriteByte(b byte) { e.buf = append(e.buf, b) }

func (e *Encoder) WriteBytes(b []byte) { e.buf = append(e.buf, b...) }

// WriteUvarint appends v as a base-128 varint, low group first.
func (e *Encoder) WriteUvarint(v uint64) { e.buf = binary.AppendUvarint(e.buf, v) }

// WriteString appends s prefixed by its byte length.
func (e *Encoder) WriteString(s string) {
	e.buf = append(binary.AppendUvarint(e.buf, uint64(len(s))), s...)
}

// WriteLenBytes appends b prefixed by its length.
func (e *Encoder) WriteLenBytes(b []byte) {
	e.buf = append(binary.AppendUvarint(e.buf, uint64(len(b))), b...)
}

// WriteBool appends 1 for true and 0 for false.
func (e *Encoder) WriteBool(v bool) {
	var b byte
	if v {
		b = 1
	}
	e.buf = append(e.buf, b)
}

func (e *Encoder) WriteUint16(v uint16) { e.buf = binary.BigEndian.AppendUint16(e.buf, v) }

func (e *Encoder) WriteUint32(v uint32) { e.buf = binary.BigEndian.AppendUint32(e.buf, v) }
