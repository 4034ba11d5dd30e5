package protocol

import "errors"

const (
	// FrameHeaderSize is one type byte plus a big-endian uint32 length.
	FrameHeaderSize = 5

	MaxPayloadSize = HardMaxAllocation
)

// FrameType tells a call from its reply on the gateway socket.
type FrameType uint8

const (
	FrameRequest  FrameType = 0x01
	FrameResponse FrameType = 0x02
)

func (ft FrameType) valid() bool { return ft == FrameRequest || ft == FrameResponse }

func (ft FrameType) String() string {
	switch ft {
	case FrameRequest:
		return "Request"
	case FrameResponse:
		return "Response"
	}
	return "Unknown"
}

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
)

// Frame is one websocket message on the gateway socket: a type byte, the
// payload length as a big-endian uint32, then the payload, which holds an
// encoded Request or Response.
type Frame struct {
	Type    FrameType
	Payload []byte
}

// Encode returns the frame with its header.
func (f *Frame) Encode() []byte {
	e := NewEncoderWithCap(FrameHeaderSize + len(f.Payload))
	e.WriteByte(byte(f.Type))
	e.WriteUint32(uint32(len(f.Payload)))
	e.WriteBytes(f.Payload)
	return e.Bytes()
}

// DecodeFrame parses data, which must hold exactly one frame. The payload
// aliases data.
func DecodeFrame(data []byte) (*Frame, error) {
	d := NewDecoder(data)
	b, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	ft := FrameType(b)
	if !ft.valid() {
		return nil, ErrInvalidFrameType
	}
	n, err := d.ReadUint32()
	switch {
	case err != nil:
		return nil, err
	case n > MaxPayloadSize:
		return nil, ErrFrameTooLarge
	}
	payload, err := d.ReadBytes(int(n))
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return &Frame{Type: ft, Payload: payload}, nil
}
