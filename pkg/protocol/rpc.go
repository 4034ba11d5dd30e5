package protocol

import (
	"errors"
	"unicode/utf8"
)

// RPCVersion is the version byte leading every Request and Response.
const RPCVersion byte = 1

// MaxNameLength bounds server function names.
const MaxNameLength = 256

// ErrUnsupportedVersion is returned for messages with an unknown version.
var ErrUnsupportedVersion = errors.New("protocol: unsupported version")

// ErrInvalidName is returned for empty or oversized function names.
var ErrInvalidName = errors.New("protocol: invalid function name")

// Request is a server function call. Args holds codec bytes.
//
// Wire format:
//
//	version (1) | id (uvarint) | name (string) | args (len bytes)
type Request struct {
	ID   uint64
	Name string
	Args []byte
}

// Response answers a Request with the same ID. When OK, Payload holds the
// codec bytes of the result; otherwise Err describes the failure.
//
// Wire format:
//
//	version (1) | id (uvarint) | ok (bool) | payload (len bytes) or ErrorMessage
type Response struct {
	ID      uint64
	OK      bool
	Payload []byte
	Err     *ErrorMessage
}

// EncodeRequest encodes a Request.
func EncodeRequest(r *Request) ([]byte, error) {
	if r.Name == "" || len(r.Name) > MaxNameLength {
		return nil, ErrInvalidName
	}
	if !utf8.ValidString(r.Name) {
		return nil, ErrInvalidUTF8
	}

	e := NewEncoderWithCap(16 + len(r.Name) + len(r.Args))
	e.WriteByte(RPCVersion)
	e.WriteUvarint(r.ID)
	e.WriteString(r.Name)
	e.WriteLenBytes(r.Args)
	return e.Bytes(), nil
}

// DecodeRequest decodes exactly one Request from data.
func DecodeRequest(data []byte) (*Request, error) {
	d := NewDecoder(data)
	if err := readVersion(d); err != nil {
		return nil, err
	}

	id, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	name, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	if name == "" || len(name) > MaxNameLength {
		return nil, ErrInvalidName
	}
	args, err := d.ReadLenBytes()
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}

	return &Request{ID: id, Name: name, Args: args}, nil
}

// EncodeResponse encodes a Response.
func EncodeResponse(r *Response) ([]byte, error) {
	e := NewEncoderWithCap(16 + len(r.Payload))
	e.WriteByte(RPCVersion)
	e.WriteUvarint(r.ID)
	e.WriteBool(r.OK)
	if r.OK {
		e.WriteLenBytes(r.Payload)
		return e.Bytes(), nil
	}

	em := r.Err
	if em == nil {
		em = NewError(ErrUnknown, "")
	}
	if err := EncodeErrorMessageTo(e, em); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// DecodeResponse decodes exactly one Response from data.
func DecodeResponse(data []byte) (*Response, error) {
	d := NewDecoder(data)
	if err := readVersion(d); err != nil {
		return nil, err
	}

	id, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	ok, err := d.ReadBool()
	if err != nil {
		return nil, err
	}

	r := &Response{ID: id, OK: ok}
	if ok {
		r.Payload, err = d.ReadLenBytes()
	} else {
		r.Err, err = DecodeErrorMessageFrom(d)
	}
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return r, nil
}

func readVersion(d *Decoder) error {
	v, err := d.ReadByte()
	if err != nil {
		return err
	}
	if v != RPCVersion {
		return ErrUnsupportedVersion
	}
	return nil
}
