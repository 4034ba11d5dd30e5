package protocol

import "errors"

// PayloadMagic leads every hydration payload.
var PayloadMagic = [4]byte{'H', 'Y', 'D', 'R'}

// PayloadVersion is the current hydration payload format version.
const PayloadVersion byte = 1

// ErrBadMagic is returned when a payload does not start with PayloadMagic.
var ErrBadMagic = errors.New("protocol: bad payload magic")

// Envelope is the serialized outcome of one resource settlement on the
// server. Index is the resource's creation index within the render pass;
// Generation is the load generation that produced the outcome. When OK,
// Payload holds the codec bytes of the value; otherwise it holds an
// encoded ErrorMessage.
//
// Wire format:
//
//	index (uvarint) | generation (uvarint) | ok (bool) | payload (len bytes)
type Envelope struct {
	Index      uint64
	Generation uint64
	OK         bool
	Payload    []byte
}

// NewErrorEnvelope builds an error envelope carrying em.
func NewErrorEnvelope(index, generation uint64, em *ErrorMessage) (Envelope, error) {
	payload, err := EncodeErrorMessage(em)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Index: index, Generation: generation, Payload: payload}, nil
}

// ErrorMessage decodes the payload of an error envelope.
func (env Envelope) ErrorMessage() (*ErrorMessage, error) {
	if env.OK {
		return nil, errors.New("protocol: envelope is not an error")
	}
	return DecodeErrorMessage(env.Payload)
}

// EncodeEnvelopeTo encodes one envelope.
func EncodeEnvelopeTo(e *Encoder, env *Envelope) {
	e.WriteUvarint(env.Index)
	e.WriteUvarint(env.Generation)
	e.WriteBool(env.OK)
	e.WriteLenBytes(env.Payload)
}

// DecodeEnvelopeFrom decodes one envelope.
func DecodeEnvelopeFrom(d *Decoder) (*Envelope, error) {
	index, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	gen, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	ok, err := d.ReadBool()
	if err != nil {
		return nil, err
	}
	payload, err := d.ReadLenBytes()
	if err != nil {
		return nil, err
	}
	return &Envelope{Index: index, Generation: gen, OK: ok, Payload: payload}, nil
}

// EncodePayload encodes a list of envelopes as a hydration payload.
//
// Wire format:
//
//	magic (4) | version (1) | count (uvarint) | envelopes...
func EncodePayload(envs []Envelope) []byte {
	size := 16
	for i := range envs {
		size += 24 + len(envs[i].Payload)
	}
	e := NewEncoderWithCap(size)
	e.WriteBytes(PayloadMagic[:])
	e.WriteByte(PayloadVersion)
	e.WriteUvarint(uint64(len(envs)))
	for i := range envs {
		EncodeEnvelopeTo(e, &envs[i])
	}
	return e.Bytes()
}

// DecodePayload decodes a hydration payload. Any malformation, including
// truncation and trailing bytes, is an error.
func DecodePayload(data []byte) ([]Envelope, error) {
	d := NewDecoder(data)

	magic, err := d.ReadBytes(len(PayloadMagic))
	if err != nil {
		return nil, err
	}
	if string(magic) != string(PayloadMagic[:]) {
		return nil, ErrBadMagic
	}
	version, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != PayloadVersion {
		return nil, ErrUnsupportedVersion
	}

	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}

	envs := make([]Envelope, 0, count)
	for i := 0; i < count; i++ {
		env, err := DecodeEnvelopeFrom(d)
		if err != nil {
			return nil, err
		}
		envs = append(envs, *env)
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return envs, nil
}
