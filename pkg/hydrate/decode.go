package hydrate

import (
	"github.com/vango-dev/hydrate/pkg/codec"
	"github.com/vango-dev/hydrate/pkg/protocol"
)

// Seed is the decoded form of an envelope.
type Seed[T any] struct {
	Generation uint64
	OK         bool
	Value      T

	// Remote is the server's error when OK is false.
	Remote *protocol.ErrorMessage
}

// DecodeEnvelope decodes env with c. Any failure is a *HydrationError of
// KindDecode carrying the envelope index.
func DecodeEnvelope[T any](c codec.Codec, env protocol.Envelope) (Seed[T], error) {
	seed := Seed[T]{Generation: env.Generation, OK: env.OK}
	if env.OK {
		if err := c.Unmarshal(env.Payload, &seed.Value); err != nil {
			return Seed[T]{}, &HydrationError{Kind: KindDecode, Index: env.Index, Err: err}
		}
		return seed, nil
	}

	em, err := env.ErrorMessage()
	if err != nil {
		return Seed[T]{}, &HydrationError{Kind: KindDecode, Index: env.Index, Err: err}
	}
	seed.Remote = em
	return seed, nil
}

// EncodeValue builds the OK envelope for v.
func EncodeValue(c codec.Codec, index, generation uint64, v any) (protocol.Envelope, error) {
	data, err := c.Marshal(v)
	if err != nil {
		return protocol.Envelope{}, err
	}
	return protocol.Envelope{Index: index, Generation: generation, OK: true, Payload: data}, nil
}
