package codec

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	gojson "github.com/goccy/go-json"
)

type jsonCodec struct {
	name      string
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

// JSON is the encoding/json codec.
var JSON Codec = &jsonCodec{
	name:      "json",
	marshal:   json.Marshal,
	unmarshal: json.Unmarshal,
}

// GoJSON is the github.com/goccy/go-json codec. It is wire compatible with
// JSON.
var GoJSON Codec = &jsonCodec{
	name:      "gojson",
	marshal:   gojson.Marshal,
	unmarshal: gojson.Unmarshal,
}

func (c *jsonCodec) Name() string { return c.name }

func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	if err := Validate(v); err != nil {
		return nil, &Error{Codec: c.name, Op: OpEncode, Err: err}
	}
	data, err := c.marshal(v)
	if err != nil {
		return nil, &Error{Codec: c.name, Op: OpEncode, Err: err}
	}
	return data, nil
}

func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	if !utf8.Valid(data) {
		return &Error{Codec: c.name, Op: OpDecode, Err: fmt.Errorf("%w in input", ErrInvalidUTF8)}
	}
	if err := checkEscapes(data); err != nil {
		return &Error{Codec: c.name, Op: OpDecode, Err: err}
	}
	if err := c.unmarshal(data, v); err != nil {
		return &Error{Codec: c.name, Op: OpDecode, Err: err}
	}
	return nil
}

// checkEscapes rejects \u escapes that encode unpaired surrogates. The JSON
// decoders turn them into U+FFFD, which would hide the corruption.
func checkEscapes(data []byte) error {
	inString := false
	for i := 0; i < len(data); i++ {
		b := data[i]
		if !inString {
			if b == '"' {
				inString = true
			}
			continue
		}
		switch b {
		case '"':
			inString = false
		case '\\':
			if i+1 >= len(data) {
				return nil
			}
			if data[i+1] != 'u' {
				i++
				continue
			}
			r, ok := hex4(data, i+2)
			if !ok {
				return nil
			}
			i += 5
			switch {
			case r >= 0xD800 && r < 0xDC00:
				if i+6 < len(data) && data[i+1] == '\\' && data[i+2] == 'u' {
					if lo, ok := hex4(data, i+3); ok && lo >= 0xDC00 && lo < 0xE000 {
						i += 6
						continue
					}
				}
				return fmt.Errorf("%w: unpaired surrogate escape at offset %d", ErrInvalidUTF8, i-5)
			case r >= 0xDC00 && r < 0xE000:
				return fmt.Errorf("%w: unpaired surrogate escape at offset %d", ErrInvalidUTF8, i-5)
			}
		}
	}
	return nil
}

func hex4(data []byte, at int) (rune, bool) {
	if at+4 > len(data) {
		return 0, false
	}
	var r rune
	for _, c := range data[at : at+4] {
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			r |= rune(c-'A') + 10
		default:
			return 0, false
		}
	}
	return r, true
}
