// Package protocol implements the binary formats that cross the network
// boundary: server function Request/Response messages, the websocket Frame
// that carries them, and the hydration payload of serialized envelopes.
//
// # Encoding
//
//   - Varint: compact encoding for small integers (protobuf-style)
//   - Length-prefixed: strings and byte arrays prefixed with varint length
//   - Big-endian: fixed-width integers (uint16, uint32)
//
// Strings are UTF-8 on the wire. Encoders refuse invalid strings and
// decoders reject them, so a string that is cut in the middle of a
// multi-byte sequence never decodes into a substituted value.
//
// # Hydration payload
//
//	┌───────────┬─────────┬──────────────┬───────────────────────┐
//	│ "HYDR"    │ version │ count        │ envelopes             │
//	│ (4 bytes) │ (1)     │ (uvarint)    │                       │
//	└───────────┴─────────┴──────────────┴───────────────────────┘
//
// Each envelope is index, generation, ok flag and a length-prefixed payload
// holding either codec bytes or an encoded ErrorMessage.
//
// # Safety
//
// Decoders never panic on malformed input. Length prefixes are bounded by
// DefaultMaxAllocation, collection counts by MaxCollectionCount, and every
// top-level decode rejects trailing bytes.
package protocol
