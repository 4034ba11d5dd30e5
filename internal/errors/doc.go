// Package errors provides structured, coded errors for hydrate.
//
// Every failure that crosses a package boundary carries a registered code
// (e.g., "E041") that maps to a category, a short message, a longer
// explanation and a documentation URL:
//
//   - runtime (E001-E019): runtime loop and resource lifecycle
//   - gateway (E020-E039): server function calls
//   - hydration (E040-E059): embedded payloads and markup checks
//   - protocol (E060-E079): binary framing
//   - config (E120-E139): hydrate.json
//   - cli (E140-E159): command line
//
// Errors with the same code match under errors.Is, so callers can test for
// a class of failure without holding a sentinel:
//
//	if errors.Is(err, herrors.New("E041")) {
//	    // envelope decode failure
//	}
//
// Format renders an error for the terminal:
//
//	ERROR E041: Hydration envelope could not be decoded
//
//	  The serialized value for a resource could not be decoded with the
//	  resource's codec. The resource is errored and its loader was not
//	  called.
//
//	  Learn more: https://hydrate.vango.dev/docs/errors/E041
package errors
