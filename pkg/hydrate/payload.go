package hydrate

import (
	"encoding/base64"
	"html"
	"strings"

	"github.com/vango-dev/hydrate/pkg/protocol"
)

// ScriptID is the id of the script element carrying the payload.
const ScriptID = "__hydrate"

// EncodePayload returns the base64 text embedded in the document.
func EncodePayload(envs []protocol.Envelope) string {
	return base64.StdEncoding.EncodeToString(protocol.EncodePayload(envs))
}

// ParsePayload decodes the base64 text produced by EncodePayload. Every
// failure is a *HydrationError of KindPayload.
func ParsePayload(text string) ([]protocol.Envelope, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, &HydrationError{Kind: KindPayload, Detail: "invalid base64", Err: err}
	}
	return ParseBinaryPayload(raw)
}

// ParseBinaryPayload decodes a payload fetched in store mode.
func ParseBinaryPayload(raw []byte) ([]protocol.Envelope, error) {
	envs, err := protocol.DecodePayload(raw)
	if err != nil {
		return nil, &HydrationError{Kind: KindPayload, Err: err}
	}
	return envs, nil
}

// ScriptTag returns the inline payload element.
func ScriptTag(encoded string) string {
	return `<script id="` + ScriptID + `" type="application/octet-stream">` + encoded + `</script>`
}

// RefScriptTag returns the payload element for store mode. src is the URL
// the client fetches the binary payload from.
func RefScriptTag(src string) string {
	return `<script id="` + ScriptID + `" type="application/octet-stream" data-src="` +
		html.EscapeString(src) + `"></script>`
}

// ExtractPayload finds the payload element in a document. It returns the
// inline text, or the data-src reference in store mode.
func ExtractPayload(document string) (text, src string, ok bool) {
	marker := `<script id="` + ScriptID + `"`
	start := strings.Index(document, marker)
	if start < 0 {
		return "", "", false
	}
	rest := document[start+len(marker):]

	tagEnd := strings.IndexByte(rest, '>')
	if tagEnd < 0 {
		return "", "", false
	}
	attrs := rest[:tagEnd]
	body := rest[tagEnd+1:]

	closeIdx := strings.Index(body, "</script>")
	if closeIdx < 0 {
		return "", "", false
	}

	if i := strings.Index(attrs, `data-src="`); i >= 0 {
		v := attrs[i+len(`data-src="`):]
		if j := strings.IndexByte(v, '"'); j >= 0 {
			src = html.UnescapeString(v[:j])
		}
	}
	return body[:closeIdx], src, true
}
