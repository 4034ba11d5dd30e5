// Package hydrate carries resource outcomes from the server render to the
// client so the client can adopt them without calling the server again.
//
// On the server, every resource settlement is recorded in the render's
// Collector as a protocol.Envelope keyed by the resource's creation index.
// The renderer embeds the encoded payload in the document:
//
//	<script id="__hydrate" type="application/octet-stream">SFlEUgEC...</script>
//
// or, in store mode, stores it under a render ID and references it:
//
//	<script id="__hydrate" type="application/octet-stream" data-src="/_hydrate/payload/6f1c..."></script>
//
// On the client a Synchronizer is built from the payload. Each resource
// asks for the envelope at its own creation index with Take, which hands
// every envelope out at most once. Matching is by creation index only; the
// server and the client must create resources in the same order.
//
// Decoding is strict. A payload that cannot be parsed, or an envelope that
// cannot be decoded with the resource's codec, is a *HydrationError. The
// resource becomes errored with it and its loader is not called.
package hydrate
