package hydrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/hydrate/pkg/protocol"
)

// PayloadPath is the default mount path of the payload endpoint.
const PayloadPath = "/_hydrate/payload"

// PayloadContentType is the content type of a stored payload.
const PayloadContentType = "application/octet-stream"

// Publish stores the payload of c under a fresh render id and returns the
// id.
func Publish(ctx context.Context, store Store, c *Collector, ttl time.Duration) (string, error) {
	id := NewRenderID()
	if err := store.Save(ctx, id, c.Payload(), ttl); err != nil {
		return "", fmt.Errorf("hydrate: publish payload: %w", err)
	}
	return id, nil
}

// PayloadURL returns the URL of id under the endpoint mounted at base.
func PayloadURL(base, id string) string {
	return base + "/" + id
}

// PayloadHandler serves GET /{id} from store.
func PayloadHandler(store Store, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "hydrate")

	r := chi.NewRouter()
	r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		if !ValidRenderID(id) {
			http.Error(w, "invalid render id", http.StatusBadRequest)
			return
		}

		payload, err := store.Load(req.Context(), id)
		if errors.Is(err, ErrPayloadNotFound) {
			http.NotFound(w, req)
			return
		}
		if err != nil {
			logger.Error("payload load failed", "id", id, "error", err)
			http.Error(w, "payload unavailable", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", PayloadContentType)
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(payload)
	})
	return r
}

// FetchPayload downloads and parses a stored payload. Every failure is a
// *HydrationError of KindPayload.
func FetchPayload(ctx context.Context, client *http.Client, url string) ([]protocol.Envelope, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &HydrationError{Kind: KindPayload, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &HydrationError{Kind: KindPayload, Detail: "fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HydrationError{Kind: KindPayload, Detail: fmt.Sprintf("fetch: status %d", resp.StatusCode)}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, protocol.HardMaxAllocation+1))
	if err != nil {
		return nil, &HydrationError{Kind: KindPayload, Detail: "fetch", Err: err}
	}
	if len(raw) > protocol.HardMaxAllocation {
		return nil, &HydrationError{Kind: KindPayload, Err: protocol.ErrAllocationTooLarge}
	}
	return ParseBinaryPayload(raw)
}
