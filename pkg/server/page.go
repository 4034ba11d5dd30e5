package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	herrors "github.com/vango-dev/hydrate/internal/errors"
	"github.com/vango-dev/hydrate/pkg/features/resource"
	"github.com/vango-dev/hydrate/pkg/hydrate"
	"github.com/vango-dev/hydrate/pkg/render"
	"github.com/vango-dev/hydrate/pkg/vango"
	"github.com/vango-dev/hydrate/pkg/vdom"
)

type requestKey struct{}

// RequestFrom returns the request being rendered by cx's runtime, or nil
// outside a server render.
func RequestFrom(cx *vango.Cx) *http.Request {
	rt := cx.Runtime()
	if rt == nil {
		return nil
	}
	r, _ := rt.Value(requestKey{}).(*http.Request)
	return r
}

// pageHandler renders one root component per request. Each request gets
// its own server runtime and collector; the runtime is closed when the
// response is written.
type pageHandler struct {
	server *Server
	root   vdom.Component
	base   render.PageData
}

func (h *pageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s := h.server
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), s.config.RenderTimeout)
	defer cancel()

	logger := s.logger.With("path", r.URL.Path)
	rt := vango.NewRuntime(vango.ServerSide, vango.WithLogger(logger))
	defer rt.Close()

	collector := hydrate.NewCollector()
	hydrate.AttachCollector(rt, collector)
	resource.AttachContext(rt, ctx)
	if s.metrics != nil {
		resource.AttachObserver(rt, s.metrics)
	}
	rt.SetValue(requestKey{}, r)

	tree := render.NewTree(rt, h.root)
	defer func() { _ = rt.Do(func(*vango.Cx) { tree.Dispose() }) }()

	page := h.page()
	resolve := func(p *render.PageData) error {
		body, err := tree.Resolve(ctx)
		if err != nil {
			return err
		}
		p.Body = body
		return h.attachPayload(ctx, p, collector)
	}

	var err error
	if s.config.Stream {
		err = h.stream(w, page, resolve)
	} else {
		err = h.buffer(w, page, resolve)
	}

	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordRender(elapsed, err)
	}
	if err != nil {
		logger.Error("page render failed", "error", err, "duration", elapsed)
		return
	}
	logger.Debug("page rendered", "resources", collector.Len(), "duration", elapsed)
}

// page returns the base document with the server's client script.
func (h *pageHandler) page() render.PageData {
	page := h.base
	if len(h.server.bundle) == 0 && page.ClientScript == "" {
		page.NoClientScript = true
	}
	return page
}

// buffer resolves the body before writing anything, so a failed render
// still gets an error status.
func (h *pageHandler) buffer(w http.ResponseWriter, page render.PageData, resolve func(*render.PageData) error) error {
	if err := resolve(&page); err != nil {
		h.server.writeRenderError(w, err)
		return err
	}

	var buf bytes.Buffer
	if err := render.NewRenderer(h.server.config.Renderer).RenderPage(&buf, page); err != nil {
		h.server.writeRenderError(w, err)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(buf.Bytes())
	return err
}

// stream sends the head first. A failure after that point can only be
// logged; the document is left unterminated.
func (h *pageHandler) stream(w http.ResponseWriter, page render.PageData, resolve func(*render.PageData) error) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	return render.NewStreamingRenderer(w, h.server.config.Renderer).RenderPage(page, resolve)
}

// attachPayload puts the collected envelopes into the document, or
// publishes them and references the published copy.
func (h *pageHandler) attachPayload(ctx context.Context, p *render.PageData, c *hydrate.Collector) error {
	if c.Len() == 0 {
		return nil
	}
	if h.server.config.PayloadMode == PayloadStore {
		id, err := hydrate.Publish(ctx, h.server.store, c, h.server.config.PayloadTTL)
		if err != nil {
			return err
		}
		p.PayloadSrc = hydrate.PayloadURL(hydrate.PayloadPath, id)
		return nil
	}
	p.Payload = hydrate.EncodePayload(c.Envelopes())
	return nil
}

// renderStatus maps a render failure to an HTTP status.
func renderStatus(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled), errors.Is(err, vango.ErrRuntimeClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeRenderError(w http.ResponseWriter, err error) {
	status := renderStatus(err)
	if !s.config.DevMode {
		http.Error(w, http.StatusText(status), status)
		return
	}
	var he *herrors.Error
	if !errors.As(err, &he) {
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	io.WriteString(w, he.FormatJSON())
}
