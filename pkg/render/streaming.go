package render

import (
	"io"
	"net/http"
)

// StreamingRenderer sends the document head before the body exists. The
// browser starts on stylesheets and the client script while the server is
// still waiting on boundaries.
type StreamingRenderer struct {
	r     *Renderer
	w     io.Writer
	flush func()
}

// NewStreamingRenderer returns a streaming renderer on w. It flushes after
// each part when w is an http.Flusher.
func NewStreamingRenderer(w io.Writer, config RendererConfig) *StreamingRenderer {
	s := &StreamingRenderer{r: NewRenderer(config), w: w, flush: func() {}}
	if f, ok := w.(http.Flusher); ok {
		s.flush = f.Flush
	}
	return s
}

// RenderPage writes the head of page, then lets resolve fill Body and the
// payload fields, then writes the rest. When resolve fails the head has
// already gone out and the document stays unterminated.
func (s *StreamingRenderer) RenderPage(page PageData, resolve func(page *PageData) error) error {
	parts := []func() error{
		func() error { return s.r.renderDocumentStart(s.w, page) },
		func() error {
			if resolve == nil {
				return nil
			}
			return resolve(&page)
		},
		func() error { return s.r.renderDocumentEnd(s.w, page) },
	}
	for i, part := range parts {
		if err := part(); err != nil {
			return err
		}
		if i != 1 {
			s.flush()
		}
	}
	return nil
}
