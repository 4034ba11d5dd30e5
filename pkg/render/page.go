package render

import (
	"fmt"
	"io"

	"github.com/vango-dev/hydrate/pkg/hydrate"
	"github.com/vango-dev/hydrate/pkg/vdom"
)

// RootID is the id of the element wrapping the rendered body. The client
// mounts into it and compares its markup before adopting it.
const RootID = "hydrate-root"

// DefaultClientScript is the client bundle path used when PageData leaves
// ClientScript empty.
const DefaultClientScript = "/_hydrate/client.js"

// PageData contains everything needed to render a complete document.
type PageData struct {
	// Body is the evaluated root node. It is rendered inside the RootID
	// element.
	Body *vdom.VNode

	Title string

	// Lang defaults to "en".
	Lang string

	Meta        []MetaTag
	Links       []LinkTag
	StyleSheets []string

	// Scripts with Defer or Async go in the head, the rest after the body.
	Scripts []ScriptTag

	// Payload is the encoded hydration payload, inlined after the body.
	Payload string

	// PayloadSrc, when set, replaces the inline payload with a reference
	// the client fetches.
	PayloadSrc string

	// ClientScript defaults to DefaultClientScript. Set NoClientScript to
	// omit it.
	ClientScript   string
	NoClientScript bool
}

// MetaTag represents a meta element in the document head.
type MetaTag struct {
	Name      string
	Content   string
	Property  string
	HTTPEquiv string
}

// LinkTag represents a link element in the document head.
type LinkTag struct {
	Rel  string
	Href string
	Type string
}

// ScriptTag represents a script element.
type ScriptTag struct {
	Src    string
	Module bool
	Defer  bool
	Async  bool
	Inline string
}

// RenderPage renders a complete HTML document to w.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	if err := r.renderDocumentStart(w, page); err != nil {
		return err
	}
	return r.renderDocumentEnd(w, page)
}

func (r *Renderer) renderDocumentStart(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}
	if _, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=\"%s\">\n", escapeAttr(lang)); err != nil {
		return err
	}
	return r.renderHead(w, page)
}

func (r *Renderer) renderDocumentEnd(w io.Writer, page PageData) error {
	if _, err := fmt.Fprintf(w, "<body>\n<div id=\"%s\">", RootID); err != nil {
		return err
	}
	if err := r.RenderToWriter(w, page.Body); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "</div>\n"); err != nil {
		return err
	}
	if err := r.renderBodyScripts(w, page); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}

func (r *Renderer) renderHead(w io.Writer, page PageData) error {
	io.WriteString(w, "<head>\n")
	io.WriteString(w, "  <meta charset=\"utf-8\">\n")
	io.WriteString(w, "  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	if page.Title != "" {
		fmt.Fprintf(w, "  <title>%s</title>\n", escapeHTML(page.Title))
	}
	for _, m := range page.Meta {
		writeVoidTag(w, "meta",
			"name", m.Name,
			"property", m.Property,
			"http-equiv", m.HTTPEquiv,
			"content", m.Content,
		)
	}
	for _, l := range page.Links {
		writeVoidTag(w, "link", "rel", l.Rel, "href", l.Href, "type", l.Type)
	}
	for _, href := range page.StyleSheets {
		writeVoidTag(w, "link", "rel", "stylesheet", "href", href)
	}
	for _, s := range page.Scripts {
		if s.Defer || s.Async {
			renderScriptTag(w, s)
		}
	}
	_, err := io.WriteString(w, "</head>\n")
	return err
}

// renderBodyScripts writes the hydration payload ahead of the client
// script so the payload is in the document when the client starts.
func (r *Renderer) renderBodyScripts(w io.Writer, page PageData) error {
	switch {
	case page.PayloadSrc != "":
		if _, err := io.WriteString(w, hydrate.RefScriptTag(page.PayloadSrc)+"\n"); err != nil {
			return err
		}
	case page.Payload != "":
		if _, err := io.WriteString(w, hydrate.ScriptTag(page.Payload)+"\n"); err != nil {
			return err
		}
	}

	for _, s := range page.Scripts {
		if !s.Defer && !s.Async {
			renderScriptTag(w, s)
		}
	}
	if page.NoClientScript {
		return nil
	}
	src := page.ClientScript
	if src == "" {
		src = DefaultClientScript
	}
	return renderScriptTag(w, ScriptTag{Src: src, Defer: true})
}

// writeVoidTag writes a void element from name/value pairs, skipping
// empty values.
func writeVoidTag(w io.Writer, tag string, pairs ...string) error {
	if _, err := io.WriteString(w, "  <"+tag); err != nil {
		return err
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, pairs[i], escapeAttr(pairs[i+1])); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, ">\n")
	return err
}

func renderScriptTag(w io.Writer, s ScriptTag) error {
	io.WriteString(w, "  <script")
	if s.Src != "" {
		fmt.Fprintf(w, ` src="%s"`, escapeAttr(s.Src))
	}
	if s.Module {
		io.WriteString(w, ` type="module"`)
	}
	if s.Defer {
		io.WriteString(w, " defer")
	}
	if s.Async {
		io.WriteString(w, " async")
	}
	_, err := fmt.Fprintf(w, ">%s</script>\n", s.Inline)
	return err
}
