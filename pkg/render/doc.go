// Package render turns component trees into HTML.
//
// Rendering happens in two steps. A Tree evaluates components and suspense
// boundaries on the runtime loop and produces a static node tree; a
// Renderer serializes that tree. On the server, Tree.Resolve repeats the
// evaluation until every boundary has settled, so the markup never
// contains a fallback:
//
//	tree := render.NewTree(rt, App)
//	body, err := tree.Resolve(ctx)
//	...
//	r := render.NewRenderer(render.RendererConfig{})
//	err = r.RenderPage(w, render.PageData{Body: body, Payload: payload})
//
// Event handlers are not serialized. Elements carrying one get a
// data-on-<event> marker that the client binds after hydration.
//
// Text and attribute values are always escaped. There is no raw HTML node.
package render
