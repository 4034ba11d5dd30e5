// Package suspense shows fallback content while async reads below a
// boundary are pending.
//
//	suspense.Suspense(
//	    func(cx *vango.Cx) *vdom.VNode { return vdom.P("Loading…") },
//	    func(cx *vango.Cx) *vdom.VNode { return profile.Match(cx, ...) },
//	)
//
// The boundary never owns the resources it observes. It keeps their ids
// and resolves them through the runtime on every count, so a disposed
// resource simply stops being counted.
//
// On the server the renderer evaluates a boundary, waits off the loop
// until its pending count reaches zero, and evaluates it again, so a
// pending state never reaches the document. On the client the fallback is
// shown at once and the mount effect re-renders when a resource settles.
package suspense
