//go:build js && wasm

package hydrate

import (
	"context"
	"errors"
	"strings"
	"syscall/js"

	hydration "github.com/vango-dev/hydrate/pkg/hydrate"
	"github.com/vango-dev/hydrate/pkg/render"
)

// DOMContainer is a Container backed by a browser element.
type DOMContainer struct {
	el js.Value
}

// FindContainer returns the element with the given id, usually
// render.RootID.
func FindContainer(id string) (*DOMContainer, error) {
	el := js.Global().Get("document").Call("getElementById", id)
	if el.IsNull() || el.IsUndefined() {
		return nil, errors.New("hydrate: no element #" + id)
	}
	return &DOMContainer{el: el}, nil
}

// HTML implements Container.
func (c *DOMContainer) HTML() string {
	return c.el.Get("innerHTML").String()
}

// Replace implements Container.
func (c *DOMContainer) Replace(html string) error {
	c.el.Set("innerHTML", html)
	return nil
}

// DocumentPayload returns a mount option for the payload embedded in the
// current document, inline or by reference. It returns nil when the page
// carries no payload.
func DocumentPayload() MountOption {
	el := js.Global().Get("document").Call("getElementById", hydration.ScriptID)
	if el.IsNull() || el.IsUndefined() {
		return nil
	}
	if src := el.Call("getAttribute", "data-src"); !src.IsNull() {
		return WithPayloadURL(src.String(), nil)
	}
	return WithPayload(strings.TrimSpace(el.Get("textContent").String()))
}

// BindEvents forwards the events marked with data-on-<event> inside the
// container to root. Handlers are looked up by element id. The returned
// func removes the listeners.
func BindEvents(c *DOMContainer, root *Root, events ...string) func() {
	if len(events) == 0 {
		events = []string{"click", "input", "change", "submit"}
	}

	funcs := make([]js.Func, 0, len(events))
	for _, event := range events {
		event := event
		fn := js.FuncOf(func(this js.Value, args []js.Value) any {
			target := args[0].Get("target")
			el := target.Call("closest", "[data-on-"+event+"]")
			if el.IsNull() {
				return nil
			}
			id := el.Get("id").String()
			if event == "submit" {
				args[0].Call("preventDefault")
			}
			// Trigger blocks on the runtime loop; JS callbacks must not.
			go func() {
				if err := root.Trigger(id, event); err != nil {
					root.logger.Warn("event not handled", "event", event, "id", id, "error", err)
				}
			}()
			return nil
		})
		c.el.Call("addEventListener", event, fn)
		funcs = append(funcs, fn)
	}

	return func() {
		for i, fn := range funcs {
			c.el.Call("removeEventListener", events[i], fn)
			fn.Release()
		}
	}
}

// MountDocument mounts tree into the render.RootID element using the
// document's payload.
func MountDocument(tree *render.Tree, opts ...MountOption) (*Root, error) {
	c, err := FindContainer(render.RootID)
	if err != nil {
		return nil, err
	}
	if p := DocumentPayload(); p != nil {
		opts = append([]MountOption{p}, opts...)
	}
	root, err := Mount(context.Background(), tree, c, opts...)
	if err != nil {
		return nil, err
	}
	BindEvents(c, root)
	return root, nil
}
