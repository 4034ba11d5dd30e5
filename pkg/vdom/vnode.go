package vdom

import (
	"strings"

	"github.com/vango-dev/hydrate/pkg/vango"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <button>, etc.
	KindText                   // Plain text node
	KindFragment               // Grouping without wrapper
	KindComponent              // Nested component, rendered with its own owner
	KindBoundary               // Suspense boundary
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	case KindBoundary:
		return "Boundary"
	default:
		return "Unknown"
	}
}

// Component renders a subtree. It is called on the runtime loop with a
// handle whose owner is stable across renders of the same tree position.
type Component func(cx *vango.Cx) *VNode

// VNode is a view node.
type VNode struct {
	Kind     VKind
	Tag      string
	Props    Props
	Children []*VNode
	Key      string
	Text     string

	// Comp is set for KindComponent.
	Comp Component

	// Fallback and Body are set for KindBoundary.
	Fallback Component
	Body     Component
}

// Props holds attributes and event handlers.
type Props map[string]any

// Handler is an event handler. It runs on the runtime loop.
type Handler func(cx *vango.Cx)

// Handler returns the handler registered for event, if any.
func (v *VNode) Handler(event string) (Handler, bool) {
	if v == nil || v.Kind != KindElement {
		return nil, false
	}
	h, ok := v.Props["on"+event].(Handler)
	return h, ok
}

// IsInteractive returns true if this node has event handlers.
func (v *VNode) IsInteractive() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for key := range v.Props {
		if strings.HasPrefix(key, "on") {
			return true
		}
	}
	return false
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// EventHandler binds a Handler to an event name such as "onclick".
type EventHandler struct {
	Event   string
	Handler Handler
}

// Comp wraps a component in a node. key distinguishes siblings that
// render the same component.
func Comp(key string, c Component) *VNode {
	return &VNode{Kind: KindComponent, Comp: c, Key: key}
}

// Walk calls fn for node and its static descendants in document order.
// Components and boundaries are not evaluated. Returning false from fn
// skips the node's children.
func Walk(node *VNode, fn func(*VNode) bool) {
	if node == nil || !fn(node) {
		return
	}
	for _, c := range node.Children {
		Walk(c, fn)
	}
}

// FindByID returns the first static element whose id attribute is id.
func FindByID(node *VNode, id string) *VNode {
	var found *VNode
	Walk(node, func(n *VNode) bool {
		if found != nil {
			return false
		}
		if s, _ := n.Props["id"].(string); n.Kind == KindElement && s == id {
			found = n
			return false
		}
		return true
	})
	return found
}
