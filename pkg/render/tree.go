package render

import (
	"context"
	"strconv"

	herrors "github.com/vango-dev/hydrate/internal/errors"
	"github.com/vango-dev/hydrate/pkg/features/suspense"
	"github.com/vango-dev/hydrate/pkg/vango"
	"github.com/vango-dev/hydrate/pkg/vdom"
)

// DefaultMaxPasses bounds the evaluate-and-wait cycles of Resolve.
const DefaultMaxPasses = 16

// Tree evaluates a root component into a static node tree. Every
// component and boundary gets an owner keyed by its path, so hook state
// survives re-evaluation while the shape of the tree is stable. Owners
// whose path disappears are disposed.
//
// Evaluate must run on the runtime loop. A Tree is not safe for
// concurrent use.
type Tree struct {
	rt   *vango.Runtime
	root vdom.Component

	owners  map[string]*vango.Owner
	seen    map[string]bool
	pending []*suspense.Boundary

	// implicit catches reads outside any boundary during server renders.
	implicit  *suspense.Boundary
	maxPasses int
}

// TreeOption configures a Tree.
type TreeOption func(*Tree)

// WithMaxPasses overrides DefaultMaxPasses.
func WithMaxPasses(n int) TreeOption {
	return func(t *Tree) {
		if n > 0 {
			t.maxPasses = n
		}
	}
}

// NewTree creates a tree for root. Owners are children of the runtime's
// root owner.
func NewTree(rt *vango.Runtime, root vdom.Component, opts ...TreeOption) *Tree {
	t := &Tree{
		rt:        rt,
		root:      root,
		owners:    make(map[string]*vango.Owner),
		maxPasses: DefaultMaxPasses,
	}
	for _, opt := range opts {
		opt(t)
	}
	if rt.Side() == vango.ServerSide {
		t.implicit = suspense.New(rt, rt.Root())
	}
	return t
}

// Runtime returns the runtime the tree evaluates on.
func (t *Tree) Runtime() *vango.Runtime {
	return t.rt
}

// Evaluate runs every component and boundary and returns the result, which
// contains only element, text and fragment nodes.
func (t *Tree) Evaluate(cx *vango.Cx) *vdom.VNode {
	t.seen = make(map[string]bool, len(t.owners))
	t.pending = t.pending[:0]

	if t.implicit != nil {
		cx = cx.WithSuspense(t.implicit)
	}
	out := t.eval(cx, vdom.Comp("", t.root), "r")

	for path, o := range t.owners {
		if !t.seen[path] {
			o.Dispose()
			delete(t.owners, path)
		}
	}
	return out
}

// Pending returns the boundaries that showed their fallback in the last
// Evaluate. Inner boundaries come before the boundaries enclosing them.
func (t *Tree) Pending() []*suspense.Boundary {
	return append([]*suspense.Boundary(nil), t.pending...)
}

// Resolve evaluates the tree until no boundary is pending, waiting for
// boundaries between passes. It must not be called on the loop.
func (t *Tree) Resolve(ctx context.Context) (*vdom.VNode, error) {
	for pass := 0; pass < t.maxPasses; pass++ {
		var (
			out     *vdom.VNode
			waiting []*suspense.Boundary
		)
		err := t.rt.Do(func(cx *vango.Cx) {
			out = t.Evaluate(cx)
			waiting = t.Pending()
		})
		if err != nil {
			return nil, err
		}
		if t.implicit != nil && t.implicit.PendingCount() > 0 {
			waiting = append(waiting, t.implicit)
		}
		if len(waiting) == 0 {
			return out, nil
		}
		for _, b := range waiting {
			if err := b.Wait(ctx); err != nil {
				return nil, err
			}
		}
	}
	return nil, herrors.New("E012").WithDetail("gave up after " + strconv.Itoa(t.maxPasses) + " passes")
}

// Dispose disposes every owner of the tree.
func (t *Tree) Dispose() {
	for path, o := range t.owners {
		o.Dispose()
		delete(t.owners, path)
	}
	if t.implicit != nil {
		t.implicit.Dispose()
	}
}

func (t *Tree) owner(path string, parent *vango.Owner) *vango.Owner {
	t.seen[path] = true
	o, ok := t.owners[path]
	if !ok || o.IsDisposed() {
		o = vango.NewOwner(parent)
		t.owners[path] = o
	}
	return o
}

func (t *Tree) eval(cx *vango.Cx, node *vdom.VNode, path string) *vdom.VNode {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vdom.KindText:
		return node

	case vdom.KindElement, vdom.KindFragment:
		out := &vdom.VNode{Kind: node.Kind, Tag: node.Tag, Props: node.Props, Key: node.Key}
		if len(node.Children) > 0 {
			out.Children = make([]*vdom.VNode, 0, len(node.Children))
		}
		for i, child := range node.Children {
			if c := t.eval(cx, child, childPath(path, child, i)); c != nil {
				out.Children = append(out.Children, c)
			}
		}
		return out

	case vdom.KindComponent:
		if node.Comp == nil {
			return nil
		}
		o := t.owner(path, cx.Owner())
		o.StartRender()
		ccx := cx.WithOwner(o)
		return t.eval(ccx, node.Comp(ccx), path+".c")

	case vdom.KindBoundary:
		o := t.owner(path, cx.Owner())
		o.StartRender()
		bcx := cx.WithOwner(o)
		b := suspense.Use(bcx)

		var fallback vdom.Component
		if node.Fallback != nil {
			fallback = func(fcx *vango.Cx) *vdom.VNode {
				return t.eval(fcx, node.Fallback(fcx), path+".f")
			}
		}
		body := func(bcx *vango.Cx) *vdom.VNode {
			if node.Body == nil {
				return nil
			}
			return t.eval(bcx, node.Body(bcx), path+".b")
		}

		out := b.Render(bcx, fallback, body)
		if b.Pending() {
			t.pending = append(t.pending, b)
		}
		return out
	}
	return nil
}

func childPath(parent string, child *vdom.VNode, i int) string {
	if child != nil && child.Key != "" {
		return parent + "/k:" + child.Key
	}
	return parent + "/" + strconv.Itoa(i)
}
