package vdom

import (
	"fmt"
	"strconv"
)

// Text creates a text node. The renderer escapes it.
func Text(s string) *VNode {
	return &VNode{Kind: KindText, Text: s}
}

// Textf is Text with fmt.Sprintf formatting.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Fragment groups children without a wrapper element. It accepts the same
// arguments as El.
func Fragment(args ...any) *VNode {
	f := &VNode{Kind: KindFragment, Props: Props{}}
	for _, a := range args {
		f.apply(a)
	}
	return f
}

// If returns node when cond holds. El skips nil children.
func If(cond bool, node *VNode) *VNode {
	if !cond {
		return nil
	}
	return node
}

// When is If with a lazily built node.
func When(cond bool, build func() *VNode) *VNode {
	if !cond {
		return nil
	}
	return build()
}

// Range builds one node per item. Nil results are dropped, so the slice
// can be passed to El as is.
func Range[T any](items []T, build func(item T, i int) *VNode) []*VNode {
	out := make([]*VNode, 0, len(items))
	for i := range items {
		if n := build(items[i], i); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Key sets the key of the node it is applied to. Component owners are
// looked up by key, so a keyed child keeps its hook state when siblings
// move.
func Key(key any) Attr {
	switch k := key.(type) {
	case string:
		return Attr{Key: "key", Value: k}
	case int:
		return Attr{Key: "key", Value: strconv.Itoa(k)}
	default:
		return Attr{Key: "key", Value: fmt.Sprint(k)}
	}
}
