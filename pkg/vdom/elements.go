package vdom

import "github.com/vango-dev/hydrate/pkg/vango"

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// El creates an element. Arguments can be nil, Attr, []Attr,
// EventHandler, *VNode, []*VNode, Component or string.
func El(tag string, args ...any) *VNode {
	node := &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: make(Props),
	}
	for _, arg := range args {
		node.apply(arg)
	}
	return node
}

func (v *VNode) apply(arg any) {
	switch a := arg.(type) {
	case nil:
	case Attr:
		v.setAttr(a)
	case []Attr:
		for _, attr := range a {
			v.setAttr(attr)
		}
	case EventHandler:
		if a.Handler != nil {
			v.Props[a.Event] = a.Handler
		}
	case *VNode:
		if a != nil {
			v.Children = append(v.Children, a)
		}
	case []*VNode:
		for _, c := range a {
			if c != nil {
				v.Children = append(v.Children, c)
			}
		}
	case Component:
		v.Children = append(v.Children, &VNode{Kind: KindComponent, Comp: a})
	case func(cx *vango.Cx) *VNode:
		v.Children = append(v.Children, &VNode{Kind: KindComponent, Comp: a})
	case string:
		v.Children = append(v.Children, Text(a))
	}
}

func (v *VNode) setAttr(a Attr) {
	if a.Key == "" {
		return
	}
	if a.Key == "key" {
		if s, ok := a.Value.(string); ok {
			v.Key = s
		}
		return
	}
	v.Props[a.Key] = a.Value
}

// Document structure

func Html(args ...any) *VNode  { return El("html", args...) }
func Head(args ...any) *VNode  { return El("head", args...) }
func Body(args ...any) *VNode  { return El("body", args...) }
func Title(args ...any) *VNode { return El("title", args...) }
func Meta(args ...any) *VNode  { return El("meta", args...) }
func Link(args ...any) *VNode  { return El("link", args...) }

// Sectioning and text

func Main(args ...any) *VNode    { return El("main", args...) }
func Section(args ...any) *VNode { return El("section", args...) }
func Header(args ...any) *VNode  { return El("header", args...) }
func Footer(args ...any) *VNode  { return El("footer", args...) }
func H1(args ...any) *VNode      { return El("h1", args...) }
func H2(args ...any) *VNode      { return El("h2", args...) }
func Div(args ...any) *VNode     { return El("div", args...) }
func P(args ...any) *VNode       { return El("p", args...) }
func Span(args ...any) *VNode    { return El("span", args...) }
func Pre(args ...any) *VNode     { return El("pre", args...) }
func Code(args ...any) *VNode    { return El("code", args...) }
func Strong(args ...any) *VNode  { return El("strong", args...) }
func Em(args ...any) *VNode      { return El("em", args...) }
func A(args ...any) *VNode       { return El("a", args...) }
func Ul(args ...any) *VNode      { return El("ul", args...) }
func Li(args ...any) *VNode      { return El("li", args...) }
func Br(args ...any) *VNode      { return El("br", args...) }
func Hr(args ...any) *VNode      { return El("hr", args...) }
func Img(args ...any) *VNode     { return El("img", args...) }

// Forms

func Form(args ...any) *VNode   { return El("form", args...) }
func Input(args ...any) *VNode  { return El("input", args...) }
func Button(args ...any) *VNode { return El("button", args...) }
func Label(args ...any) *VNode  { return El("label", args...) }

// Scripting

func Script(args ...any) *VNode { return El("script", args...) }
