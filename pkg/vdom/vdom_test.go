package vdom

import (
	"testing"

	"github.com/vango-dev/hydrate/pkg/vango"
)

func TestVKindString(t *testing.T) {
	tests := []struct {
		kind VKind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindFragment, "Fragment"},
		{KindComponent, "Component"},
		{KindBoundary, "Boundary"},
		{VKind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("VKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestElementArguments(t *testing.T) {
	clicked := false
	comp := func(cx *vango.Cx) *VNode { return Text("c") }

	node := Div(
		nil,
		ID("root"),
		[]Attr{Class("a", "b"), Key("k1")},
		OnClick(func(cx *vango.Cx) { clicked = true }),
		"text",
		Span("inner"),
		[]*VNode{P(), nil},
		comp,
		Component(comp),
	)

	if node.Kind != KindElement || node.Tag != "div" {
		t.Fatalf("node = %v %q", node.Kind, node.Tag)
	}
	if node.Props["id"] != "root" || node.Props["class"] != "a b" {
		t.Errorf("props = %v", node.Props)
	}
	if node.Key != "k1" {
		t.Errorf("Key = %q, want k1", node.Key)
	}
	if _, ok := node.Props["key"]; ok {
		t.Error("key must not be rendered as an attribute")
	}
	if len(node.Children) != 5 {
		t.Fatalf("children = %d, want 5", len(node.Children))
	}
	if node.Children[0].Kind != KindText || node.Children[0].Text != "text" {
		t.Errorf("first child = %+v", node.Children[0])
	}
	if node.Children[3].Kind != KindComponent || node.Children[4].Kind != KindComponent {
		t.Error("functions should become component nodes")
	}

	h, ok := node.Handler("click")
	if !ok {
		t.Fatal("click handler missing")
	}
	h(nil)
	if !clicked {
		t.Error("handler did not run")
	}
	if !node.IsInteractive() {
		t.Error("IsInteractive() = false")
	}
	if Span().IsInteractive() {
		t.Error("plain span should not be interactive")
	}
}

func TestVoidElements(t *testing.T) {
	for _, tag := range []string{"br", "img", "input", "meta"} {
		if !IsVoidElement(tag) {
			t.Errorf("%s should be void", tag)
		}
	}
	if IsVoidElement("div") {
		t.Error("div is not void")
	}
}

func TestFragmentAndHelpers(t *testing.T) {
	f := Fragment("a", nil, Textf("%d", 2), If(false, Text("x")), When(true, func() *VNode { return Text("y") }))
	if f.Kind != KindFragment || len(f.Children) != 3 {
		t.Fatalf("fragment = %+v", f)
	}
	if f.Children[1].Text != "2" || f.Children[2].Text != "y" {
		t.Errorf("children = %q %q", f.Children[1].Text, f.Children[2].Text)
	}

	items := Range([]string{"€", "", "a"}, func(s string, i int) *VNode {
		if s == "" {
			return nil
		}
		return Li(s)
	})
	if len(items) != 2 {
		t.Errorf("Range returned %d nodes, want 2", len(items))
	}
}

func TestFindByID(t *testing.T) {
	tree := Div(
		Comp("c", func(cx *vango.Cx) *VNode { return Button(ID("hidden")) }),
		Section(Button(ID("inc"), "+")),
	)
	if got := FindByID(tree, "inc"); got == nil || got.Tag != "button" {
		t.Errorf("FindByID(inc) = %v", got)
	}
	if got := FindByID(tree, "hidden"); got != nil {
		t.Error("FindByID must not evaluate components")
	}
}

func TestAttributeHelpers(t *testing.T) {
	node := Button(Data("state", "ready"), Disabled(true), Attr{Key: "aria-busy", Value: "false"})
	if node.Props["data-state"] != "ready" {
		t.Errorf("data-state = %v", node.Props["data-state"])
	}
	if node.Props["disabled"] != true {
		t.Errorf("disabled = %v", node.Props["disabled"])
	}
	if node.Props["aria-busy"] != "false" {
		t.Errorf("aria-busy = %v", node.Props["aria-busy"])
	}
}
