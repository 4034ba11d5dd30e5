// Package vdom defines the view nodes produced by components.
//
// A VNode is a tagged variant: Kind selects which fields are meaningful.
// Renderers switch on Kind exhaustively.
//
//	KindElement    Tag, Props, Children
//	KindText       Text
//	KindFragment   Children
//	KindComponent  Comp, Key
//	KindBoundary   Fallback, Body, Key
//
// Elements are built with variadic factories:
//
//	Div(Class("card"),
//	    H1("Title"),
//	    Button(OnClick(inc), Textf("%d", n)),
//	)
//
// Components and boundaries are evaluated lazily by the renderer, which
// gives each of them an owner keyed by its position in the tree.
package vdom
