package render

import (
	"strings"

	"github.com/vango-dev/hydrate/pkg/vdom"
)

func isVoidElement(tag string) bool { return vdom.IsVoidElement(tag) }

// setOf builds a lookup set from a space separated list.
func setOf(names string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, n := range strings.Fields(names) {
		set[n] = struct{}{}
	}
	return set
}

var (
	// Inline elements stay on one line when pretty printing.
	inlineElements = setOf("a b br code em i small span strong sub sup time")

	// Boolean attributes render as a bare name when true and not at all when false.
	booleanAttrs = setOf("async autofocus checked defer disabled hidden multiple open readonly required selected")
)

func isInlineElement(tag string) bool {
	_, ok := inlineElements[tag]
	return ok
}

func isBooleanAttr(name string) bool {
	_, ok := booleanAttrs[name]
	return ok
}
