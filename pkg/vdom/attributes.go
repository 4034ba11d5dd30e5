package vdom

import "strings"

// Attribute helpers. Any other attribute can be set with Attr{Key, Value};
// bool values render as HTML boolean attributes.

func ID(id string) Attr { return Attr{Key: "id", Value: id} }

// Class joins classes with single spaces.
func Class(classes ...string) Attr {
	return Attr{Key: "class", Value: strings.Join(classes, " ")}
}

// Data sets data-<name>.
func Data(name, value string) Attr { return Attr{Key: "data-" + name, Value: value} }

func Disabled(on bool) Attr { return Attr{Key: "disabled", Value: on} }
