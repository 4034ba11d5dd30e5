package vdom

// event creates an EventHandler with the given name and handler.
// The name is prefixed with "on" (e.g., "click" becomes "onclick").
func event(name string, handler Handler) EventHandler {
	return EventHandler{Event: "on" + name, Handler: handler}
}

// On handles an arbitrary event.
func On(name string, handler Handler) EventHandler { return event(name, handler) }

// OnClick handles click events.
func OnClick(handler Handler) EventHandler { return event("click", handler) }

// OnInput handles input events.
func OnInput(handler Handler) EventHandler { return event("input", handler) }

// OnChange handles change events.
func OnChange(handler Handler) EventHandler { return event("change", handler) }

// OnSubmit handles form submission.
func OnSubmit(handler Handler) EventHandler { return event("submit", handler) }
