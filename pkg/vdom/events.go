package vdom

import (
	"fmt"
	"strings"
)

// EventPrefix marks props that subscribe listeners rather than set attributes.
const EventPrefix = "on"

// Event is what a host delivers to a listener.
type Event struct {
	Type  string // "click", "input", ...
	Value string // current value for form events
}

// event creates an EventHandler with the given name and handler.
// The name is prefixed with "on" (e.g., "click" becomes "onclick").
func event(name string, handler any) EventHandler {
	return EventHandler{Event: EventPrefix + name, Handler: handler}
}

// On handles an arbitrary event.
func On(name string, handler any) EventHandler { return event(strings.ToLower(name), handler) }

// OnClick handles click events.
func OnClick(handler any) EventHandler { return event("click", handler) }

// OnDblClick handles double-click events.
func OnDblClick(handler any) EventHandler { return event("dblclick", handler) }

// OnInput handles input events (fired when value changes).
func OnInput(handler any) EventHandler { return event("input", handler) }

// OnChange handles change events (fired when value is committed).
func OnChange(handler any) EventHandler { return event("change", handler) }

// OnSubmit handles form submit events.
func OnSubmit(handler any) EventHandler { return event("submit", handler) }

// OnKeyDown handles keydown events.
func OnKeyDown(handler any) EventHandler { return event("keydown", handler) }

// IsEventProp reports whether a prop name follows the event subscription
// convention ("on" followed by the event name).
func IsEventProp(name string) bool {
	return len(name) > len(EventPrefix) && strings.HasPrefix(name, EventPrefix)
}

// EventName returns the lower-cased event name for an event prop:
// "onClick" → "click".
func EventName(prop string) string {
	return strings.ToLower(strings.TrimPrefix(prop, EventPrefix))
}

// Invoke calls a listener with ev. Supported handler shapes are func(),
// func(Event) and func(string) (which receives ev.Value).
func Invoke(handler any, ev Event) error {
	switch h := handler.(type) {
	case func():
		h()
	case func(Event):
		h(ev)
	case func(string):
		h(ev.Value)
	case nil:
		return fmt.Errorf("vdom: no handler for %q", ev.Type)
	default:
		return fmt.Errorf("vdom: unsupported handler type %T for %q", handler, ev.Type)
	}
	return nil
}
