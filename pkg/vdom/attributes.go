package vdom

import "strings"

// Prop creates an arbitrary prop. Component props are usually passed this way.
func Prop(key string, value any) Attr { return Attr{Key: key, Value: value} }

// ID sets the id attribute.
func ID(id string) Attr { return Prop("id", id) }

// Class sets the class attribute. Empty names are dropped and the rest are
// joined with spaces.
func Class(names ...string) Attr {
	kept := names[:0:0]
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			kept = append(kept, n)
		}
	}
	return Prop("class", strings.Join(kept, " "))
}

// Data sets a data-* attribute: Data("row", "3") renders data-row="3".
func Data(key, value string) Attr { return Prop("data-"+key, value) }

// Name sets the name attribute.
func Name(name string) Attr { return Prop("name", name) }

// Value sets the value attribute.
func Value(value string) Attr { return Prop("value", value) }

// InputType sets the type attribute.
func InputType(t string) Attr { return Prop("type", t) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return Prop("placeholder", text) }

// Bool sets a boolean attribute. A false value is rendered as absent, so
// toggling it off between renders removes the attribute.
func Bool(name string, on bool) Attr { return Prop(name, on) }

// Disabled sets the disabled attribute.
func Disabled() Attr { return Bool("disabled", true) }

// Checked sets the checked attribute.
func Checked(on bool) Attr { return Bool("checked", on) }
