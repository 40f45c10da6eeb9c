package vdom

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// PropChange is one step of applying props to a host node.
type PropChange struct {
	Name    string // prop name as written ("class", "onClick")
	Value   any    // new value; previous value for removed listeners
	Removed bool   // true when the prop is absent from the next props
	Event   bool   // true for event-convention props
}

// EventType returns the event name for listener changes.
func (c PropChange) EventType() string {
	return EventName(c.Name)
}

// DiffProps returns the changes that take a host node from prev to next.
//
// Props present in prev but absent from next come first, as removals
// (listeners carry the previously subscribed handler so it can be
// unsubscribed). Then every prop of next is (re)applied, unconditionally,
// including unchanged ones. ChildrenProp is never an attribute. Names are
// sorted within each group so hosts see a deterministic order.
func DiffProps(prev, next Props) []PropChange {
	changes := make([]PropChange, 0, len(next)+len(prev))

	for _, name := range sortedKeys(prev) {
		if _, ok := next[name]; ok {
			continue
		}
		event := IsEventProp(name)
		c := PropChange{Name: name, Removed: true, Event: event}
		if event {
			c.Value = prev[name]
		}
		changes = append(changes, c)
	}

	for _, name := range sortedKeys(next) {
		changes = append(changes, PropChange{
			Name:  name,
			Value: next[name],
			Event: IsEventProp(name),
		})
	}

	return changes
}

// sortedKeys returns the non-children keys of p in order.
func sortedKeys(p Props) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		if k == ChildrenProp {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatAttr formats a prop value as an attribute string. Values with no
// attribute form (nil, functions) report false.
func FormatAttr(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case fmt.Stringer:
		return v.String(), true
	}
	if reflect.TypeOf(value).Kind() == reflect.Func {
		return "", false
	}
	return fmt.Sprint(value), true
}
