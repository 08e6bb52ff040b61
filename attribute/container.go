package attribute

import (
	"fmt"
	"iter"
	"reflect"
	"slices"
	"sort"
	"strings"
)

// Attribute is a named, typed key into a Container.
type Attribute[T comparable] struct {
	name string
}

// Of returns the attribute with the given name and value type T.
func Of[T comparable](name string) Attribute[T] {
	return Attribute[T]{name: name}
}

// Name returns the attribute name.
func (a Attribute[T]) Name() string {
	return a.name
}

// String returns the attribute name followed by its value type.
func (a Attribute[T]) String() string {
	var zero T
	return fmt.Sprintf("%s(%T)", a.name, zero)
}

type entry struct {
	name  string
	value any
}

// Container is an immutable set of attribute values, sorted by name.
// The zero value is an empty container.
type Container struct {
	entries []entry
}

// Empty returns a container without attributes.
func Empty() Container {
	return Container{}
}

// With returns a copy of c with attribute a set to v.
func With[T comparable](c Container, a Attribute[T], v T) Container {
	return c.with(a.name, v)
}

// Get returns the value of attribute a in c. It reports false when the
// attribute is absent or was stored with a different type.
func Get[T comparable](c Container, a Attribute[T]) (T, bool) {
	v, ok := c.Lookup(a.name)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// FromMap builds a container from untyped values. Every value must be of a
// comparable type.
func FromMap(values map[string]any) (Container, error) {
	c := Container{entries: make([]entry, 0, len(values))}
	for name, v := range values {
		if name == "" {
			return Container{}, fmt.Errorf("attribute name cannot be empty")
		}
		if v == nil || !reflect.TypeOf(v).Comparable() {
			return Container{}, fmt.Errorf("attribute %q: value of type %T is not comparable", name, v)
		}
		c.entries = append(c.entries, entry{name: name, value: v})
	}
	sort.Slice(c.entries, func(i, j int) bool { return c.entries[i].name < c.entries[j].name })
	return c, nil
}

// Strings builds a container of string-valued attributes.
func Strings(values map[string]string) Container {
	c := Container{entries: make([]entry, 0, len(values))}
	for name, v := range values {
		c.entries = append(c.entries, entry{name: name, value: v})
	}
	sort.Slice(c.entries, func(i, j int) bool { return c.entries[i].name < c.entries[j].name })
	return c
}

func (c Container) with(name string, v any) Container {
	i, found := c.index(name)
	entries := make([]entry, 0, len(c.entries)+1)
	entries = append(entries, c.entries[:i]...)
	entries = append(entries, entry{name: name, value: v})
	if found {
		i++
	}
	entries = append(entries, c.entries[i:]...)
	return Container{entries: entries}
}

func (c Container) index(name string) (int, bool) {
	return slices.BinarySearchFunc(c.entries, name, func(e entry, n string) int {
		return strings.Compare(e.name, n)
	})
}

// Lookup returns the untyped value stored under name.
func (c Container) Lookup(name string) (any, bool) {
	i, found := c.index(name)
	if !found {
		return nil, false
	}
	return c.entries[i].value, true
}

// Has reports whether c holds a value for name.
func (c Container) Has(name string) bool {
	_, found := c.index(name)
	return found
}

// Names returns the attribute names in order.
func (c Container) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.name
	}
	return names
}

// All iterates over name/value pairs in name order.
func (c Container) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, e := range c.entries {
			if !yield(e.name, e.value) {
				return
			}
		}
	}
}

// Len returns the number of attributes.
func (c Container) Len() int {
	return len(c.entries)
}

// IsEmpty reports whether c holds no attributes.
func (c Container) IsEmpty() bool {
	return len(c.entries) == 0
}

// Merge returns a container holding the attributes of both c and other.
// Values from other replace values from c.
func (c Container) Merge(other Container) Container {
	if other.IsEmpty() {
		return c
	}
	if c.IsEmpty() {
		return other
	}
	merged := c
	for _, e := range other.entries {
		merged = merged.with(e.name, e.value)
	}
	return merged
}

// Equal reports whether both containers hold the same names with equal values
// of the same type.
func (c Container) Equal(other Container) bool {
	return slices.EqualFunc(c.entries, other.entries, func(a, b entry) bool {
		return a.name == b.name && a.value == b.value
	})
}

// String renders the container as {name=value, ...}.
func (c Container) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, e := range c.entries {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", e.name, e.value)
	}
	b.WriteByte('}')
	return b.String()
}

// Key returns a canonical, type-qualified rendering suitable as a map key.
// Containers are Equal exactly when their keys are equal.
func (c Container) Key() string {
	var b strings.Builder
	for _, e := range c.entries {
		fmt.Fprintf(&b, "%q:%T=%#v;", e.name, e.value, e.value)
	}
	return b.String()
}
