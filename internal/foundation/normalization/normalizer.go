// Package normalization maps loosely written configuration strings onto
// typed enum values.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer converts strings to values of an enum type T. Lookups ignore
// case and surrounding whitespace.
type Normalizer[T comparable] struct {
	name         string
	values       map[string]T
	defaultValue T
	keys         []string
}

// NewNormalizer creates a normalizer named name (used in error messages)
// over the given key/value table.
func NewNormalizer[T comparable](name string, values map[string]T, defaultValue T) *Normalizer[T] {
	n := &Normalizer[T]{
		name:         name,
		values:       make(map[string]T, len(values)),
		defaultValue: defaultValue,
		keys:         make([]string, 0, len(values)),
	}
	for k, v := range values {
		key := clean(k)
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	sort.Strings(n.keys)
	return n
}

// Normalize returns the value for raw, or the default when raw is unknown.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.values[clean(raw)]; ok {
		return v
	}
	return n.defaultValue
}

// Parse returns the value for raw, or an error listing the valid keys.
// An empty raw string yields the default value.
func (n *Normalizer[T]) Parse(raw string) (T, error) {
	key := clean(raw)
	if key == "" {
		return n.defaultValue, nil
	}
	if v, ok := n.values[key]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %s", n.name, raw, strings.Join(n.keys, ", "))
}

// Valid reports whether raw names a known value.
func (n *Normalizer[T]) Valid(raw string) bool {
	_, ok := n.values[clean(raw)]
	return ok
}

// Keys returns the sorted valid keys.
func (n *Normalizer[T]) Keys() []string {
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
