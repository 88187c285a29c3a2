package transform

import (
	"fmt"
	"slices"
)

// Func rewrites a segment in place. Each output element must depend only on
// the input element at the same index.
type Func func(segment []int64)

var registry = make(map[string]Func)

func Register(name string, fn Func) error {
	if fn == nil {
		return fmt.Errorf("transform %s: nil func", name)
	}
	if _, exists := registry[name]; exists {
		return fmt.Errorf("transform already registered: %s", name)
	}
	registry[name] = fn
	return nil
}

func Get(name string) (Func, error) {
	fn, exists := registry[name]
	if !exists {
		return nil, fmt.Errorf("transform not found: %s", name)
	}
	return fn, nil
}

// List returns the registered transform names in sorted order.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
