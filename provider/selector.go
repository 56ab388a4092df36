package provider

import (
	"context"
	"fmt"
	"maps"
	"slices"
)

// Selector picks a provider from the initialized set.
type Selector[T Provider] interface {
	Select(ctx context.Context, providers map[string]T) (T, error)
}

// PrioritySelector tries the names in Priority first, then every other
// provider alphabetically, and returns the first that reports itself
// available.
type PrioritySelector[T Provider] struct {
	Priority []string
}

// Select implements Selector.
func (s *PrioritySelector[T]) Select(ctx context.Context, providers map[string]T) (T, error) {
	order := make([]string, 0, len(providers))
	for _, name := range s.Priority {
		if _, ok := providers[name]; ok && !slices.Contains(order, name) {
			order = append(order, name)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(providers)) {
		if !slices.Contains(order, name) {
			order = append(order, name)
		}
	}

	for _, name := range order {
		if p := providers[name]; p.IsAvailable(ctx) {
			return p, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: tried %v", ErrNoneAvailable, order)
}
