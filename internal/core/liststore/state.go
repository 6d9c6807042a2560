// Package liststore implements the accumulating-list store: items arrive one
// at a time and at most one of them is marked active.
package liststore

// Item is one entry in a list snapshot.
type Item[T any] struct {
	Value  T
	Active bool
}

// State is an immutable list snapshot. Methods that change the list return a
// new State backed by a new slice; published snapshots are never modified.
type State[T any] struct {
	Items []Item[T]
}

// Len returns the number of items.
func (s State[T]) Len() int {
	return len(s.Items)
}

// Values returns the item values in arrival order.
func (s State[T]) Values() []T {
	out := make([]T, len(s.Items))
	for i, it := range s.Items {
		out[i] = it.Value
	}
	return out
}

// Active returns the active item, if any.
func (s State[T]) Active() (T, bool) {
	for _, it := range s.Items {
		if it.Active {
			return it.Value, true
		}
	}
	var zero T
	return zero, false
}

// Append returns a copy of s with v added as an inactive item.
func (s State[T]) Append(v T) State[T] {
	items := make([]Item[T], len(s.Items), len(s.Items)+1)
	copy(items, s.Items)
	return State[T]{Items: append(items, Item[T]{Value: v})}
}

// Toggle returns a copy of s with the item identified by target toggled.
// Toggling the active item leaves no item active; toggling any other item
// makes it the only active one. An unknown target clears nothing and returns
// an equal copy.
func Toggle[T any, K comparable](s State[T], target K, key func(T) K) State[T] {
	idx := -1
	for i, it := range s.Items {
		if key(it.Value) == target {
			idx = i
			break
		}
	}

	items := make([]Item[T], len(s.Items))
	copy(items, s.Items)
	if idx < 0 {
		return State[T]{Items: items}
	}

	activate := !items[idx].Active
	for i := range items {
		items[i].Active = false
	}
	items[idx].Active = activate

	return State[T]{Items: items}
}
