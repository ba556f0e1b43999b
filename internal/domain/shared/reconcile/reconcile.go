// Package reconcile merges incoming entities into locally held collections.
// Every function is pure: inputs are never modified and a fresh slice is returned.
package reconcile

import (
	"cmp"
	"sort"
)

// Upsert replaces the element whose key matches item, or appends item.
func Upsert[T any, K comparable](list []T, item T, key func(T) K) []T {
	out := clone(list)
	k := key(item)
	for i := range out {
		if key(out[i]) == k {
			out[i] = item
			return out
		}
	}
	return append(out, item)
}

// UpsertFunc is Upsert where merge decides the stored value. existing is nil
// when the key is new.
func UpsertFunc[T any, K comparable](list []T, k K, key func(T) K, merge func(existing *T) T) []T {
	out := clone(list)
	for i := range out {
		if key(out[i]) == k {
			current := out[i]
			out[i] = merge(&current)
			return out
		}
	}
	return append(out, merge(nil))
}

// Merge upserts every incoming element, in order. Duplicates inside incoming
// collapse onto the last occurrence.
func Merge[T any, K comparable](list, incoming []T, key func(T) K) []T {
	out := clone(list)
	index := make(map[K]int, len(out)+len(incoming))
	for i, item := range out {
		index[key(item)] = i
	}
	for _, item := range incoming {
		k := key(item)
		if i, ok := index[k]; ok {
			out[i] = item
			continue
		}
		index[k] = len(out)
		out = append(out, item)
	}
	return out
}

// Dedupe keeps the first element of each key.
func Dedupe[T any, K comparable](list []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(list))
	out := make([]T, 0, len(list))
	for _, item := range list {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Remove drops every element with key k.
func Remove[T any, K comparable](list []T, k K, key func(T) K) []T {
	out := make([]T, 0, len(list))
	for _, item := range list {
		if key(item) != k {
			out = append(out, item)
		}
	}
	return out
}

// Find returns the index of the element with key k, or -1.
func Find[T any, K comparable](list []T, k K, key func(T) K) int {
	for i, item := range list {
		if key(item) == k {
			return i
		}
	}
	return -1
}

// Sorted returns a stable-sorted copy of list.
func Sorted[T any](list []T, less func(a, b T) bool) []T {
	out := clone(list)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Descending flips a sort key comparison: newer/larger first.
func Descending[T any, O cmp.Ordered](field func(T) O) func(a, b T) bool {
	return func(a, b T) bool { return field(a) > field(b) }
}

// Ascending orders by field, smallest first.
func Ascending[T any, O cmp.Ordered](field func(T) O) func(a, b T) bool {
	return func(a, b T) bool { return field(a) < field(b) }
}

func clone[T any](list []T) []T {
	out := make([]T, len(list), len(list)+1)
	copy(out, list)
	return out
}
