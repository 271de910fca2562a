// Package memory holds in-process implementations of the dashboard stores.
// They keep the same contracts as the sqlite repositories and are used by
// tests and by STORE_DRIVER=memory.
package memory

import "sync"

// table is an insertion-ordered collection of rows of one record type.
type table[T any] struct {
	mu   sync.RWMutex
	rows []T
}

func (t *table[T]) selectWhere(match func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := []T{}
	for _, row := range t.rows {
		if match == nil || match(row) {
			out = append(out, row)
		}
	}
	return out
}

func (t *table[T]) first(match func(T) bool) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, row := range t.rows {
		if match(row) {
			return row, true
		}
	}
	var zero T
	return zero, false
}

func (t *table[T]) insert(rows ...T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, rows...)
}

func (t *table[T]) update(match func(T) bool, apply func(*T)) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for i := range t.rows {
		if match(t.rows[i]) {
			apply(&t.rows[i])
			n++
		}
	}
	return n
}

func (t *table[T]) deleteWhere(match func(T) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deleteLocked(match)
}

func (t *table[T]) deleteLocked(match func(T) bool) int {
	kept := t.rows[:0]
	n := 0
	for _, row := range t.rows {
		if match(row) {
			n++
			continue
		}
		kept = append(kept, row)
	}
	clear(t.rows[len(kept):])
	t.rows = kept
	return n
}
