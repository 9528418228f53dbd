package graphics

import (
	"fmt"

	"github.com/dcore-engine/dcore/debug"
)

// Table is an append-only list of fixed-length entries addressed by the
// index Add returned. Entries are owned independently, so adding one never
// moves another.
type Table[T any] struct {
	log     *debug.Log
	name    string
	entries [][]T
}

func NewTable[T any](log *debug.Log, name string) *Table[T] {
	return &Table[T]{log: log, name: name}
}

// Add appends an entry of exactly n zero values and returns its index along
// with the entry itself for the caller to fill in.
func (t *Table[T]) Add(n int) (int, []T) {
	t.log.Assert(n >= 0, "n >= 0", fmt.Sprintf("Negative entry size for %s table", t.name))
	if n == 0 {
		t.log.Warn("Adding empty entry", "table", t.name)
	}

	entry := make([]T, n)
	t.entries = append(t.entries, entry)
	return len(t.entries) - 1, entry
}

// AddValues appends a copy of values as a new entry.
func (t *Table[T]) AddValues(values ...T) int {
	index, entry := t.Add(len(values))
	copy(entry, values)
	return index
}

// Get returns a copy of entry i. An index out of range is a programming
// error and fails an assertion.
func (t *Table[T]) Get(i int) []T {
	t.log.Assert(i >= 0 && i < len(t.entries), "i < entryCount",
		fmt.Sprintf("%s table index %d out of range (%d entries)", t.name, i, len(t.entries)))

	entry := make([]T, len(t.entries[i]))
	copy(entry, t.entries[i])
	return entry
}

// Len returns the number of entries.
func (t *Table[T]) Len() int { return len(t.entries) }

// Each calls fn for every entry in index order.
func (t *Table[T]) Each(fn func(index int, entry []T)) {
	for i, entry := range t.entries {
		fn(i, entry)
	}
}
