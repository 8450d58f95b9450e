// Package table implements the open-addressed hash table used for global
// variables (spec.md §4.3). Keys are interned string Refs compared by
// identity; string interning itself (which must compare by content) is a
// separate structure in package value, since at intern time there is no
// Ref yet to key by.
package table

import "github.com/kristofer/tinybc/pkg/value"

const initialCapacity = 8
const maxLoad = 0.75

type entry struct {
	used      bool
	tombstone bool
	key       value.Ref
	val       value.Value
}

// Table is an open-addressed hash map from interned string Refs to Values,
// using linear probing and tombstone deletion.
type Table struct {
	entries []entry
	count   int // live entries, tombstones not counted
}

// New returns an empty Table.
func New() *Table {
	return &Table{}
}

// Count returns the number of live (non-tombstone) entries.
func (t *Table) Count() int { return t.count }

func hashOf(key value.Ref) uint32 { return uint32(key) }

// Get returns the value stored for key, and whether key is present.
func (t *Table) Get(key value.Ref, arena *value.Arena) (value.Value, bool) {
	idx, found := t.probe(key, arena)
	if !found {
		return value.NilValue, false
	}
	return t.entries[idx].val, true
}

// Set stores val for key, overwriting any existing entry. Returns true if
// this created a brand-new key (spec.md §4.3's DEFINE_GLOBAL/insert case).
func (t *Table) Set(key value.Ref, val value.Value, arena *value.Arena) bool {
	if len(t.entries) == 0 || float64(t.count+1) > float64(len(t.entries))*maxLoad {
		t.grow(arena)
	}
	idx := t.findSlot(key, arena)
	isNew := !t.entries[idx].used
	if isNew {
		t.count++
	}
	t.entries[idx] = entry{used: true, key: key, val: val}
	return isNew
}

// Delete removes key, leaving a tombstone so later probes keep working.
// Returns true if key was present.
func (t *Table) Delete(key value.Ref, arena *value.Arena) bool {
	idx, found := t.probe(key, arena)
	if !found {
		return false
	}
	t.entries[idx] = entry{used: false, tombstone: true}
	t.count--
	return true
}

// probe returns the index of key's entry, if present.
func (t *Table) probe(key value.Ref, arena *value.Arena) (int, bool) {
	if len(t.entries) == 0 {
		return 0, false
	}
	mask := uint32(len(t.entries) - 1)
	idx := hashOf(key) & mask
	for {
		e := &t.entries[idx]
		if !e.used {
			if !e.tombstone {
				return 0, false
			}
		} else if sameKey(e.key, key, arena) {
			return int(idx), true
		}
		idx = (idx + 1) & mask
	}
}

// findSlot returns the index to insert key at: the first tombstone seen,
// or the first truly empty slot if no tombstone was seen, or the slot
// already holding an equal key.
func (t *Table) findSlot(key value.Ref, arena *value.Arena) int {
	mask := uint32(len(t.entries) - 1)
	idx := hashOf(key) & mask
	tombstoneIdx := -1
	for {
		e := &t.entries[idx]
		if !e.used {
			if e.tombstone {
				if tombstoneIdx == -1 {
					tombstoneIdx = int(idx)
				}
			} else {
				if tombstoneIdx != -1 {
					return tombstoneIdx
				}
				return int(idx)
			}
		} else if sameKey(e.key, key, arena) {
			return int(idx)
		}
		idx = (idx + 1) & mask
	}
}

// sameKey compares keys by Ref identity, except arena may be nil in tests
// that only ever use one Ref per distinct string — the identity check
// (key == other) is sufficient and correct for interned strings regardless.
func sameKey(a, b value.Ref, arena *value.Arena) bool {
	_ = arena
	return a == b
}

func (t *Table) grow(arena *value.Arena) {
	newCap := initialCapacity
	if len(t.entries) > 0 {
		newCap = len(t.entries) * 2
	}
	old := t.entries
	t.entries = make([]entry, newCap)
	t.count = 0
	for _, e := range old {
		if e.used {
			t.Set(e.key, e.val, arena)
		}
	}
}
