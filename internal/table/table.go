// Package table implements the open-addressing hash table that backs both
// the VM's globals map and the heap's string intern set.
package table

import (
	"ochre/internal/object"
	"ochre/internal/value"
)

const (
	minCapacity = 8
	maxLoad     = 0.75
)

type entry struct {
	key   *object.StringObj
	value value.Value
	used  bool // false means either empty or tombstone
	tomb  bool
}

// Table is an open-addressing hash table keyed by interned *StringObj
// pointers (so key comparison is pointer equality), linearly probed, with
// tombstones left behind on delete so probe sequences past a deleted slot
// keep working.
type Table struct {
	entries []entry
	count   int // live entries plus tombstones; Delete does not decrement it, grow resets it to the live count
}

func New() *Table {
	return &Table{}
}

// Set inserts or overwrites key -> val. Returns true if this created a new
// key (as opposed to overwriting an existing one).
func (t *Table) Set(key *object.StringObj, val value.Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoad {
		t.grow()
	}
	e := t.findSlot(key)
	isNew := !e.used
	if isNew && !e.tomb {
		t.count++
	}
	e.key = key
	e.value = val
	e.used = true
	e.tomb = false
	return isNew
}

func (t *Table) Get(key *object.StringObj) (value.Value, bool) {
	if len(t.entries) == 0 {
		return value.NilValue(), false
	}
	e := t.find(key)
	if e == nil {
		return value.NilValue(), false
	}
	return e.value, true
}

// Delete removes key, leaving a tombstone behind. Returns whether the key
// was present.
func (t *Table) Delete(key *object.StringObj) bool {
	if len(t.entries) == 0 {
		return false
	}
	e := t.find(key)
	if e == nil {
		return false
	}
	e.key = nil
	e.used = false
	e.tomb = true
	return true
}

// find returns the live entry for key, or nil if absent.
func (t *Table) find(key *object.StringObj) *entry {
	cap := len(t.entries)
	idx := int(key.Hash) % cap
	for {
		e := &t.entries[idx]
		if !e.used && !e.tomb {
			return nil
		}
		if e.used && e.key == key {
			return e
		}
		idx = (idx + 1) % cap
	}
}

// findSlot returns the slot key should occupy: an existing live slot for
// key, the first tombstone seen along the probe sequence, or the first
// truly empty slot.
func (t *Table) findSlot(key *object.StringObj) *entry {
	cap := len(t.entries)
	idx := int(key.Hash) % cap
	var tombstone *entry
	for {
		e := &t.entries[idx]
		if !e.used {
			if !e.tomb {
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			if tombstone == nil {
				tombstone = e
			}
		} else if e.key == key {
			return e
		}
		idx = (idx + 1) % cap
	}
}

// FindString probes by byte content and hash rather than by pointer. It is
// used only by the intern set, to discover whether a byte sequence already
// has a canonical StringObj before allocating a new one.
func (t *Table) FindString(chars string, hash uint32) *object.StringObj {
	if len(t.entries) == 0 {
		return nil
	}
	cap := len(t.entries)
	idx := int(hash) % cap
	for {
		e := &t.entries[idx]
		if !e.used && !e.tomb {
			return nil
		}
		if e.used && e.key.Hash == hash && e.key.Chars == chars {
			return e.key
		}
		idx = (idx + 1) % cap
	}
}

func (t *Table) grow() {
	newCap := len(t.entries) * 2
	if newCap < minCapacity {
		newCap = minCapacity
	}
	old := t.entries
	t.entries = make([]entry, newCap)
	t.count = 0
	for _, e := range old {
		if e.used {
			t.Set(e.key, e.value)
		}
	}
}

// Count returns the number of occupied slots used for the load-factor
// check: live entries plus any tombstones left since the last growth.
func (t *Table) Count() int { return t.count }
