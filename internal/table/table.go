// Package table implements the open-addressed hash table spec.md §4.5
// describes: linear probing, tombstones, power-of-two capacity, 0.75
// load factor. It backs the VM's globals table and the string-intern
// table.
package table

import (
	"golang.org/x/exp/slices"

	"github.com/emberlang/ember/internal/value"
)

const maxLoad = 0.75

type entry struct {
	key     value.Value // Undefined key marks "empty" or "tombstone"
	val     value.Value
	present bool // false + key undefined + val==true distinguishes tombstone from empty
}

// Table is keyed by value.Value (spec.md §4.5). Equality/hash come from
// value.Equal/value.Hash32, so String keys rely on interning for O(1)
// bucket convergence exactly as the spec intends.
type Table struct {
	entries []entry
	count   int // live entries + tombstones, used against capacity for load factor
	live    int
}

func New() *Table {
	return &Table{}
}

func (t *Table) Len() int { return t.live }

func isEmptySlot(e entry) bool {
	return !e.present && e.key.IsUndefined() && e.val.IsNil()
}

func isTombstone(e entry) bool {
	return !e.present && e.key.IsUndefined() && e.val.IsBool() && e.val.AsBool()
}

func (t *Table) ensureCapacity() {
	if len(t.entries) == 0 {
		t.grow(8)
		return
	}
	if float64(t.count+1) > float64(len(t.entries))*maxLoad {
		t.grow(len(t.entries) * 2)
	}
}

func (t *Table) grow(newCap int) {
	old := t.entries
	t.entries = make([]entry, newCap)
	t.count = 0
	t.live = 0
	for _, e := range old {
		if e.present {
			t.insert(e.key, e.val)
		}
	}
}

// findSlot locates key's slot (existing or the first tombstone/empty
// seen), using `index & mask` probing since capacity is always a power
// of two (spec.md §4.5).
func (t *Table) findSlot(key value.Value) int {
	mask := uint32(len(t.entries) - 1)
	index := value.Hash32(key) & mask
	var tombstone = -1
	for {
		e := t.entries[index]
		if isEmptySlot(e) {
			if tombstone != -1 {
				return tombstone
			}
			return int(index)
		}
		if isTombstone(e) {
			if tombstone == -1 {
				tombstone = int(index)
			}
		} else if value.Equal(e.key, key) {
			return int(index)
		}
		index = (index + 1) & mask
	}
}

func (t *Table) insert(key, val value.Value) bool {
	idx := t.findSlot(key)
	isNew := !t.entries[idx].present
	if isNew && isEmptySlot(t.entries[idx]) {
		t.count++
	}
	t.entries[idx] = entry{key: key, val: val, present: true}
	if isNew {
		t.live++
	}
	return isNew
}

// Get returns the value for key, if present.
func (t *Table) Get(key value.Value) (value.Value, bool) {
	if len(t.entries) == 0 {
		return value.Value{}, false
	}
	idx := t.findSlot(key)
	e := t.entries[idx]
	if !e.present {
		return value.Value{}, false
	}
	return e.val, true
}

// Put inserts or updates key -> val, returning true if key is new.
func (t *Table) Put(key, val value.Value) bool {
	t.ensureCapacity()
	return t.insert(key, val)
}

// Remove deletes key, leaving a tombstone (key=undefined, val=true) so
// later probes don't stop short (spec.md §4.5).
func (t *Table) Remove(key value.Value) bool {
	if len(t.entries) == 0 {
		return false
	}
	idx := t.findSlot(key)
	if !t.entries[idx].present {
		return false
	}
	t.entries[idx] = entry{key: value.UndefinedValue(), val: value.BoolValue(true)}
	t.live--
	return true
}

// PutAll copies every live entry of other into t.
func (t *Table) PutAll(other *Table) {
	for _, e := range other.entries {
		if e.present {
			t.Put(e.key, e.val)
		}
	}
}

// FindString looks up an interned String by its contents and precomputed
// hash, used only by the string-intern table (spec.md §4.5).
func (t *Table) FindString(chars string, hash uint32) *value.String {
	if len(t.entries) == 0 {
		return nil
	}
	mask := uint32(len(t.entries) - 1)
	index := hash & mask
	for {
		e := t.entries[index]
		if isEmptySlot(e) {
			return nil
		}
		if e.present {
			if s, ok := e.key.AsObj().(*value.String); ok && s.Hash() == hash && s.Chars == chars {
				return s
			}
		}
		index = (index + 1) & mask
	}
}

// RemoveWhite drops entries whose key is an unmarked heap object, called
// during GC sweep before objects are actually freed (spec.md §4.5,
// §4.8). marked reports whether an object survived marking.
func (t *Table) RemoveWhite(marked func(value.Object) bool) {
	for i, e := range t.entries {
		if !e.present || !e.key.IsObj() {
			continue
		}
		if !marked(e.key.AsObj()) {
			t.entries[i] = entry{key: value.UndefinedValue(), val: value.BoolValue(true)}
			t.live--
		}
	}
}

// Keys returns live keys in a stable (hash-bucket) order; used by
// diagnostics and by Table-backed globals iteration in tests.
func (t *Table) Keys() []value.Value {
	var out []value.Value
	for _, e := range t.entries {
		if e.present {
			out = append(out, e.key)
		}
	}
	slices.SortFunc(out, func(a, b value.Value) int {
		return int(value.Hash32(a)) - int(value.Hash32(b))
	})
	return out
}
