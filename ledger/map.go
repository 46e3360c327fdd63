package ledger

import (
	"bytes"
	"sort"
)

// MapEntry is one key-value pair of a Map.
type MapEntry struct {
	Key   Value
	Value Value
}

// Map represents an association from values to values, for example token
// balances keyed by address. Entries are held in canonical key order, so a
// Map encodes and compares deterministically regardless of insertion order.
//
// A Map is immutable: With and Without return modified copies and never touch
// the receiver. The zero Map is empty and ready to use.
type Map struct {
	entries []MapEntry
}

func (Map) ledgerValue() {}

// NewMap builds a Map from entries. A later duplicate of a key replaces the
// earlier one, matching literal-style construction.
func NewMap(entries ...MapEntry) Map {
	var m Map
	for _, e := range entries {
		m = m.With(e.Key, e.Value)
	}
	return m
}

// Len returns the number of entries.
func (m Map) Len() int {
	return len(m.entries)
}

// Entries returns the entries in canonical key order. Callers must not
// modify the returned slice.
func (m Map) Entries() []MapEntry {
	return m.entries
}

// Get looks up the value stored under key.
func (m Map) Get(key Value) (Value, bool) {
	i, found := m.search(key)
	if !found {
		return nil, false
	}
	return m.entries[i].Value, true
}

// With returns a copy of m with key bound to value.
func (m Map) With(key, value Value) Map {
	i, found := m.search(key)
	if found {
		out := make([]MapEntry, len(m.entries))
		copy(out, m.entries)
		out[i] = MapEntry{Key: key, Value: value}
		return Map{entries: out}
	}
	out := make([]MapEntry, len(m.entries)+1)
	copy(out, m.entries[:i])
	out[i] = MapEntry{Key: key, Value: value}
	copy(out[i+1:], m.entries[i:])
	return Map{entries: out}
}

// Without returns a copy of m with key absent. Removing an absent key
// returns m unchanged.
func (m Map) Without(key Value) Map {
	i, found := m.search(key)
	if !found {
		return m
	}
	out := make([]MapEntry, 0, len(m.entries)-1)
	out = append(out, m.entries[:i]...)
	out = append(out, m.entries[i+1:]...)
	return Map{entries: out}
}

// search locates key in canonical order. found reports an exact match; i is
// the match index or the insertion point.
func (m Map) search(key Value) (i int, found bool) {
	enc := Encode(key)
	i = sort.Search(len(m.entries), func(j int) bool {
		return bytes.Compare(Encode(m.entries[j].Key), enc) >= 0
	})
	found = i < len(m.entries) && bytes.Equal(Encode(m.entries[i].Key), enc)
	return i, found
}
