package value

import (
	"slices"
	"strings"
)

// CompareKeys compares two map keys in the DAG-CBOR canonical order:
// shorter UTF-8 encodings sort first, ties break bytewise. It returns a
// negative number, zero, or a positive number as a sorts before, equal to,
// or after b.
//
// The order is total over distinct strings, so "z" < "aa" and "A" < "a".
func CompareKeys(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// SortEntries returns a copy of entries sorted by CompareKeys over their
// keys. The sort is stable, so entries with duplicate keys keep their
// relative order for later duplicate reporting.
func SortEntries(entries []Entry) []Entry {
	c := make([]Entry, len(entries))
	copy(c, entries)
	slices.SortStableFunc(c, func(a, b Entry) int {
		return CompareKeys(a.Key, b.Key)
	})
	return c
}

// DuplicateKey scans sorted entries for adjacent equal keys and returns the
// first duplicate found.
func DuplicateKey(sorted []Entry) (string, bool) {
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Key == sorted[i-1].Key {
			return sorted[i].Key, true
		}
	}
	return "", false
}

// Canonical returns a copy of the value with every map's entries recursively
// sorted into the canonical key order. Values produced by the decoder are
// already canonical; values built by hand may not be.
func (v Value) Canonical() Value {
	switch v.kind {
	case KindArray:
		arr := make([]Value, len(v.array))
		for i, e := range v.array {
			arr[i] = e.Canonical()
		}
		return Value{kind: KindArray, array: arr}
	case KindMap:
		entries := SortEntries(v.entries)
		for i := range entries {
			entries[i].Value = entries[i].Value.Canonical()
		}
		return Value{kind: KindMap, entries: entries}
	default:
		return v
	}
}
