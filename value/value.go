/*
Package value provides the data model for DAG-CBOR documents.

A Value is an immutable tree covering the nine kinds the DAG-CBOR data model
allows: integers, byte strings, text strings, arrays, maps, links (CIDs),
booleans, null, and 64-bit floats.

Maps are ordered sequences of entries, not hash maps, because entry order is
semantically significant: the codec emits entries in the canonical DAG-CBOR
key order and the decoder produces trees that are already in that order.

https://ipld.io/specs/codecs/dag-cbor/spec/
*/
package value

import (
	"math"
	"math/big"

	"github.com/ipfs/go-cid"
)

// Kind identifies which of the nine DAG-CBOR kinds a Value holds.
type Kind uint8

const (
	// KindNull is the kind of the zero Value.
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindText
	KindBytes
	KindArray
	KindMap
	KindCid
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBytes:
		return "bytes"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindCid:
		return "cid"
	default:
		return "unknown"
	}
}

// Entry is a single key-value pair in a map Value.
type Entry struct {
	Key   string
	Value Value
}

// Value is one node of a DAG-CBOR document tree.
//
// The zero Value is null. Values are immutable once constructed and can be
// shared freely, including across goroutines.
//
// Integers cover the full range encodable in CBOR major types 0 and 1,
// [-2^64, 2^64-1], which is wider than int64. Use Int, Uint, or BigInt
// depending on how much of that range you need to observe.
type Value struct {
	kind Kind

	// num holds the integer magnitude, the float bits, or 1 for true.
	// neg marks a negative integer n stored as the magnitude -1-n.
	num uint64
	neg bool

	str     string
	bytes   []byte
	array   []Value
	entries []Entry
	cid     cid.Cid
}

// NewInt returns an integer Value.
func NewInt(i int64) Value {
	if i >= 0 {
		return Value{kind: KindInt, num: uint64(i)}
	}
	return Value{kind: KindInt, num: uint64(-(i + 1)), neg: true}
}

// NewUint returns an integer Value. It is required for values in
// [2^63, 2^64-1], which int64 cannot represent.
func NewUint(u uint64) Value {
	return Value{kind: KindInt, num: u}
}

// NewBigInt returns an integer Value for any integer in [-2^64, 2^64-1].
// An IntRangeError is returned for anything outside that range.
func NewBigInt(i *big.Int) (Value, error) {
	if i.Sign() >= 0 {
		if !i.IsUint64() {
			return Value{}, &IntRangeError{i.String()}
		}
		return Value{kind: KindInt, num: i.Uint64()}, nil
	}
	// Negative n is stored as the magnitude -1-n, matching CBOR major type 1.
	var mag big.Int
	mag.Neg(i)
	mag.Sub(&mag, big.NewInt(1))
	if !mag.IsUint64() {
		return Value{}, &IntRangeError{i.String()}
	}
	return Value{kind: KindInt, num: mag.Uint64(), neg: true}, nil
}

// NewFloat returns a float Value. NaN and infinities are representable here
// but are rejected by the codec when encoding.
func NewFloat(f float64) Value {
	return Value{kind: KindFloat, num: math.Float64bits(f)}
}

// NewText returns a text Value. The string must be valid UTF-8; the codec
// relies on Go strings holding well-formed text and does not re-validate.
func NewText(s string) Value {
	return Value{kind: KindText, str: s}
}

// NewBytes returns a byte-string Value. The input is copied.
func NewBytes(b []byte) Value {
	c := make([]byte, len(b))
	copy(c, b)
	return Value{kind: KindBytes, bytes: c}
}

// NewArray returns an array Value holding the given elements.
// The slice is copied; the elements are shared.
func NewArray(elems ...Value) Value {
	c := make([]Value, len(elems))
	copy(c, elems)
	return Value{kind: KindArray, array: c}
}

// NewMap returns a map Value holding the given entries in the given order.
// Entries need not be sorted and keys need not be unique here; the encoder
// sorts entries into canonical order and rejects duplicates.
func NewMap(entries []Entry) Value {
	c := make([]Entry, len(entries))
	copy(c, entries)
	return Value{kind: KindMap, entries: c}
}

// NewCid returns a link Value wrapping the given CID.
func NewCid(c cid.Cid) Value {
	return Value{kind: KindCid, cid: c}
}

// NewBool returns a boolean Value.
func NewBool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.num = 1
	}
	return v
}

// Null returns the null Value. It is the same as the zero Value.
func Null() Value {
	return Value{}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Bool returns the boolean payload.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.num == 1, true
}

// Int returns the integer payload if it fits in an int64.
func (v Value) Int() (int64, bool) {
	if v.kind != KindInt || v.num > math.MaxInt64 {
		return 0, false
	}
	if v.neg {
		return -1 - int64(v.num), true
	}
	return int64(v.num), true
}

// Uint returns the integer payload if it is non-negative.
func (v Value) Uint() (uint64, bool) {
	if v.kind != KindInt || v.neg {
		return 0, false
	}
	return v.num, true
}

// BigInt returns the integer payload without range restrictions.
func (v Value) BigInt() (*big.Int, bool) {
	if v.kind != KindInt {
		return nil, false
	}
	var i big.Int
	i.SetUint64(v.num)
	if v.neg {
		i.Add(&i, big.NewInt(1))
		i.Neg(&i)
	}
	return &i, true
}

// Float returns the float payload.
func (v Value) Float() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return math.Float64frombits(v.num), true
}

// Text returns the text payload.
func (v Value) Text() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.str, true
}

// Bytes returns a copy of the byte-string payload.
// It is safe to modify.
func (v Value) Bytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	c := make([]byte, len(v.bytes))
	copy(c, v.bytes)
	return c, true
}

// Array returns the elements of an array value.
// The returned slice is a copy; the elements are shared.
func (v Value) Array() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	c := make([]Value, len(v.array))
	copy(c, v.array)
	return c, true
}

// Map returns the entries of a map value in their stored order.
// The returned slice is a copy; the values are shared.
func (v Value) Map() ([]Entry, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	c := make([]Entry, len(v.entries))
	copy(c, v.entries)
	return c, true
}

// Cid returns the link payload.
func (v Value) Cid() (cid.Cid, bool) {
	if v.kind != KindCid {
		return cid.Cid{}, false
	}
	return v.cid, true
}

// Len returns the number of elements of an array, entries of a map, or bytes
// of a byte or text string. It returns 0 for every other kind.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.array)
	case KindMap:
		return len(v.entries)
	case KindBytes:
		return len(v.bytes)
	case KindText:
		return len(v.str)
	default:
		return 0
	}
}

// Lookup returns the value of the first entry with the given key in a map
// value. The second return is false for missing keys and non-map values.
func (v Value) Lookup(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	for _, e := range v.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Index returns the i-th element of an array value. The second return is
// false for out-of-range indices and non-array values.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.array) {
		return Value{}, false
	}
	return v.array[i], true
}

// Equal reports whether two values are structurally identical. Map entry
// order is significant, so two maps holding the same entries in different
// orders are not equal; compare Canonical() forms if order should not matter.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool, KindFloat:
		return v.num == o.num
	case KindInt:
		return v.num == o.num && v.neg == o.neg
	case KindText:
		return v.str == o.str
	case KindBytes:
		if len(v.bytes) != len(o.bytes) {
			return false
		}
		for i := range v.bytes {
			if v.bytes[i] != o.bytes[i] {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.array) != len(o.array) {
			return false
		}
		for i := range v.array {
			if !v.array[i].Equal(o.array[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.entries) != len(o.entries) {
			return false
		}
		for i := range v.entries {
			if v.entries[i].Key != o.entries[i].Key || !v.entries[i].Value.Equal(o.entries[i].Value) {
				return false
			}
		}
		return true
	case KindCid:
		return v.cid.Equals(o.cid)
	default:
		return false
	}
}

// IntRangeError is returned when an integer does not fit the DAG-CBOR range
// [-2^64, 2^64-1].
type IntRangeError struct {
	Text string
}

func (e *IntRangeError) Error() string {
	return "dagcbor: integer out of range [-2^64, 2^64-1]: " + e.Text
}
