package value

import (
	"fmt"
	"math/big"

	"github.com/ipfs/go-cid"
)

// FromNative converts a tree of ordinary Go values into a Value. It accepts
// nil, bool, string, []byte, all integer and float types, big.Int, cid.Cid,
// []any, map[string]any, and Value itself (returned unchanged).
//
// Go maps have no iteration order, so map entries are sorted into the
// canonical key order during conversion to keep the result deterministic.
func FromNative(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return NewBool(t), nil
	case string:
		return NewText(t), nil
	case []byte:
		return NewBytes(t), nil
	case int:
		return NewInt(int64(t)), nil
	case int8:
		return NewInt(int64(t)), nil
	case int16:
		return NewInt(int64(t)), nil
	case int32:
		return NewInt(int64(t)), nil
	case int64:
		return NewInt(t), nil
	case uint:
		return NewUint(uint64(t)), nil
	case uint8:
		return NewUint(uint64(t)), nil
	case uint16:
		return NewUint(uint64(t)), nil
	case uint32:
		return NewUint(uint64(t)), nil
	case uint64:
		return NewUint(t), nil
	case float32:
		return NewFloat(float64(t)), nil
	case float64:
		return NewFloat(t), nil
	case big.Int:
		return NewBigInt(&t)
	case *big.Int:
		return NewBigInt(t)
	case cid.Cid:
		return NewCid(t), nil
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			v, err := FromNative(e)
			if err != nil {
				return Value{}, err
			}
			elems[i] = v
		}
		return Value{kind: KindArray, array: elems}, nil
	case map[string]any:
		entries := make([]Entry, 0, len(t))
		for k, e := range t {
			v, err := FromNative(e)
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, Entry{Key: k, Value: v})
		}
		return Value{kind: KindMap, entries: SortEntries(entries)}, nil
	default:
		return Value{}, fmt.Errorf("value: cannot convert Go type %T", x)
	}
}

// Native converts the value back into a tree of ordinary Go values: nil,
// bool, int64 (uint64 or *big.Int when int64 cannot hold the integer),
// float64, string, []byte, cid.Cid, []any, and map[string]any.
//
// Map entry order is lost in the conversion; use Map to observe it.
func (v Value) Native() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.num == 1
	case KindInt:
		if i, ok := v.Int(); ok {
			return i
		}
		if u, ok := v.Uint(); ok {
			return u
		}
		i, _ := v.BigInt()
		return i
	case KindFloat:
		f, _ := v.Float()
		return f
	case KindText:
		return v.str
	case KindBytes:
		b, _ := v.Bytes()
		return b
	case KindArray:
		arr := make([]any, len(v.array))
		for i, e := range v.array {
			arr[i] = e.Native()
		}
		return arr
	case KindMap:
		m := make(map[string]any, len(v.entries))
		for _, e := range v.entries {
			m[e.Key] = e.Value.Native()
		}
		return m
	case KindCid:
		return v.cid
	default:
		return nil
	}
}
