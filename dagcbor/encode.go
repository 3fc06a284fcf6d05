package dagcbor

import (
	"bytes"
	"math"

	"github.com/fxamacker/cbor/v2"

	"github.com/hyphacoop/go-dagcbor/value"
)

type encMode struct {
	em        cbor.EncMode
	bem       cbor.UserBufferEncMode
	int64Only bool
}

func (m *encMode) Marshal(v value.Value) ([]byte, error) {
	tree, err := m.ToCBOR(v)
	if err != nil {
		return nil, err
	}
	b, err := m.em.Marshal(tree)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	return b, nil
}

func (m *encMode) MarshalToBuffer(v value.Value, buf *bytes.Buffer) error {
	tree, err := m.ToCBOR(v)
	if err != nil {
		return err
	}
	if err := m.bem.MarshalToBuffer(tree, buf); err != nil {
		return &EncodingError{Err: err}
	}
	return nil
}

// ToCBOR is the DAG-to-CBOR mapper: a structural recursion over the value
// tree. Errors propagate from the first failing subterm, depth first.
func (m *encMode) ToCBOR(v value.Value) (any, error) {
	switch v.Kind() {
	case value.KindNull:
		return nil, nil
	case value.KindBool:
		b, _ := v.Bool()
		return b, nil
	case value.KindInt:
		return m.intToCBOR(v)
	case value.KindFloat:
		f, _ := v.Float()
		if math.IsNaN(f) {
			return nil, &InvalidValueError{Reason: "float is NaN"}
		}
		if math.IsInf(f, 0) {
			return nil, &InvalidValueError{Reason: "float is infinite"}
		}
		return f, nil
	case value.KindText:
		s, _ := v.Text()
		return s, nil
	case value.KindBytes:
		b, _ := v.Bytes()
		return b, nil
	case value.KindArray:
		elems, _ := v.Array()
		out := make([]any, len(elems))
		for i, e := range elems {
			ev, err := m.ToCBOR(e)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case value.KindMap:
		entries, _ := v.Map()
		sorted := value.SortEntries(entries)
		if key, dup := value.DuplicateKey(sorted); dup {
			return nil, &InvalidMapKeyError{Key: key, Reason: "duplicate map key"}
		}
		out := make(map[string]any, len(sorted))
		for _, e := range sorted {
			ev, err := m.ToCBOR(e.Value)
			if err != nil {
				return nil, err
			}
			out[e.Key] = ev
		}
		return out, nil
	case value.KindCid:
		c, _ := v.Cid()
		return encodeCid(c)
	default:
		return nil, &InvalidValueError{Reason: "unknown value kind"}
	}
}

func (m *encMode) intToCBOR(v value.Value) (any, error) {
	if u, ok := v.Uint(); ok {
		if m.int64Only && u > math.MaxInt64 {
			return nil, &InvalidValueError{Reason: "integer above 2^63-1 with Int64RangeOnly set"}
		}
		return u, nil
	}
	if i, ok := v.Int(); ok {
		return i, nil
	}
	// A negative integer below int64. The CBOR library encodes big.Int in
	// this range as plain major type 1.
	if m.int64Only {
		return nil, &InvalidValueError{Reason: "integer below -2^63 with Int64RangeOnly set"}
	}
	bi, _ := v.BigInt()
	return bi, nil
}
