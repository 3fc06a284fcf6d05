package dagcbor

import (
	"bytes"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/hyphacoop/go-dagcbor/value"
)

type decMode struct {
	dm        cbor.DecMode
	int64Only bool

	// canonicalEnc re-encodes decoded values for the RequireCanonical byte
	// comparison. nil when the mode is lenient.
	canonicalEnc EncMode
}

func (m *decMode) Unmarshal(data []byte) (value.Value, error) {
	var raw any
	if err := m.dm.Unmarshal(data, &raw); err != nil {
		return value.Value{}, translateDecodeError(err)
	}
	v, err := m.FromCBOR(raw)
	if err != nil {
		return value.Value{}, err
	}
	if err := m.checkCanonical(v, data); err != nil {
		return value.Value{}, err
	}
	return v, nil
}

func (m *decMode) UnmarshalFirst(data []byte) (value.Value, []byte, error) {
	var raw any
	rest, err := m.dm.UnmarshalFirst(data, &raw)
	if err != nil {
		return value.Value{}, nil, translateDecodeError(err)
	}
	v, err := m.FromCBOR(raw)
	if err != nil {
		return value.Value{}, nil, err
	}
	if err := m.checkCanonical(v, data[:len(data)-len(rest)]); err != nil {
		return value.Value{}, nil, err
	}
	return v, rest, nil
}

func (m *decMode) checkCanonical(v value.Value, item []byte) error {
	if m.canonicalEnc == nil {
		return nil
	}
	reencoded, err := m.canonicalEnc.Marshal(v)
	if err != nil {
		return err
	}
	if !bytes.Equal(reencoded, item) {
		return ErrNotCanonical
	}
	return nil
}

// FromCBOR is the CBOR-to-DAG mapper: a structural recursion over the
// generic tree the CBOR library produces. Maps come out sorted into the
// canonical key order regardless of the order they arrived in.
func (m *decMode) FromCBOR(x any) (value.Value, error) {
	switch t := x.(type) {
	case nil:
		return value.Null(), nil
	case bool:
		return value.NewBool(t), nil
	case uint64:
		if m.int64Only && t > math.MaxInt64 {
			return value.Value{}, &IntegerRangeError{Reason: fmt.Sprintf("%d above 2^63-1 with Int64RangeOnly set", t)}
		}
		return value.NewUint(t), nil
	case int64:
		return value.NewInt(t), nil
	case big.Int:
		return m.bigIntFromCBOR(&t)
	case *big.Int:
		return m.bigIntFromCBOR(t)
	case float64:
		return m.floatFromCBOR(t)
	case float32:
		return m.floatFromCBOR(float64(t))
	case string:
		return value.NewText(t), nil
	case []byte:
		return value.NewBytes(t), nil
	case []any:
		elems := make([]value.Value, len(t))
		for i, e := range t {
			ev, err := m.FromCBOR(e)
			if err != nil {
				return value.Value{}, err
			}
			elems[i] = ev
		}
		return value.NewArray(elems...), nil
	case map[any]any:
		entries := make([]value.Entry, 0, len(t))
		for k, e := range t {
			key, err := mapKey(k)
			if err != nil {
				return value.Value{}, err
			}
			ev, err := m.FromCBOR(e)
			if err != nil {
				return value.Value{}, err
			}
			entries = append(entries, value.Entry{Key: key, Value: ev})
		}
		return m.mapFromEntries(entries)
	case map[string]any:
		entries := make([]value.Entry, 0, len(t))
		for k, e := range t {
			ev, err := m.FromCBOR(e)
			if err != nil {
				return value.Value{}, err
			}
			entries = append(entries, value.Entry{Key: k, Value: ev})
		}
		return m.mapFromEntries(entries)
	case cbor.Tag:
		if t.Number != CidTagNumber {
			return value.Value{}, &InvalidTagError{Number: t.Number}
		}
		c, err := decodeCid(t.Content)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewCid(c), nil
	case time.Time:
		// The CBOR library converts tags 0 and 1 into time.Time before the
		// mapper sees the tag number.
		return value.Value{}, &InvalidTagError{Number: 0}
	case cbor.SimpleValue:
		return value.Value{}, &UnsupportedPrimitiveError{Reason: fmt.Sprintf("simple value %d", uint8(t))}
	default:
		return value.Value{}, &UnsupportedPrimitiveError{Reason: fmt.Sprintf("unsupported CBOR shape %T", x)}
	}
}

func (m *decMode) bigIntFromCBOR(i *big.Int) (value.Value, error) {
	if m.int64Only && !i.IsInt64() {
		return value.Value{}, &IntegerRangeError{Reason: i.String() + " outside int64 with Int64RangeOnly set"}
	}
	v, err := value.NewBigInt(i)
	if err != nil {
		return value.Value{}, &IntegerRangeError{Reason: i.String()}
	}
	return v, nil
}

func (m *decMode) floatFromCBOR(f float64) (value.Value, error) {
	if math.IsNaN(f) {
		return value.Value{}, &FloatConversionError{Reason: "float is NaN"}
	}
	if math.IsInf(f, 0) {
		return value.Value{}, &FloatConversionError{Reason: "float is infinite"}
	}
	return value.NewFloat(f), nil
}

func (m *decMode) mapFromEntries(entries []value.Entry) (value.Value, error) {
	sorted := value.SortEntries(entries)
	if key, dup := value.DuplicateKey(sorted); dup {
		return value.Value{}, &InvalidMapKeyError{Key: key, Reason: "duplicate map key"}
	}
	return value.NewMap(sorted), nil
}

func mapKey(k any) (string, error) {
	switch t := k.(type) {
	case string:
		return t, nil
	case cbor.ByteString:
		return "", &InvalidMapKeyError{Reason: "byte-string map key"}
	default:
		return "", &InvalidMapKeyError{Reason: fmt.Sprintf("non-text map key of type %T", k)}
	}
}
