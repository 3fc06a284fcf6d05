package path

import (
	"errors"
	"math/big"

	"github.com/ipfs/go-cid"

	"github.com/hyphacoop/go-dagcbor/value"
)

// ErrNotFound is returned by the typed accessors when the path resolves to
// nothing and missing values are not allowed.
var ErrNotFound = errors.New("path: value not found")

// TypeMismatchError is returned by the typed accessors when the path
// resolves to a value of the wrong kind, including a null where a
// non-nullable accessor was used and an integer outside the requested
// numeric range.
type TypeMismatchError struct {
	Path string
	Want string
	Got  value.Kind
}

func (e *TypeMismatchError) Error() string {
	return "path: " + e.Path + ": want " + e.Want + ", got " + e.Got.String()
}

// IsNull reports whether the value at the path is null. An absent value
// counts as null only when allowMissing is set.
func IsNull(v value.Value, path string, allowMissing bool) bool {
	res, ok := Get(v, path)
	if !ok {
		return allowMissing
	}
	return res.IsNull()
}

// getNullable resolves the path and applies a kind conversion. The pointer
// result is nil for a null value, and for an absent one when allowMissing
// is set.
func getNullable[T any](v value.Value, path string, allowMissing bool, want string, conv func(value.Value) (T, bool)) (*T, error) {
	res, ok := Get(v, path)
	if !ok {
		if allowMissing {
			return nil, nil
		}
		return nil, ErrNotFound
	}
	if res.IsNull() {
		return nil, nil
	}
	t, ok := conv(res)
	if !ok {
		return nil, &TypeMismatchError{Path: path, Want: want, Got: res.Kind()}
	}
	return &t, nil
}

// get is the non-nullable variant: absent is ErrNotFound and null is a
// type mismatch.
func get[T any](v value.Value, path string, want string, conv func(value.Value) (T, bool)) (T, error) {
	ptr, err := getNullable(v, path, false, want, conv)
	if err != nil {
		var zero T
		return zero, err
	}
	if ptr == nil {
		var zero T
		return zero, &TypeMismatchError{Path: path, Want: want, Got: value.KindNull}
	}
	return *ptr, nil
}

func convNat(v value.Value) (uint64, bool)   { return v.Uint() }
func convInt(v value.Value) (int64, bool)    { return v.Int() }
func convBool(v value.Value) (bool, bool)    { return v.Bool() }
func convText(v value.Value) (string, bool)  { return v.Text() }
func convBytes(v value.Value) ([]byte, bool) { return v.Bytes() }

func convFloat(v value.Value) (float64, bool) {
	if f, ok := v.Float(); ok {
		return f, true
	}
	// Integers widen to float64, possibly losing precision beyond 2^53.
	if bi, ok := v.BigInt(); ok {
		f, _ := new(big.Float).SetInt(bi).Float64()
		return f, true
	}
	return 0, false
}

func convArray(v value.Value) ([]value.Value, bool) { return v.Array() }
func convMap(v value.Value) ([]value.Entry, bool)   { return v.Map() }
func convCid(v value.Value) (cid.Cid, bool)         { return v.Cid() }

// GetNat returns the non-negative integer at the path. Negative integers
// are a type mismatch, not a separate error.
func GetNat(v value.Value, path string) (uint64, error) {
	return get(v, path, "nat", convNat)
}

// GetInt returns the integer at the path. Integers outside the int64 range
// are a type mismatch.
func GetInt(v value.Value, path string) (int64, error) {
	return get(v, path, "int", convInt)
}

// GetFloat returns the float at the path. Integers are accepted and widen
// to float64.
func GetFloat(v value.Value, path string) (float64, error) {
	return get(v, path, "float", convFloat)
}

// GetBool returns the boolean at the path.
func GetBool(v value.Value, path string) (bool, error) {
	return get(v, path, "bool", convBool)
}

// GetText returns the text string at the path.
func GetText(v value.Value, path string) (string, error) {
	return get(v, path, "text", convText)
}

// GetBytes returns the byte string at the path.
func GetBytes(v value.Value, path string) ([]byte, error) {
	return get(v, path, "bytes", convBytes)
}

// GetArray returns the elements of the array at the path.
func GetArray(v value.Value, path string) ([]value.Value, error) {
	return get(v, path, "array", convArray)
}

// GetMap returns the entries of the map at the path.
func GetMap(v value.Value, path string) ([]value.Entry, error) {
	return get(v, path, "map", convMap)
}

// GetCid returns the CID at the path.
func GetCid(v value.Value, path string) (cid.Cid, error) {
	return get(v, path, "cid", convCid)
}

// GetNullableNat is GetNat with null allowed: a null value, or an absent
// one when allowMissing is set, returns a nil pointer and no error.
func GetNullableNat(v value.Value, path string, allowMissing bool) (*uint64, error) {
	return getNullable(v, path, allowMissing, "nat", convNat)
}

// GetNullableInt is GetInt with null allowed.
func GetNullableInt(v value.Value, path string, allowMissing bool) (*int64, error) {
	return getNullable(v, path, allowMissing, "int", convInt)
}

// GetNullableFloat is GetFloat with null allowed.
func GetNullableFloat(v value.Value, path string, allowMissing bool) (*float64, error) {
	return getNullable(v, path, allowMissing, "float", convFloat)
}

// GetNullableBool is GetBool with null allowed.
func GetNullableBool(v value.Value, path string, allowMissing bool) (*bool, error) {
	return getNullable(v, path, allowMissing, "bool", convBool)
}

// GetNullableText is GetText with null allowed.
func GetNullableText(v value.Value, path string, allowMissing bool) (*string, error) {
	return getNullable(v, path, allowMissing, "text", convText)
}

// GetNullableBytes is GetBytes with null allowed.
func GetNullableBytes(v value.Value, path string, allowMissing bool) (*[]byte, error) {
	return getNullable(v, path, allowMissing, "bytes", convBytes)
}

// GetNullableArray is GetArray with null allowed.
func GetNullableArray(v value.Value, path string, allowMissing bool) (*[]value.Value, error) {
	return getNullable(v, path, allowMissing, "array", convArray)
}

// GetNullableMap is GetMap with null allowed.
func GetNullableMap(v value.Value, path string, allowMissing bool) (*[]value.Entry, error) {
	return getNullable(v, path, allowMissing, "map", convMap)
}

// GetNullableCid is GetCid with null allowed.
func GetNullableCid(v value.Value, path string, allowMissing bool) (*cid.Cid, error) {
	return getNullable(v, path, allowMissing, "cid", convCid)
}
