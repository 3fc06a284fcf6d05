/*
Package dagcbor encodes and decodes DAG-CBOR, the deterministic IPLD profile
of CBOR (RFC 8949) used by content-addressed systems.

The package works on value.Value trees. Encoding sorts map entries into the
canonical key order (length first, then bytewise) and rejects anything the
profile forbids: duplicate map keys, NaN and infinite floats, integers
outside [-2^64, 2^64-1], and undefined CIDs. Decoding rejects indefinite
lengths, tags other than 42, non-text map keys, and simple values other than
true, false, and null, and always produces trees whose maps are already in
canonical order.

https://ipld.io/specs/codecs/dag-cbor/spec/
*/
package dagcbor

import (
	"bytes"

	"github.com/fxamacker/cbor/v2"

	"github.com/hyphacoop/go-dagcbor/value"
)

var (
	defaultEncMode EncMode
	defaultDecMode DecMode
	svr            *cbor.SimpleValueRegistry
)

func init() {
	var err error
	// true, false, and null stay mapped to their Go values; undefined is
	// rejected outright instead of silently collapsing into nil.
	svr, err = cbor.NewSimpleValueRegistryFromDefaults(
		cbor.WithRejectedSimpleValue(cbor.SimpleValue(23)),
	)
	if err != nil {
		panic(err)
	}
	defaultEncMode, err = EncOptions{}.EncMode()
	if err != nil {
		panic(err)
	}
	defaultDecMode, err = DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Marshal returns the DAG-CBOR encoding of v using default encoding options.
// The input value is never mutated; maps are sorted on the way out.
func Marshal(v value.Value) ([]byte, error) {
	return defaultEncMode.Marshal(v)
}

// MarshalToBuffer appends the DAG-CBOR encoding of v to buf using default
// encoding options.
func MarshalToBuffer(v value.Value, buf *bytes.Buffer) error {
	return defaultEncMode.MarshalToBuffer(v, buf)
}

// ToCBOR translates v into a generic CBOR tree using default encoding
// options, enforcing every DAG-CBOR restriction on the way. The shapes in
// the returned tree are the ones the underlying CBOR library encodes
// natively: bool, uint64, int64, *big.Int, float64, string, []byte, []any,
// map[string]any, cbor.Tag, and nil.
func ToCBOR(v value.Value) (any, error) {
	return defaultEncMode.ToCBOR(v)
}

// Unmarshal parses a single complete DAG-CBOR item from data using default
// decoding options. Trailing bytes after the item are an error; use
// UnmarshalFirst to consume items from a longer stream.
func Unmarshal(data []byte) (value.Value, error) {
	return defaultDecMode.Unmarshal(data)
}

// UnmarshalFirst parses the first complete DAG-CBOR item from data using
// default decoding options and returns the remaining bytes.
func UnmarshalFirst(data []byte) (value.Value, []byte, error) {
	return defaultDecMode.UnmarshalFirst(data)
}

// FromCBOR translates a generic CBOR tree into a Value using default
// decoding options, rejecting every construct DAG-CBOR forbids.
func FromCBOR(x any) (value.Value, error) {
	return defaultDecMode.FromCBOR(x)
}

// EncOptions specifies encoding options.
type EncOptions struct {
	// Int64RangeOnly reduces the range of valid integers when encoding to
	// the range supported by the int64 type: [-(2^63), 2^63-1]. The default
	// accepts the full range CBOR major types 0 and 1 can carry,
	// [-(2^64), 2^64-1].
	Int64RangeOnly bool
}

// EncMode is the main interface for encoding.
type EncMode interface {
	Marshal(v value.Value) ([]byte, error)
	MarshalToBuffer(v value.Value, buf *bytes.Buffer) error
	ToCBOR(v value.Value) (any, error)
}

// EncMode returns an EncMode to encode with the given options.
func (opts EncOptions) EncMode() (EncMode, error) {
	eo := cbor.EncOptions{
		// Map entries are emitted length-first then bytewise, the DAG-CBOR
		// canonical order. The mapper hands over unique keys only, so this
		// matches the order value.CompareKeys defines.
		Sort: cbor.SortLengthFirst,
		// Floats are always 64 bits wide.
		ShortestFloat: cbor.ShortestFloatNone,
		NaNConvert:    cbor.NaNConvertReject,
		InfConvert:    cbor.InfConvertReject,
		// big.Int carries negative integers below int64; it must come out
		// as plain major type 1, never as a bignum tag.
		BigIntConvert: cbor.BigIntConvertShortest,
		IndefLength:   cbor.IndefLengthForbidden,
		TagsMd:        cbor.TagsAllowed,
	}
	em, err := eo.EncMode()
	if err != nil {
		return nil, err
	}
	bem, err := eo.UserBufferEncMode()
	if err != nil {
		return nil, err
	}
	return &encMode{em: em, bem: bem, int64Only: opts.Int64RangeOnly}, nil
}

// DecOptions specifies decoding options.
type DecOptions struct {
	// MaxNestedLevels specifies the max nested levels allowed for any
	// combination of CBOR arrays, maps, and tags. Default is 32 and it can
	// be set to [4, 65535]. This bounds decoder stack use on adversarial
	// input.
	MaxNestedLevels int

	// MaxArrayElements specifies the max number of elements for CBOR
	// arrays. Default is 128*1024=131072 and it can be set to
	// [16, 2147483647].
	MaxArrayElements int

	// MaxMapPairs specifies the max number of key-value pairs for CBOR
	// maps. Default is 128*1024=131072 and it can be set to
	// [16, 2147483647].
	MaxMapPairs int

	// Int64RangeOnly reduces the range of valid integers when decoding to
	// the range supported by the int64 type: [-(2^63), 2^63-1].
	Int64RangeOnly bool

	// RequireCanonical rejects well-formed input that is not in canonical
	// form, such as maps whose keys arrived unsorted or integers that were
	// not minimally encoded. The check re-encodes the decoded value and
	// compares bytes, so it reports ErrNotCanonical without pinpointing the
	// offending item. The default accepts such input and canonicalises it
	// on re-encode.
	RequireCanonical bool
}

// DecMode is the main interface for decoding.
type DecMode interface {
	Unmarshal(data []byte) (value.Value, error)
	UnmarshalFirst(data []byte) (value.Value, []byte, error)
	FromCBOR(x any) (value.Value, error)
}

// DecMode returns a DecMode to decode with the given options.
func (opts DecOptions) DecMode() (DecMode, error) {
	dm, err := cbor.DecOptions{
		// Duplicate keys abort the decode instead of overwriting.
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
		TagsMd:      cbor.TagsAllowed,
		// Bignum tags 2 and 3 are outside the tag whitelist; without this
		// they would silently decode into big.Int.
		BignumTag:    cbor.BignumTagForbidden,
		SimpleValues: svr,
		// Tag 42 arrives as cbor.Tag so the mapper can unwrap it itself;
		// every other unregistered tag arrives the same way and is
		// rejected with its number.
		UnrecognizedTagToAny: cbor.UnrecognizedTagNumAndContentToAny,
		MaxNestedLevels:      opts.MaxNestedLevels,
		MaxArrayElements:     opts.MaxArrayElements,
		MaxMapPairs:          opts.MaxMapPairs,
	}.DecMode()
	if err != nil {
		return nil, err
	}
	d := &decMode{dm: dm, int64Only: opts.Int64RangeOnly}
	if opts.RequireCanonical {
		// Re-encode with the matching integer range so the byte comparison
		// checks canonical form, not range policy.
		em, err := EncOptions{Int64RangeOnly: opts.Int64RangeOnly}.EncMode()
		if err != nil {
			return nil, err
		}
		d.canonicalEnc = em
	}
	return d, nil
}
