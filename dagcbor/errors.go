package dagcbor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// ErrNotCanonical is returned by decoding modes with RequireCanonical set
// when the input is well-formed DAG-CBOR but not in canonical form, for
// example a map whose keys arrived unsorted or an integer that was not
// minimally encoded.
var ErrNotCanonical = errors.New("dagcbor: data is not canonical DAG-CBOR")

// InvalidValueError is returned when a value cannot be encoded: an integer
// outside the permitted range, a NaN or infinite float, or an undefined CID.
type InvalidValueError struct {
	Reason string
}

func (e *InvalidValueError) Error() string {
	return "dagcbor: invalid value: " + e.Reason
}

// InvalidMapKeyError is returned for a duplicate map key on encode, or for a
// duplicate or non-text map key on decode.
type InvalidMapKeyError struct {
	Key    string
	Reason string
}

func (e *InvalidMapKeyError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("dagcbor: invalid map key %q: %s", e.Key, e.Reason)
	}
	return "dagcbor: invalid map key: " + e.Reason
}

// InvalidTagError is returned when decoded data carries a CBOR tag other
// than the CID tag 42.
type InvalidTagError struct {
	Number uint64
}

func (e *InvalidTagError) Error() string {
	return fmt.Sprintf("dagcbor: invalid tag %d, only tag %d is allowed", e.Number, CidTagNumber)
}

// InvalidCIDError is returned when the payload of tag 42 is not a byte
// string, is not prefixed with the identity multibase, or does not parse as
// a binary CID.
type InvalidCIDError struct {
	Reason string
	Err    error
}

func (e *InvalidCIDError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dagcbor: invalid cid: %s: %v", e.Reason, e.Err)
	}
	return "dagcbor: invalid cid: " + e.Reason
}

func (e *InvalidCIDError) Unwrap() error {
	return e.Err
}

// UnsupportedPrimitiveError is returned when decoded data contains a CBOR
// simple value other than true, false, null, or a float, such as undefined.
type UnsupportedPrimitiveError struct {
	Reason string
}

func (e *UnsupportedPrimitiveError) Error() string {
	return "dagcbor: unsupported primitive: " + e.Reason
}

// FloatConversionError is returned when decoded data contains a NaN or
// infinite float.
type FloatConversionError struct {
	Reason string
}

func (e *FloatConversionError) Error() string {
	return "dagcbor: float conversion: " + e.Reason
}

// IntegerRangeError is returned when a decoded integer does not fit the
// accepted range. The default range is [-2^64, 2^64-1]; modes with
// Int64RangeOnly set narrow it to [-2^63, 2^63-1].
type IntegerRangeError struct {
	Reason string
}

func (e *IntegerRangeError) Error() string {
	return "dagcbor: integer out of range: " + e.Reason
}

// EncodingError wraps a failure reported by the underlying CBOR encoder.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return "dagcbor: encoding: " + e.Err.Error()
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// DecodingError wraps a failure reported by the underlying CBOR decoder,
// such as truncated input, malformed items, or indefinite-length encoding.
type DecodingError struct {
	Err error
}

func (e *DecodingError) Error() string {
	return "dagcbor: decoding: " + e.Err.Error()
}

func (e *DecodingError) Unwrap() error {
	return e.Err
}

// translateDecodeError lifts decoder failures that correspond to DAG-CBOR
// data-model violations into the codec's error types. Everything else is
// wrapped as a DecodingError.
func translateDecodeError(err error) error {
	var dupErr *cbor.DupMapKeyError
	if errors.As(err, &dupErr) {
		return &InvalidMapKeyError{Key: fmt.Sprint(dupErr.Key), Reason: "duplicate map key"}
	}
	var unacceptable *cbor.UnacceptableDataItemError
	if errors.As(err, &unacceptable) {
		if strings.Contains(unacceptable.Message, "bignum") {
			// Bignum tags 2 and 3 are outside the tag whitelist.
			return &InvalidTagError{Number: 2}
		}
		return &UnsupportedPrimitiveError{Reason: unacceptable.Message}
	}
	return &DecodingError{Err: err}
}
