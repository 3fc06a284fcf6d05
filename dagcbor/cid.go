package dagcbor

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"

	"github.com/hyphacoop/go-dagcbor/value"
)

// CidTagNumber is the number of the CBOR tag used to encode a CID.
const CidTagNumber = 42

// CalculateCid returns the v1 dag-cbor sha2-256 CID for the given value.
// This is achieved by marshalling it into DAG-CBOR and hashing those bytes.
// An error is returned if the value could not be marshalled.
func CalculateCid(v value.Value) (cid.Cid, error) {
	b, err := Marshal(v)
	if err != nil {
		return cid.Cid{}, err
	}
	sum, err := multihash.Sum(b, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Cid{}, err
	}
	return cid.NewCidV1(cid.DagCBOR, sum), nil
}

// encodeCid wraps a CID as tag 42 around a byte string holding the binary
// CID behind an identity multibase prefix.
func encodeCid(c cid.Cid) (cbor.Tag, error) {
	if !c.Defined() {
		return cbor.Tag{}, &InvalidValueError{Reason: "undefined CID"}
	}
	framed, err := multibase.Encode(multibase.Identity, c.Bytes())
	if err != nil {
		return cbor.Tag{}, &InvalidCIDError{Reason: "multibase framing", Err: err}
	}
	return cbor.Tag{Number: CidTagNumber, Content: []byte(framed)}, nil
}

// decodeCid unwraps the content of a tag 42. Only the identity multibase is
// accepted, and the remaining bytes must parse as a binary CID.
func decodeCid(content any) (cid.Cid, error) {
	framed, ok := content.([]byte)
	if !ok {
		return cid.Cid{}, &InvalidCIDError{Reason: fmt.Sprintf("tag %d content is not a byte string", CidTagNumber)}
	}
	encoding, payload, err := multibase.Decode(string(framed))
	if err != nil {
		return cid.Cid{}, &InvalidCIDError{Reason: "multibase framing", Err: err}
	}
	if encoding != multibase.Identity {
		return cid.Cid{}, &InvalidCIDError{Reason: fmt.Sprintf("multibase prefix 0x%02x, expected identity prefix 0x00", byte(encoding))}
	}
	parsed, err := cid.Cast(payload)
	if err != nil {
		return cid.Cid{}, &InvalidCIDError{Reason: "parsing binary CID", Err: err}
	}
	return parsed, nil
}
