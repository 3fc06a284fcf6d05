package dagcbor_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"pgregory.net/rapid"

	"github.com/hyphacoop/go-dagcbor/dagcbor"
	"github.com/hyphacoop/go-dagcbor/value"
)

func intGen() *rapid.Generator[value.Value] {
	return rapid.Custom(func(t *rapid.T) value.Value {
		if rapid.Bool().Draw(t, "wide") {
			return value.NewUint(rapid.Uint64().Draw(t, "uint"))
		}
		return value.NewInt(rapid.Int64().Draw(t, "int"))
	})
}

func floatGen() *rapid.Generator[value.Value] {
	finite := rapid.Float64().Filter(func(f float64) bool {
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	return rapid.Custom(func(t *rapid.T) value.Value {
		return value.NewFloat(finite.Draw(t, "float"))
	})
}

func cidGen() *rapid.Generator[value.Value] {
	return rapid.Custom(func(t *rapid.T) value.Value {
		digest := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "digest")
		mh, err := multihash.Encode(digest, multihash.SHA2_256)
		if err != nil {
			panic(err)
		}
		return value.NewCid(cid.NewCidV1(cid.DagCBOR, mh))
	})
}

func leafGen() *rapid.Generator[value.Value] {
	return rapid.OneOf(
		intGen(),
		floatGen(),
		cidGen(),
		rapid.Custom(func(t *rapid.T) value.Value {
			return value.NewText(rapid.String().Draw(t, "text"))
		}),
		rapid.Custom(func(t *rapid.T) value.Value {
			return value.NewBytes(rapid.SliceOf(rapid.Byte()).Draw(t, "bytes"))
		}),
		rapid.Custom(func(t *rapid.T) value.Value {
			return value.NewBool(rapid.Bool().Draw(t, "bool"))
		}),
		rapid.Just(value.Null()),
	)
}

func valueGen() *rapid.Generator[value.Value] {
	return rapid.OneOf(
		leafGen(),
		leafGen(),
		leafGen(),
		rapid.Custom(func(t *rapid.T) value.Value {
			elems := rapid.SliceOfN(rapid.Deferred(valueGen), 0, 4).Draw(t, "elems")
			return value.NewArray(elems...)
		}),
		rapid.Custom(func(t *rapid.T) value.Value {
			m := rapid.MapOfN(rapid.String(), rapid.Deferred(valueGen), 0, 4).Draw(t, "entries")
			entries := make([]value.Entry, 0, len(m))
			for k, v := range m {
				entries = append(entries, value.Entry{Key: k, Value: v})
			}
			return value.NewMap(entries)
		}),
	)
}

// TestRoundTrip checks the codec's universal properties on generated trees:
// decoding an encoding yields the canonical form of the input, logically
// equal values encode to identical bytes, re-encoding a decoded value is
// byte-stable, and canonical output survives the strict decoding profile.
func TestRoundTrip(t *testing.T) {
	strict, err := dagcbor.DecOptions{RequireCanonical: true}.DecMode()
	if err != nil {
		t.Fatal(err)
	}
	gen := valueGen()
	rapid.Check(t, func(t *rapid.T) {
		v := gen.Draw(t, "value")

		encoded, err := dagcbor.Marshal(v)
		if err != nil {
			t.Fatalf("Marshal error: %v", err)
		}
		decoded, err := dagcbor.Unmarshal(encoded)
		if err != nil {
			t.Fatalf("Unmarshal error on %x: %v", encoded, err)
		}
		if !decoded.Equal(v.Canonical()) {
			t.Fatalf("decoded tree differs from canonicalised input (bytes %x)", encoded)
		}

		canonicalBytes, err := dagcbor.Marshal(v.Canonical())
		if err != nil {
			t.Fatalf("Marshal of canonical form: %v", err)
		}
		if !bytes.Equal(encoded, canonicalBytes) {
			t.Fatalf("encoding is not deterministic: %x vs %x", encoded, canonicalBytes)
		}

		reencoded, err := dagcbor.Marshal(decoded)
		if err != nil {
			t.Fatalf("re-Marshal error: %v", err)
		}
		if !bytes.Equal(encoded, reencoded) {
			t.Fatalf("re-encoding is not idempotent: %x vs %x", encoded, reencoded)
		}

		if _, err := strict.Unmarshal(encoded); err != nil {
			t.Fatalf("strict profile rejected canonical output %x: %v", encoded, err)
		}
	})
}

// TestMarshalToBufferMatchesMarshal checks the buffer variant produces the
// same bytes as Marshal.
func TestMarshalToBufferMatchesMarshal(t *testing.T) {
	gen := valueGen()
	rapid.Check(t, func(t *rapid.T) {
		v := gen.Draw(t, "value")
		direct, err := dagcbor.Marshal(v)
		if err != nil {
			t.Fatalf("Marshal error: %v", err)
		}
		var buf bytes.Buffer
		if err := dagcbor.MarshalToBuffer(v, &buf); err != nil {
			t.Fatalf("MarshalToBuffer error: %v", err)
		}
		if !bytes.Equal(direct, buf.Bytes()) {
			t.Fatalf("buffer bytes %x differ from %x", buf.Bytes(), direct)
		}
	})
}
