package path

import (
	"errors"
	"math"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/hyphacoop/go-dagcbor/value"
)

func accessorDoc(t *testing.T) (value.Value, cid.Cid) {
	t.Helper()
	sum, err := multihash.Sum([]byte("linked"), multihash.SHA2_256, -1)
	if err != nil {
		t.Fatal(err)
	}
	c := cid.NewCidV1(cid.DagCBOR, sum)
	return value.NewMap([]value.Entry{
		{Key: "nat", Value: value.NewUint(7)},
		{Key: "wide", Value: value.NewUint(math.MaxUint64)},
		{Key: "neg", Value: value.NewInt(-7)},
		{Key: "pi", Value: value.NewFloat(3.25)},
		{Key: "ok", Value: value.NewBool(true)},
		{Key: "name", Value: value.NewText("Ada")},
		{Key: "raw", Value: value.NewBytes([]byte{1, 2})},
		{Key: "list", Value: value.NewArray(value.NewInt(1))},
		{Key: "obj", Value: value.NewMap([]value.Entry{{Key: "k", Value: value.Null()}})},
		{Key: "link", Value: value.NewCid(c)},
		{Key: "none", Value: value.Null()},
	}), c
}

func TestTypedAccessors(t *testing.T) {
	doc, c := accessorDoc(t)

	if n, err := GetNat(doc, "nat"); err != nil || n != 7 {
		t.Errorf("GetNat = %d, %v", n, err)
	}
	if n, err := GetNat(doc, "wide"); err != nil || n != math.MaxUint64 {
		t.Errorf("GetNat(wide) = %d, %v", n, err)
	}
	if i, err := GetInt(doc, "neg"); err != nil || i != -7 {
		t.Errorf("GetInt = %d, %v", i, err)
	}
	if f, err := GetFloat(doc, "pi"); err != nil || f != 3.25 {
		t.Errorf("GetFloat = %v, %v", f, err)
	}
	if b, err := GetBool(doc, "ok"); err != nil || !b {
		t.Errorf("GetBool = %v, %v", b, err)
	}
	if s, err := GetText(doc, "name"); err != nil || s != "Ada" {
		t.Errorf("GetText = %q, %v", s, err)
	}
	if b, err := GetBytes(doc, "raw"); err != nil || len(b) != 2 {
		t.Errorf("GetBytes = %x, %v", b, err)
	}
	if a, err := GetArray(doc, "list"); err != nil || len(a) != 1 {
		t.Errorf("GetArray = %v, %v", a, err)
	}
	if m, err := GetMap(doc, "obj"); err != nil || len(m) != 1 || m[0].Key != "k" {
		t.Errorf("GetMap = %v, %v", m, err)
	}
	if got, err := GetCid(doc, "link"); err != nil || !got.Equals(c) {
		t.Errorf("GetCid = %v, %v", got, err)
	}
}

func TestAccessorCoercions(t *testing.T) {
	doc, _ := accessorDoc(t)
	var mismatch *TypeMismatchError

	// Nat accepts non-negative ints only; a negative int is a mismatch,
	// not a separate error.
	if _, err := GetNat(doc, "neg"); !errors.As(err, &mismatch) {
		t.Errorf("GetNat(neg) = %v, want type mismatch", err)
	}
	// Int requires the payload to fit int64.
	if _, err := GetInt(doc, "wide"); !errors.As(err, &mismatch) {
		t.Errorf("GetInt(wide) = %v, want type mismatch", err)
	}
	// Float accepts ints, widening to float64.
	if f, err := GetFloat(doc, "nat"); err != nil || f != 7 {
		t.Errorf("GetFloat(nat) = %v, %v", f, err)
	}
	// No other coercions: a float is not an int, text is not bytes.
	if _, err := GetInt(doc, "pi"); !errors.As(err, &mismatch) {
		t.Errorf("GetInt(pi) = %v, want type mismatch", err)
	}
	if _, err := GetBytes(doc, "name"); !errors.As(err, &mismatch) {
		t.Errorf("GetBytes(name) = %v, want type mismatch", err)
	}
	if _, err := GetBool(doc, "nat"); !errors.As(err, &mismatch) {
		t.Errorf("GetBool(nat) = %v, want type mismatch", err)
	}
}

func TestAccessorOutcomes(t *testing.T) {
	doc, _ := accessorDoc(t)
	var mismatch *TypeMismatchError

	// Absent path, non-nullable: ErrNotFound.
	if _, err := GetInt(doc, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetInt(missing) = %v, want ErrNotFound", err)
	}
	// Present null, non-nullable: a mismatch, never a silent zero.
	if _, err := GetInt(doc, "none"); !errors.As(err, &mismatch) {
		t.Errorf("GetInt(none) = %v, want type mismatch", err)
	}

	// Nullable variants: null resolves to nil with no error.
	p, err := GetNullableInt(doc, "none", false)
	if err != nil || p != nil {
		t.Errorf("GetNullableInt(none) = %v, %v", p, err)
	}
	// Absent with allowMissing: nil and no error.
	p, err = GetNullableInt(doc, "missing", true)
	if err != nil || p != nil {
		t.Errorf("GetNullableInt(missing, allow) = %v, %v", p, err)
	}
	// Absent without allowMissing: ErrNotFound.
	if _, err := GetNullableInt(doc, "missing", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetNullableInt(missing) = %v, want ErrNotFound", err)
	}
	// Present with the right kind: pointer to the value.
	p, err = GetNullableInt(doc, "neg", false)
	if err != nil || p == nil || *p != -7 {
		t.Errorf("GetNullableInt(neg) = %v, %v", p, err)
	}
	// Present with the wrong kind: mismatch even when nullable.
	if _, err := GetNullableInt(doc, "name", true); !errors.As(err, &mismatch) {
		t.Errorf("GetNullableInt(name) = %v, want type mismatch", err)
	}

	// The same shape holds for the other nullable accessors.
	s, err := GetNullableText(doc, "name", false)
	if err != nil || s == nil || *s != "Ada" {
		t.Errorf("GetNullableText(name) = %v, %v", s, err)
	}
	b, err := GetNullableBool(doc, "none", false)
	if err != nil || b != nil {
		t.Errorf("GetNullableBool(none) = %v, %v", b, err)
	}
	a, err := GetNullableArray(doc, "missing", true)
	if err != nil || a != nil {
		t.Errorf("GetNullableArray(missing, allow) = %v, %v", a, err)
	}
	c, err := GetNullableCid(doc, "link", false)
	if err != nil || c == nil {
		t.Errorf("GetNullableCid(link) = %v, %v", c, err)
	}
}

func TestIsNull(t *testing.T) {
	doc, _ := accessorDoc(t)
	for _, tt := range []struct {
		path         string
		allowMissing bool
		want         bool
	}{
		{"none", false, true},
		{"none", true, true},
		{"nat", false, false},
		{"missing", false, false},
		{"missing", true, true},
	} {
		if got := IsNull(doc, tt.path, tt.allowMissing); got != tt.want {
			t.Errorf("IsNull(%q, %v) = %v, want %v", tt.path, tt.allowMissing, got, tt.want)
		}
	}
}
