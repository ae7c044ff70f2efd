package filter

import (
	"testing"

	"github.com/downfa11-org/logsnap/pkg/types"
)

func TestPassThrough(t *testing.T) {
	f := PassThrough()
	if !f.Match([]byte("any")) {
		t.Fatal("pass-through should keep keyed records")
	}
	if !f.Match(nil) {
		t.Fatal("pass-through should keep keyless records")
	}
}

func TestKeyEqualsString(t *testing.T) {
	f, err := KeyEquals("order-42", types.KeyKindString)
	if err != nil {
		t.Fatalf("KeyEquals failed: %v", err)
	}
	if !f.Match([]byte("order-42")) {
		t.Fatal("exact key should match")
	}
	if f.Match([]byte("order-43")) {
		t.Fatal("different key must not match")
	}
	if f.Match(nil) {
		t.Fatal("nil key must never match")
	}
}

func TestKeyEqualsLong(t *testing.T) {
	f, err := KeyEquals("42", types.KeyKindLong)
	if err != nil {
		t.Fatalf("KeyEquals failed: %v", err)
	}
	raw := []byte{0, 0, 0, 0, 0, 0, 0, 42}
	if !f.Match(raw) {
		t.Fatal("encoded long key should match")
	}
	if f.Match([]byte("42")) {
		t.Fatal("textual key must not match a long sample")
	}
}

func TestKeyEqualsBadSample(t *testing.T) {
	if _, err := KeyEquals("not-a-number", types.KeyKindLong); err == nil {
		t.Fatal("expected error for non-numeric long sample")
	}
	if _, err := KeyEquals("!!!", types.KeyKindBytes); err == nil {
		t.Fatal("expected error for invalid base64 sample")
	}
}

func TestFromConfig(t *testing.T) {
	if _, err := FromConfig("none", "", types.KeyKindString); err != nil {
		t.Fatalf("none filter failed: %v", err)
	}
	if _, err := FromConfig("", "", types.KeyKindString); err != nil {
		t.Fatalf("empty kind should default to pass-through: %v", err)
	}
	if _, err := FromConfig("key-equals", "x", types.KeyKindString); err != nil {
		t.Fatalf("key-equals failed: %v", err)
	}
	if _, err := FromConfig("bogus", "", types.KeyKindString); err == nil {
		t.Fatal("unknown kind must be rejected")
	}
}
