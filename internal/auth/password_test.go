package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasherRoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if first == second {
		t.Fatalf("expected salted digests to differ")
	}
	if first == "s3cret" {
		t.Fatalf("digest must not equal plaintext")
	}
	if !h.Verify("s3cret", first) || !h.Verify("s3cret", second) {
		t.Fatalf("expected both digests to verify")
	}
	if h.Verify("wrong", first) {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestHasherVerifyMalformedDigest(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	if h.Verify("s3cret", "not-a-digest") {
		t.Fatalf("expected malformed digest to fail")
	}
	if h.Verify("", "") {
		t.Fatalf("expected empty digest to fail")
	}
}

func TestNewHasherDefaultCost(t *testing.T) {
	if h := NewHasher(0); h.cost != bcrypt.DefaultCost {
		t.Fatalf("cost = %d", h.cost)
	}
}
