package hash

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher()

	hashed, err := h.Hash("Secret123!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hashed == "Secret123!" {
		t.Fatal("hash equals plaintext")
	}
	if !h.Verify("Secret123!", hashed) {
		t.Error("expected verify to succeed for original secret")
	}
	if h.Verify("wrong", hashed) {
		t.Error("expected verify to fail for wrong secret")
	}
}

func TestHashIsSalted(t *testing.T) {
	h := NewHasher()

	a, err := h.Hash("Secret123!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := h.Hash("Secret123!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Error("two hashes of the same secret should differ")
	}
	if !h.Verify("Secret123!", a) || !h.Verify("Secret123!", b) {
		t.Error("both salted hashes should verify")
	}
}

func TestHashLongInput(t *testing.T) {
	h := NewHasher()

	// Signed tokens are well past bcrypt's 72-byte input limit.
	token := strings.Repeat("eyJhbGciOiJIUzI1NiJ9.", 20)
	hashed, err := h.Hash(token)
	if err != nil {
		t.Fatalf("hash long input: %v", err)
	}
	if !h.Verify(token, hashed) {
		t.Error("expected verify to succeed for long input")
	}
	if h.Verify(token+"x", hashed) {
		t.Error("expected verify to fail for modified input")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h := NewHasher()

	if h.Verify("anything", "not-a-bcrypt-hash") {
		t.Error("expected verify to fail for malformed hash")
	}
	if h.Verify("anything", "") {
		t.Error("expected verify to fail for empty hash")
	}
}
