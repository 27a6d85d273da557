package token

import (
	"errors"
	"testing"
	"time"
)

func testIssuer() *Issuer {
	return NewIssuer(Config{Secret: []byte("test-secret"), Issuer: "mathom-test"})
}

func TestIssueAndVerify(t *testing.T) {
	iss := testIssuer()

	signed, err := iss.Issue(42, "alice", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if signed == "" {
		t.Fatal("expected non-empty token")
	}

	id, err := iss.Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.UserID != 42 {
		t.Errorf("user id = %d, want 42", id.UserID)
	}
	if id.Username != "alice" {
		t.Errorf("username = %q, want %q", id.Username, "alice")
	}
}

func TestTokensAreUnique(t *testing.T) {
	iss := testIssuer()

	a, err := iss.Issue(1, "alice", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	b, err := iss.Issue(1, "alice", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if a == b {
		t.Error("two tokens for the same subject should differ (jti)")
	}
}

func TestVerifyExpired(t *testing.T) {
	iss := testIssuer()

	signed, err := iss.Issue(1, "alice", -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := iss.Verify(signed); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("err = %v, want ErrExpiredToken", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	iss := testIssuer()
	other := NewIssuer(Config{Secret: []byte("different-secret"), Issuer: "mathom-test"})

	signed, err := other.Issue(1, "alice", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := iss.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	iss := testIssuer()

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := iss.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q) err = %v, want ErrInvalidToken", tok, err)
		}
	}
}
