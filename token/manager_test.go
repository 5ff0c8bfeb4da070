package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testConfig() Config {
	return Config{
		AccessSecret:  []byte(strings.Repeat("a", 32)),
		RefreshSecret: []byte(strings.Repeat("r", 32)),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		Issuer:        "sessionauth-test",
	}
}

func newTestManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	return m
}

func TestIssueAndParse(t *testing.T) {
	m := newTestManager(t, testConfig())

	access, expiresAt, err := m.IssueAccess("user-1")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}
	if until := time.Until(expiresAt); until <= 0 || until > time.Minute {
		t.Fatalf("unexpected access expiry %v", expiresAt)
	}

	claims, err := m.ParseAccess(access)
	if err != nil {
		t.Fatalf("ParseAccess error: %v", err)
	}
	if claims.UserID() != "user-1" {
		t.Fatalf("subject = %q, want user-1", claims.UserID())
	}
	if claims.ID == "" {
		t.Fatal("expected non-empty jti")
	}
}

func TestTokensAreUniquePerIssue(t *testing.T) {
	m := newTestManager(t, testConfig())

	first, _, err := m.IssueRefresh("user-1")
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}
	second, _, err := m.IssueRefresh("user-1")
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}
	if first == second {
		t.Fatal("two refresh tokens issued at the same instant must differ")
	}
}

func TestSecretsAreNotInterchangeable(t *testing.T) {
	m := newTestManager(t, testConfig())

	access, _, err := m.IssueAccess("user-1")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}
	refresh, _, err := m.IssueRefresh("user-1")
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}

	if _, err := m.ParseRefresh(access); !errors.Is(err, ErrInvalid) {
		t.Fatalf("access token on refresh path: got %v, want ErrInvalid", err)
	}
	if _, err := m.ParseAccess(refresh); !errors.Is(err, ErrInvalid) {
		t.Fatalf("refresh token on access path: got %v, want ErrInvalid", err)
	}
}

func TestParseExpired(t *testing.T) {
	cfg := testConfig()
	m := newTestManager(t, cfg)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	tok, err := expired.SignedString(cfg.AccessSecret)
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}

	if _, err := m.ParseAccess(tok); !errors.Is(err, ErrExpired) {
		t.Fatalf("expired token: got %v, want ErrExpired", err)
	}
}

func TestParseRejectsTampering(t *testing.T) {
	m := newTestManager(t, testConfig())

	tok, _, err := m.IssueAccess("user-1")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}

	if _, err := m.ParseAccess(tok + "x"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("tampered signature: got %v, want ErrInvalid", err)
	}
	if _, err := m.ParseAccess("not-a-jwt"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("malformed token: got %v, want ErrInvalid", err)
	}
	if _, err := m.ParseAccess(""); !errors.Is(err, ErrInvalid) {
		t.Fatalf("empty token: got %v, want ErrInvalid", err)
	}
}

func TestParseRejectsAlgNone(t *testing.T) {
	m := newTestManager(t, testConfig())

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "sessionauth-test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	if _, err := m.ParseAccess(tok); !errors.Is(err, ErrInvalid) {
		t.Fatalf("alg=none token: got %v, want ErrInvalid", err)
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	other := testConfig()
	other.Issuer = "someone-else"
	issuer := newTestManager(t, other)
	verifier := newTestManager(t, testConfig())

	tok, _, err := issuer.IssueAccess("user-1")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}
	if _, err := verifier.ParseAccess(tok); !errors.Is(err, ErrInvalid) {
		t.Fatalf("wrong issuer: got %v, want ErrInvalid", err)
	}
}

func TestNewManagerRejectsBadConfig(t *testing.T) {
	base := testConfig()

	same := base
	same.RefreshSecret = same.AccessSecret
	if _, err := NewManager(same); err == nil {
		t.Fatal("expected identical secrets to be rejected")
	}

	empty := base
	empty.AccessSecret = nil
	if _, err := NewManager(empty); err == nil {
		t.Fatal("expected empty secret to be rejected")
	}

	leeway := base
	leeway.Leeway = time.Hour
	if _, err := NewManager(leeway); err == nil {
		t.Fatal("expected oversized leeway to be rejected")
	}
}
