package password

import (
	"errors"
	"strings"
	"testing"
)

func testConfig() Config {
	return Config{
		Memory:      65536,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
		MinLength:   10,
	}
}

func TestHashAndVerify(t *testing.T) {
	hasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	hash, err := hasher.Hash("P@ssw0rd-Ascii")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=2$") {
		t.Fatalf("unexpected PHC prefix: %s", hash)
	}

	ok, err := hasher.Verify("P@ssw0rd-Ascii", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("expected password verification to succeed")
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	hasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	hash, err := hasher.Hash("correct-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := hasher.Verify("wrong-password", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password verification to fail")
	}
}

func TestVerifyAfterCostChange(t *testing.T) {
	oldHasher, err := NewHasher(Config{
		Memory:      32768,
		Time:        2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewHasher(old) error: %v", err)
	}

	hash, err := oldHasher.Hash("test-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	// A hasher with different costs still verifies old hashes, because the
	// parameters are read back out of the PHC string.
	newHasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher(new) error: %v", err)
	}

	ok, err := newHasher.Verify("test-password", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("expected old-parameter hash to verify")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	hasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	if _, err := hasher.Verify("password", "not-a-phc-hash"); err == nil {
		t.Fatal("expected malformed hash verification to fail")
	}
}

func TestVerifyWrongVersion(t *testing.T) {
	hasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	hash, err := hasher.Hash("version-test")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	wrongVersion := strings.Replace(hash, "$v=19$", "$v=18$", 1)
	if _, err := hasher.Verify("version-test", wrongVersion); err == nil {
		t.Fatal("expected unsupported version verification to fail")
	}
}

func TestHashEmptyPassword(t *testing.T) {
	hasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	if _, err := hasher.Hash(""); !errors.Is(err, ErrTooShort) {
		t.Fatalf("expected ErrTooShort for empty password, got %v", err)
	}
}

func TestHashBelowMinLength(t *testing.T) {
	hasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	if _, err := hasher.Hash("short"); !errors.Is(err, ErrTooShort) {
		t.Fatalf("expected ErrTooShort for short password, got %v", err)
	}
}

func TestDefaultMinLengthApplied(t *testing.T) {
	cfg := testConfig()
	cfg.MinLength = 0
	hasher, err := NewHasher(cfg)
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}

	if _, err := hasher.Hash(strings.Repeat("a", 9)); !errors.Is(err, ErrTooShort) {
		t.Fatalf("expected 9-byte password to be rejected, got %v", err)
	}
	if _, err := hasher.Hash(strings.Repeat("a", 10)); err != nil {
		t.Fatalf("expected 10-byte password to be accepted: %v", err)
	}
}

func TestRejectedConfigs(t *testing.T) {
	cases := map[string]Config{
		"low memory":      {Memory: 1024, Time: 3, Parallelism: 2, SaltLength: 16, KeyLength: 32},
		"zero time":       {Memory: 65536, Time: 0, Parallelism: 2, SaltLength: 16, KeyLength: 32},
		"zero threads":    {Memory: 65536, Time: 3, Parallelism: 0, SaltLength: 16, KeyLength: 32},
		"short salt":      {Memory: 65536, Time: 3, Parallelism: 2, SaltLength: 8, KeyLength: 32},
		"short key":       {Memory: 65536, Time: 3, Parallelism: 2, SaltLength: 16, KeyLength: 8},
	}
	for name, cfg := range cases {
		if _, err := NewHasher(cfg); err == nil {
			t.Errorf("%s: expected NewHasher to reject config", name)
		}
	}
}
