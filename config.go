package sessionauth

import (
	"crypto/subtle"
	"errors"
	"time"
)

// TokenConfig configures the two signing secrets and lifetimes. The access
// and refresh secrets must be distinct: possession of one token type must
// never allow forging the other.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

// PasswordConfig mirrors password.Config; it is duplicated here so callers
// configure the Engine from a single struct.
type PasswordConfig struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	MinLength   int
}

// AccountConfig controls registration behavior.
type AccountConfig struct {
	DefaultRole  string
	AllowedRoles []string
}

// MetricsConfig enables the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// Config is the full Engine configuration. Obtain a baseline from
// [DefaultConfig], set the two token secrets, and pass it to
// [Builder.WithConfig]. Signing-secret misconfiguration is fatal at Build
// time, never per call.
type Config struct {
	Token    TokenConfig
	Password PasswordConfig
	Account  AccountConfig
	Metrics  MetricsConfig
}

// DefaultConfig returns the baseline configuration: 15-minute access tokens,
// 7-day refresh tokens, argon2id parameters suitable for server-side
// hashing. Token secrets have no default and must be provided.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
			Issuer:     "sessionauth",
			Leeway:     30 * time.Second,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        2,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
			MinLength:   10,
		},
		Account: AccountConfig{
			DefaultRole:  "candidate",
			AllowedRoles: []string{"candidate", "interviewer", "admin"},
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

const minSecretBytes = 32

func validateConfig(cfg Config) error {
	if len(cfg.Token.AccessSecret) < minSecretBytes {
		return errors.New("access token secret must be at least 32 bytes")
	}
	if len(cfg.Token.RefreshSecret) < minSecretBytes {
		return errors.New("refresh token secret must be at least 32 bytes")
	}
	if len(cfg.Token.AccessSecret) == len(cfg.Token.RefreshSecret) &&
		subtle.ConstantTimeCompare(cfg.Token.AccessSecret, cfg.Token.RefreshSecret) == 1 {
		return errors.New("access and refresh token secrets must differ")
	}
	if cfg.Token.AccessTTL <= 0 || cfg.Token.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if cfg.Token.RefreshTTL <= cfg.Token.AccessTTL {
		return errors.New("refresh TTL must exceed access TTL")
	}
	if cfg.Account.DefaultRole == "" {
		return errors.New("default role must not be empty")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.AccessSecret = append([]byte(nil), cfg.Token.AccessSecret...)
	out.Token.RefreshSecret = append([]byte(nil), cfg.Token.RefreshSecret...)
	out.Account.AllowedRoles = append([]string(nil), cfg.Account.AllowedRoles...)
	return out
}

func (c Config) roleAllowed(role string) bool {
	if len(c.Account.AllowedRoles) == 0 {
		return true
	}
	for _, r := range c.Account.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}
