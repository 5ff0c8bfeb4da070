package sessionauth

import (
	"errors"

	internalmetrics "github.com/interviewly/sessionauth/internal/metrics"
	"github.com/interviewly/sessionauth/password"
	"github.com/interviewly/sessionauth/token"
)

// Builder assembles an [Engine]. Configure it with the With* methods and
// call [Builder.Build] exactly once.
type Builder struct {
	config Config
	store  UserStore

	built bool
}

// New returns a Builder preloaded with [DefaultConfig]. Token secrets and a
// user store still have to be supplied before Build succeeds.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithUserStore sets the persistence backend. Required.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.store = store
	return b
}

// WithMetricsEnabled toggles the in-process counters without replacing the
// rest of the configuration.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and wires the Engine. Configuration
// faults surface here, at startup, never on a per-request path.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.store == nil {
		return nil, errors.New("user store required")
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if !cfg.roleAllowed(cfg.Account.DefaultRole) {
		return nil, errors.New("default role is not in the allowed roles list")
	}

	tokens, err := token.NewManager(token.Config{
		AccessSecret:  cfg.Token.AccessSecret,
		RefreshSecret: cfg.Token.RefreshSecret,
		AccessTTL:     cfg.Token.AccessTTL,
		RefreshTTL:    cfg.Token.RefreshTTL,
		Issuer:        cfg.Token.Issuer,
		Leeway:        cfg.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
		MinLength:   cfg.Password.MinLength,
	})
	if err != nil {
		return nil, err
	}

	b.built = true

	return &Engine{
		config:  cfg,
		store:   b.store,
		tokens:  tokens,
		hasher:  hasher,
		metrics: internalmetrics.New(cfg.Metrics.Enabled),
	}, nil
}
