package sessionauth

import (
	"context"
	"time"

	internalmetrics "github.com/interviewly/sessionauth/internal/metrics"
)

// UserRecord is the account document held by the external user store. The
// refresh-token field is the single piece of server-side session state: when
// non-empty it must equal exactly the most recently issued, not yet
// superseded refresh token for this user.
type UserRecord struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	Role         string
	PasswordHash string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserStore is the contract the Engine requires from the persistence layer.
// GetUserByIdentifier matches the identifier against the username field
// first, then the email field. RotateRefreshToken must be atomic per user:
// compare the presented token against the stored one and install next in the
// same operation, returning [ErrTokenReused] on mismatch.
//
// Implementations live in store/redisstore and store/pgstore.
type UserStore interface {
	CreateUser(ctx context.Context, user UserRecord) (UserRecord, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (UserRecord, error)
	GetUserByID(ctx context.Context, userID string) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	SetRefreshToken(ctx context.Context, userID, token string) error
	GetRefreshToken(ctx context.Context, userID string) (string, error)
	RotateRefreshToken(ctx context.Context, userID, presented, next string) error
	ClearRefreshToken(ctx context.Context, userID string) error
}

// TokenPair is returned by [Engine.Login] and [Engine.Refresh]. Expiry
// timestamps are those embedded in the tokens; the transport uses them to
// bound cookie lifetimes.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuthResult is returned by [Engine.ValidateAccess]. Access tokens are
// stateless; the result carries only the signed claims, never store state.
type AuthResult struct {
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RegisterInput is the input for [Engine.Register]. All fields except Role
// are required; Role defaults to [Config.Account.DefaultRole] when empty.
type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
	Role     string
}

// MetricID identifies a counter in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess = internalmetrics.MetricLoginSuccess
	// MetricLoginFailure counts rejected logins.
	MetricLoginFailure = internalmetrics.MetricLoginFailure
	// MetricRefreshSuccess counts successful token rotations.
	MetricRefreshSuccess = internalmetrics.MetricRefreshSuccess
	// MetricRefreshFailure counts rejected refresh attempts.
	MetricRefreshFailure = internalmetrics.MetricRefreshFailure
	// MetricRefreshReuseDetected counts replay-guard hits.
	MetricRefreshReuseDetected = internalmetrics.MetricRefreshReuseDetected
	// MetricLogout counts logouts.
	MetricLogout = internalmetrics.MetricLogout
	// MetricRegisterSuccess counts created accounts.
	MetricRegisterSuccess = internalmetrics.MetricRegisterSuccess
	// MetricRegisterDuplicate counts registrations rejected as duplicates.
	MetricRegisterDuplicate = internalmetrics.MetricRegisterDuplicate
	// MetricPasswordChangeSuccess counts successful password changes.
	MetricPasswordChangeSuccess = internalmetrics.MetricPasswordChangeSuccess
	// MetricPasswordChangeFailure counts rejected password changes.
	MetricPasswordChangeFailure = internalmetrics.MetricPasswordChangeFailure
)

// Metrics holds atomic counters for the Engine.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot
