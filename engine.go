package sessionauth

import (
	"context"
	"errors"
	"fmt"

	internalmetrics "github.com/interviewly/sessionauth/internal/metrics"
	"github.com/interviewly/sessionauth/password"
	"github.com/interviewly/sessionauth/token"
)

// Engine is the root object of the session-auth system. It owns credential
// verification, the access/refresh token pair, and the single-session
// rotation invariant; persistence is delegated to the configured
// [UserStore]. An Engine is immutable after Build and safe for concurrent
// use.
type Engine struct {
	config  Config
	store   UserStore
	tokens  *token.Manager
	hasher  *password.Hasher
	metrics *internalmetrics.Metrics
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// MetricsSnapshot copies the current counter values for exporters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// Login verifies identifier and password against the store and, on success,
// issues a fresh token pair and installs the new refresh token as the
// user's only valid one. A login while another session is live therefore
// invalidates the earlier session's refresh token.
//
// Unknown identifiers return [ErrUserNotFound] and bad passwords return
// [ErrInvalidCredentials]; transports are expected to collapse the two into
// one response so login probing cannot distinguish them.
func (e *Engine) Login(ctx context.Context, identifier, pass string) (*TokenPair, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	if identifier == "" || pass == "" {
		e.metricInc(MetricLoginFailure)
		return nil, ErrInvalidCredentials
	}

	user, err := e.store.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, err
	}

	ok, err := e.hasher.Verify(pass, user.PasswordHash)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		e.metricInc(MetricLoginFailure)
		return nil, ErrInvalidCredentials
	}

	pair, err := e.issuePair(user.ID)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, err
	}

	if err := e.store.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	return pair, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The presented
// token must verify against the refresh secret AND byte-equal the user's
// stored current token; the store swap is atomic, so of N concurrent
// refreshes with the same token exactly one wins and the rest get
// [ErrTokenReused]. A reused token means the stored token has already been
// superseded — the caller must re-authenticate.
func (e *Engine) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	if presented == "" {
		e.metricInc(MetricRefreshFailure)
		return nil, ErrNoToken
	}

	claims, err := e.tokens.ParseRefresh(presented)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		if errors.Is(err, token.ErrExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	pair, err := e.issuePair(claims.UserID())
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, err
	}

	if err := e.store.RotateRefreshToken(ctx, claims.UserID(), presented, pair.RefreshToken); err != nil {
		switch {
		case errors.Is(err, ErrTokenReused):
			e.metricInc(MetricRefreshReuseDetected)
			e.metricInc(MetricRefreshFailure)
			return nil, ErrTokenReused
		case errors.Is(err, ErrUserNotFound):
			// The token names a user that no longer exists.
			e.metricInc(MetricRefreshFailure)
			return nil, ErrTokenInvalid
		default:
			e.metricInc(MetricRefreshFailure)
			return nil, err
		}
	}

	e.metricInc(MetricRefreshSuccess)
	return pair, nil
}

// Logout clears the user's stored refresh token so no further refresh can
// succeed until the next login. Logging out a user with no live session is
// not an error; outstanding access tokens stay valid until expiry.
func (e *Engine) Logout(ctx context.Context, userID string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrInvalidInput
	}

	if err := e.store.ClearRefreshToken(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return err
	}

	e.metricInc(MetricLogout)
	return nil
}

// ValidateAccess verifies an access token without touching the store.
// Access-token validity is purely signature plus expiry: logout does not
// revoke access tokens already in flight.
func (e *Engine) ValidateAccess(_ context.Context, tokenStr string) (*AuthResult, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}
	if tokenStr == "" {
		return nil, ErrNoToken
	}

	claims, err := e.tokens.ParseAccess(tokenStr)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	result := &AuthResult{UserID: claims.UserID()}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}
	return result, nil
}

func (e *Engine) issuePair(userID string) (*TokenPair, error) {
	access, accessExp, err := e.tokens.IssueAccess(userID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, refreshExp, err := e.tokens.IssueRefresh(userID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}
