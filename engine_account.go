package sessionauth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/interviewly/sessionauth/password"
)

// Register creates an account. Username and email are lowercased and
// trimmed before storage so lookups are case-insensitive. Registration does
// NOT log the user in; callers go through [Engine.Login] afterwards.
func (e *Engine) Register(ctx context.Context, input RegisterInput) (UserRecord, error) {
	if e == nil || e.store == nil {
		return UserRecord{}, ErrEngineNotReady
	}

	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.ToLower(strings.TrimSpace(input.Email))
	fullName := strings.TrimSpace(input.FullName)

	switch {
	case username == "":
		return UserRecord{}, fmt.Errorf("%w: username required", ErrInvalidInput)
	case email == "" || !strings.Contains(email, "@"):
		return UserRecord{}, fmt.Errorf("%w: valid email required", ErrInvalidInput)
	case fullName == "":
		return UserRecord{}, fmt.Errorf("%w: full name required", ErrInvalidInput)
	}

	role := input.Role
	if role == "" {
		role = e.config.Account.DefaultRole
	}
	if !e.config.roleAllowed(role) {
		return UserRecord{}, fmt.Errorf("%w: role %q not allowed", ErrInvalidInput, role)
	}

	hash, err := e.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, password.ErrTooShort) {
			return UserRecord{}, ErrPasswordPolicy
		}
		return UserRecord{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := e.store.CreateUser(ctx, UserRecord{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			e.metricInc(MetricRegisterDuplicate)
		}
		return UserRecord{}, err
	}

	e.metricInc(MetricRegisterSuccess)
	return scrubRecord(created), nil
}

// ChangePassword verifies the old password, installs a hash of the new one,
// and revokes the user's refresh token so existing sessions must log in
// again with the new credential.
func (e *Engine) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrInvalidInput
	}

	user, err := e.store.GetUserByID(ctx, userID)
	if err != nil {
		e.metricInc(MetricPasswordChangeFailure)
		return err
	}

	ok, err := e.hasher.Verify(oldPassword, user.PasswordHash)
	if err != nil {
		e.metricInc(MetricPasswordChangeFailure)
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		e.metricInc(MetricPasswordChangeFailure)
		return ErrInvalidCredentials
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		e.metricInc(MetricPasswordChangeFailure)
		if errors.Is(err, password.ErrTooShort) {
			return ErrPasswordPolicy
		}
		return fmt.Errorf("hash password: %w", err)
	}

	if err := e.store.UpdatePasswordHash(ctx, userID, hash); err != nil {
		e.metricInc(MetricPasswordChangeFailure)
		return err
	}

	// Best effort: the password is already changed, so a failed revocation
	// must not fail the operation.
	if err := e.store.ClearRefreshToken(ctx, userID); err != nil && !errors.Is(err, ErrUserNotFound) {
		log.Print("sessionauth: session revocation after password change failed")
	}

	e.metricInc(MetricPasswordChangeSuccess)
	return nil
}

// CurrentUser resolves an access token to its account record, with the
// password hash and refresh token blanked.
func (e *Engine) CurrentUser(ctx context.Context, accessToken string) (UserRecord, error) {
	result, err := e.ValidateAccess(ctx, accessToken)
	if err != nil {
		return UserRecord{}, err
	}

	user, err := e.store.GetUserByID(ctx, result.UserID)
	if err != nil {
		return UserRecord{}, err
	}
	return scrubRecord(user), nil
}

func scrubRecord(user UserRecord) UserRecord {
	user.PasswordHash = ""
	user.RefreshToken = ""
	return user
}
