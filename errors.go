package sessionauth

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the given identifier or ID.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when a password does not verify against the stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned by Register when the username or email is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrPasswordPolicy is returned when a plaintext password violates the hashing policy.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrInvalidInput is returned when a request field is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoToken is returned by Refresh when no refresh token was presented.
	ErrNoToken = errors.New("no token presented")
	// ErrTokenInvalid is returned for malformed tokens, bad signatures, or
	// tokens naming a user that no longer exists.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when a token is past its embedded expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenReused is the replay/rotation guard: the presented refresh token
	// verified cryptographically but is no longer the user's current one.
	ErrTokenReused = errors.New("refresh token reused or superseded")

	// ErrStoreUnavailable wraps persistence-layer failures. It is the only
	// error kind callers may treat as transient.
	ErrStoreUnavailable = errors.New("user store unavailable")

	// ErrEngineNotReady is returned when an Engine method is called before
	// the builder wired all dependencies.
	ErrEngineNotReady = errors.New("engine not initialized")
)
