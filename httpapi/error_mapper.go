package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	sessionauth "github.com/interviewly/sessionauth"
)

// mapAuthError converts an engine error into an echo.HTTPError with a
// machine-readable code. Unknown identifier and wrong password collapse
// into one response so login probing cannot tell accounts apart.
func mapAuthError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, sessionauth.ErrUserNotFound),
		errors.Is(err, sessionauth.ErrInvalidCredentials):
		return httpError(http.StatusUnauthorized, "invalid_credentials", "invalid credentials")

	case errors.Is(err, sessionauth.ErrNoToken):
		return httpError(http.StatusUnauthorized, "no_token", "authentication required")

	case errors.Is(err, sessionauth.ErrTokenReused):
		return httpError(http.StatusUnauthorized, "token_reused", "refresh token is expired or used")

	case errors.Is(err, sessionauth.ErrTokenExpired):
		return httpError(http.StatusUnauthorized, "token_expired", "token expired")

	case errors.Is(err, sessionauth.ErrTokenInvalid):
		return httpError(http.StatusUnauthorized, "token_invalid", "invalid token")

	case errors.Is(err, sessionauth.ErrUserExists):
		return httpError(http.StatusConflict, "user_exists", "username or email already taken")

	case errors.Is(err, sessionauth.ErrPasswordPolicy):
		return httpError(http.StatusBadRequest, "password_policy", "password does not meet the minimum requirements")

	case errors.Is(err, sessionauth.ErrInvalidInput):
		return httpError(http.StatusBadRequest, "invalid_input", err.Error())

	case errors.Is(err, sessionauth.ErrStoreUnavailable):
		return httpError(http.StatusServiceUnavailable, "store_unavailable", "user store unavailable")

	default:
		return httpError(http.StatusInternalServerError, "internal", "internal error")
	}
}

func httpError(status int, code, message string) *echo.HTTPError {
	return echo.NewHTTPError(status, echo.Map{"code": code, "message": message})
}
