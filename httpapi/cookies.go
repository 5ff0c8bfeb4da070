package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	sessionauth "github.com/interviewly/sessionauth"
)

const (
	accessCookieName  = "accessToken"
	refreshCookieName = "refreshToken"
)

// setAuthCookies installs both tokens as HttpOnly cookies whose lifetimes
// match the embedded token expiries.
func (h *Handler) setAuthCookies(c echo.Context, pair *sessionauth.TokenPair) {
	c.SetCookie(h.authCookie(accessCookieName, pair.AccessToken, pair.AccessExpiresAt))
	c.SetCookie(h.authCookie(refreshCookieName, pair.RefreshToken, pair.RefreshExpiresAt))
}

// clearAuthCookies expires both cookies. Safe to call whether or not the
// client ever held them.
func (h *Handler) clearAuthCookies(c echo.Context) {
	c.SetCookie(h.authCookie(accessCookieName, "", time.Time{}))
	c.SetCookie(h.authCookie(refreshCookieName, "", time.Time{}))
}

func (h *Handler) authCookie(name, value string, expiresAt time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		cookie.MaxAge = -1
		return cookie
	}
	cookie.Expires = expiresAt
	cookie.MaxAge = int(time.Until(expiresAt).Seconds())
	return cookie
}
