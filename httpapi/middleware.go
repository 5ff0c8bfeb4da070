package httpapi

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	ctxKeyUserID      = "sessionauth.userID"
	ctxKeyAccessToken = "sessionauth.accessToken"
)

// RequireAuth validates the access token before the handler runs. The token
// is read from the Authorization header first, then from the access-token
// cookie, so both API clients and browsers pass the same guard.
func (h *Handler) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			if cookie, err := c.Cookie(accessCookieName); err == nil {
				token = cookie.Value
			}
		}

		result, err := h.engine.ValidateAccess(c.Request().Context(), token)
		if err != nil {
			return mapAuthError(err)
		}

		c.Set(ctxKeyUserID, result.UserID)
		c.Set(ctxKeyAccessToken, token)
		return next(c)
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func userIDFrom(c echo.Context) string {
	id, _ := c.Get(ctxKeyUserID).(string)
	return id
}

func accessTokenFrom(c echo.Context) string {
	token, _ := c.Get(ctxKeyAccessToken).(string)
	return token
}
