package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	sessionauth "github.com/interviewly/sessionauth"
)

// Handler exposes the engine over HTTP. Tokens travel as HttpOnly cookies
// and, for non-browser clients, in JSON bodies and the Authorization
// header.
type Handler struct {
	engine        *sessionauth.Engine
	logger        *slog.Logger
	secureCookies bool
}

// New creates a Handler. secureCookies should be true everywhere except
// local development over plain HTTP.
func New(engine *sessionauth.Engine, logger *slog.Logger, secureCookies bool) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{engine: engine, logger: logger, secureCookies: secureCookies}
}

// Register mounts all routes on e under /api/v1.
func (h *Handler) Register(e *echo.Echo) {
	users := e.Group("/api/v1/users")
	users.POST("/register", h.handleRegister)
	users.POST("/login", h.handleLogin)
	users.POST("/refresh-token", h.handleRefresh)
	users.POST("/logout", h.handleLogout, h.RequireAuth)
	users.POST("/change-password", h.handleChangePassword, h.RequireAuth)
	users.GET("/me", h.handleMe, h.RequireAuth)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
}

type userView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func viewOf(user sessionauth.UserRecord) userView {
	return userView{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

type tokenView struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return httpError(http.StatusBadRequest, "invalid_input", "malformed request body")
	}

	user, err := h.engine.Register(c.Request().Context(), sessionauth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return h.fail(c, "register", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"user": viewOf(user)})
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

func (r loginRequest) identifier() string {
	switch {
	case r.Identifier != "":
		return r.Identifier
	case r.Username != "":
		return r.Username
	default:
		return r.Email
	}
}

func (h *Handler) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return httpError(http.StatusBadRequest, "invalid_input", "malformed request body")
	}

	pair, err := h.engine.Login(c.Request().Context(), req.identifier(), req.Password)
	if err != nil {
		return h.fail(c, "login", err)
	}

	h.setAuthCookies(c, pair)
	return c.JSON(http.StatusOK, echo.Map{
		"tokens": tokenView{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) handleRefresh(c echo.Context) error {
	// Cookie first; the body is consulted only when no cookie is present,
	// never as a second attempt after a cookie failure.
	presented := ""
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		presented = cookie.Value
	}
	if presented == "" {
		var req refreshRequest
		if err := c.Bind(&req); err == nil {
			presented = req.RefreshToken
		}
	}

	pair, err := h.engine.Refresh(c.Request().Context(), presented)
	if err != nil {
		return h.fail(c, "refresh", err)
	}

	h.setAuthCookies(c, pair)
	return c.JSON(http.StatusOK, echo.Map{
		"tokens": tokenView{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
	})
}

func (h *Handler) handleLogout(c echo.Context) error {
	// Cookies are cleared regardless of store state; a dead store must not
	// leave the browser holding tokens.
	h.clearAuthCookies(c)

	if err := h.engine.Logout(c.Request().Context(), userIDFrom(c)); err != nil {
		return h.fail(c, "logout", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) handleChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return httpError(http.StatusBadRequest, "invalid_input", "malformed request body")
	}

	if err := h.engine.ChangePassword(c.Request().Context(), userIDFrom(c), req.OldPassword, req.NewPassword); err != nil {
		return h.fail(c, "change password", err)
	}

	// The refresh token was revoked server-side; drop the cookies too.
	h.clearAuthCookies(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}

func (h *Handler) handleMe(c echo.Context) error {
	user, err := h.engine.CurrentUser(c.Request().Context(), accessTokenFrom(c))
	if err != nil {
		return h.fail(c, "current user", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": viewOf(user)})
}

// fail maps err to its HTTP form and logs server-side failures. Client
// faults (4xx) are not logged.
func (h *Handler) fail(c echo.Context, op string, err error) error {
	httpErr := mapAuthError(err)
	if httpErr.Code >= http.StatusInternalServerError {
		h.logger.ErrorContext(c.Request().Context(), op+" failed", "error", err)
	}
	return httpErr
}
