package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/authpractice/todo-service/internal/api/metrics"
	"github.com/authpractice/todo-service/internal/core/domain"
	"github.com/authpractice/todo-service/internal/core/guard"
	"github.com/authpractice/todo-service/internal/core/ports"
)

const defaultCallbackURL = "/todos"

// CookieConfig controls the session cookie written on sign-in.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	gate   ports.AuthGate
	cookie CookieConfig
	logger zerolog.Logger
}

func NewAuthHandler(gate ports.AuthGate, cookie CookieConfig, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{gate: gate, cookie: cookie, logger: logger}
}

type signInRequest struct {
	Username    string `json:"username"    form:"username"`
	Password    string `json:"password"    form:"password"`
	CallbackURL string `json:"callbackUrl" form:"callbackUrl" query:"callbackUrl"`
}

type signInResponse struct {
	Token       string          `json:"token"`
	ExpiresAt   time.Time       `json:"expires_at"`
	User        domain.Identity `json:"user"`
	CallbackURL string          `json:"callbackUrl"`
}

type signInPageResponse struct {
	Action      string   `json:"action"`
	Method      string   `json:"method"`
	Fields      []string `json:"fields"`
	CallbackURL string   `json:"callbackUrl"`
}

type sessionResponse struct {
	User *domain.Session `json:"user,omitempty"`
}

// SignInPage handles GET /auth/signin, the target of guard redirects.
//
// @Summary      Describe the sign-in form
// @Tags         auth
// @Produce      json
// @Param        callbackUrl  query     string  false  "Path to return to after sign-in"
// @Success      200          {object}  signInPageResponse
// @Router       /auth/signin [get]
func (h *AuthHandler) SignInPage(c echo.Context) error {
	return c.JSON(http.StatusOK, signInPageResponse{
		Action:      guard.SignInPath,
		Method:      http.MethodPost,
		Fields:      []string{"username", "password"},
		CallbackURL: safeCallback(c.QueryParam("callbackUrl")),
	})
}

// SignIn checks the credential pair and sets the session cookie. Form posts
// are redirected to callbackUrl; JSON callers get the token back.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        body  body      signInRequest  true  "Credentials"
// @Success      200   {object}  signInResponse
// @Success      303
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/signin [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
	}

	identity := h.gate.Authorize(req.Username, req.Password)
	if identity == nil {
		metrics.SignInAttemptsTotal.WithLabelValues("denied").Inc()
		h.logger.Info().Str("remote_ip", c.RealIP()).Msg("sign-in denied")
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Invalid credentials"})
	}

	token, expiresAt, err := h.gate.IssueToken(*identity)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to issue session token")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Failed to sign in"})
	}
	metrics.SignInAttemptsTotal.WithLabelValues("success").Inc()
	h.logger.Info().Str("user_id", identity.ID).Msg("signed in")

	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	if req.CallbackURL == "" {
		req.CallbackURL = c.QueryParam("callbackUrl")
	}
	callback := safeCallback(req.CallbackURL)
	if isFormPost(c) {
		return c.Redirect(http.StatusSeeOther, callback)
	}
	return c.JSON(http.StatusOK, signInResponse{
		Token:       token,
		ExpiresAt:   expiresAt,
		User:        *identity,
		CallbackURL: callback,
	})
}

// SignOut clears the session cookie.
//
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /auth/signout [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, messageResponse{Message: "Signed out"})
}

// Session returns the current session, or an empty object when anonymous.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, sessionResponse{User: currentSession(c)})
}

// safeCallback only allows local absolute paths so sign-in cannot be used as
// an open redirect.
func safeCallback(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return defaultCallbackURL
	}
	return raw
}

func isFormPost(c echo.Context) bool {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	return strings.HasPrefix(ct, echo.MIMEApplicationForm) || strings.HasPrefix(ct, echo.MIMEMultipartForm)
}
