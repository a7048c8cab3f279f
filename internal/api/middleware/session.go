package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/authpractice/todo-service/internal/core/domain"
	"github.com/authpractice/todo-service/internal/core/ports"
)

const sessionKey = "session"

// Session reads the session token from the named cookie and from an
// "Authorization: Bearer" header, in that order, and stores the first one
// that decodes in the context. Missing or invalid tokens leave the request
// anonymous; the Guard decides what that means.
func Session(gate ports.AuthGate, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, token := range []string{cookieToken(c, cookieName), bearerToken(c)} {
				if token == "" {
					continue
				}
				if session, err := gate.ParseToken(token); err == nil {
					c.Set(sessionKey, session)
					break
				}
			}
			return next(c)
		}
	}
}

// SessionFrom returns the session stored by Session, or nil.
func SessionFrom(c echo.Context) *domain.Session {
	s, _ := c.Get(sessionKey).(*domain.Session)
	return s
}

func cookieToken(c echo.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
