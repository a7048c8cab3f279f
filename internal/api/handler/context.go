package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/authpractice/todo-service/internal/api/middleware"
	"github.com/authpractice/todo-service/internal/core/domain"
)

// currentSession returns the signed-in session, or nil for anonymous
// requests. Handlers only ever see {id, username}.
func currentSession(c echo.Context) *domain.Session {
	return middleware.SessionFrom(c)
}

// actor names the caller in logs and the audit trail.
func actor(c echo.Context) string {
	if s := currentSession(c); s != nil {
		return s.Username
	}
	return ""
}
