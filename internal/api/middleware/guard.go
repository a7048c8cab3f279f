package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/authpractice/todo-service/internal/api/metrics"
	"github.com/authpractice/todo-service/internal/core/guard"
)

// Guard redirects anonymous requests for protected paths to sign-in. It must
// run after Session.
func Guard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := guard.Decide(c.Request().URL.Path, SessionFrom(c) != nil)
			if d.Redirect {
				metrics.GuardRedirectsTotal.Inc()
				return c.Redirect(http.StatusTemporaryRedirect, d.Location)
			}
			return next(c)
		}
	}
}
