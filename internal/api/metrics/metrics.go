// Package metrics defines and registers all custom Prometheus metrics for the
// todo service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed by the router on GET /metrics.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/authpractice/todo-service/internal/core/domain"
)

const namespace = "todo"

// ── Todo metrics ──────────────────────────────────────────────────────────────

// TodoOperationsTotal counts todo use-case calls.
// Labels:
//   - operation: list, get, create, replace, update, delete
//   - outcome: ok, validation, not_found, unavailable, error
var TodoOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of todo operations, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// FallbackResponsesTotal counts storage failures masked by development mode.
var FallbackResponsesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fallback_responses_total",
		Help:      "Total number of fabricated responses served because storage failed in development mode.",
	},
	[]string{"operation"},
)

// CacheLookupsTotal counts list cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var CacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Total number of todo list cache lookups, labelled by result.",
	},
	[]string{"result"},
)

// AuditErrorsTotal counts audit entries that could not be written.
var AuditErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_errors_total",
		Help:      "Total number of audit trail writes that failed.",
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// SignInAttemptsTotal counts sign-in attempts.
// Label:
//   - result: "success" or "denied"
var SignInAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signin_attempts_total",
		Help:      "Total number of sign-in attempts, labelled by result.",
	},
	[]string{"result"},
)

// GuardRedirectsTotal counts unauthenticated requests sent to sign-in.
var GuardRedirectsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_redirects_total",
		Help:      "Total number of requests redirected to sign-in by the route guard.",
	},
)

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestDuration measures request latency per route template.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests, by method, route and status code.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)

// Outcome maps an error from the todo layer to the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrTodoNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

// Middleware records HTTPRequestDuration for every request.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			var he *echo.HTTPError
			if err != nil && errors.As(err, &he) {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			HTTPRequestDuration.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}
