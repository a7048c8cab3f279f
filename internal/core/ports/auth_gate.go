package ports

import (
	"time"

	"github.com/authpractice/todo-service/internal/core/domain"
)

// AuthGate validates credentials and issues/reads signed session tokens.
type AuthGate interface {
	// Authorize returns nil for any mismatch or missing field; it never fails.
	Authorize(username, password string) *domain.Identity
	IssueToken(identity domain.Identity) (token string, expiresAt time.Time, err error)
	ParseToken(token string) (*domain.Session, error)
}
