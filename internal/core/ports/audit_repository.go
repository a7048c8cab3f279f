package ports

import (
	"context"

	"github.com/authpractice/todo-service/internal/core/domain"
)

// AuditRepository persists the trail of successful todo mutations.
type AuditRepository interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
	// ListByTodo returns the most recent entries first, at most limit.
	ListByTodo(ctx context.Context, todoID int64, limit int64) ([]domain.AuditEntry, error)
}
