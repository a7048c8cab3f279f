package ports

import (
	"context"
	"time"

	"github.com/authpractice/todo-service/internal/core/domain"
)

// CreateTodoInput is the DTO passed from the transport layer to TodoService.
type CreateTodoInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    string // empty = default
	Tags        []string
	Actor       string
}

// ReplaceTodoInput carries a full-replace update.
type ReplaceTodoInput struct {
	ID          int64
	Title       string
	Description string
	Completed   bool
	Actor       string
}

// UpdateTodoInput carries a merge-patch update.
type UpdateTodoInput struct {
	ID    int64
	Patch domain.TodoPatch
	Actor string
}

// TodoService defines use-case operations for todos.
type TodoService interface {
	List(ctx context.Context) ([]domain.Todo, error)
	Get(ctx context.Context, id int64) (*domain.Todo, error)
	Create(ctx context.Context, in CreateTodoInput) (*domain.Todo, error)
	Replace(ctx context.Context, in ReplaceTodoInput) (*domain.Todo, error)
	Update(ctx context.Context, in UpdateTodoInput) (*domain.Todo, error)
	Delete(ctx context.Context, id int64, actor string) error
	History(ctx context.Context, id int64) ([]domain.AuditEntry, error)
}
