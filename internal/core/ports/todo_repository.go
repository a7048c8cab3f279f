package ports

import (
	"context"

	"github.com/authpractice/todo-service/internal/core/domain"
)

// TodoRepository is the query layer over the todos table. Every method is a
// single storage round trip except Merge, which reads then writes.
//
// Failures are reported as domain.ErrTodoNotFound, domain.ErrStorageUnavailable
// or domain.ErrStorage (wrapping the driver error).
type TodoRepository interface {
	// ListAll returns every todo ordered by created_at descending.
	ListAll(ctx context.Context) ([]domain.Todo, error)
	FindByID(ctx context.Context, id int64) (*domain.Todo, error)
	Insert(ctx context.Context, in domain.NewTodo) (*domain.Todo, error)
	// Replace overwrites title, description and completed unconditionally.
	Replace(ctx context.Context, id int64, in domain.TodoReplacement) (*domain.Todo, error)
	// Merge applies domain.Merge against the stored row and writes it back.
	Merge(ctx context.Context, id int64, patch domain.TodoPatch) (*domain.Todo, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id int64) (bool, error)
}
