package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/authpractice/todo-service/internal/core/domain"
	"github.com/authpractice/todo-service/internal/core/ports"
)

const todoColumns = `id, title, description, completed, due_date, priority, tags, created_at, updated_at`

// DB is the part of *pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TodoRepository implements ports.TodoRepository on PostgreSQL.
type TodoRepository struct {
	db DB
}

// NewTodoRepository wraps pool. A nil pool yields a repository that reports
// every call as domain.ErrStorageUnavailable.
func NewTodoRepository(pool *pgxpool.Pool) ports.TodoRepository {
	if pool == nil {
		return &TodoRepository{}
	}
	return &TodoRepository{db: pool}
}

func (r *TodoRepository) ListAll(ctx context.Context) ([]domain.Todo, error) {
	if r.db == nil {
		return nil, classify("list todos", nil, true)
	}

	rows, err := r.db.Query(ctx, `SELECT `+todoColumns+` FROM todos ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, classify("list todos", err, false)
	}
	defer rows.Close()

	todos := []domain.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, classify("scan todo", err, false)
		}
		todos = append(todos, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list todos", err, false)
	}
	return todos, nil
}

func (r *TodoRepository) FindByID(ctx context.Context, id int64) (*domain.Todo, error) {
	if r.db == nil {
		return nil, classify("find todo", nil, true)
	}

	row := r.db.QueryRow(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id)
	t, err := scanTodo(row)
	if err != nil {
		return nil, classify("find todo", err, false)
	}
	return t, nil
}

func (r *TodoRepository) Insert(ctx context.Context, in domain.NewTodo) (*domain.Todo, error) {
	if r.db == nil {
		return nil, classify("insert todo", nil, true)
	}
	in = in.WithDefaults()

	row := r.db.QueryRow(ctx, `
		INSERT INTO todos (title, description, due_date, priority, tags)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+todoColumns,
		in.Title, in.Description, in.DueDate, string(in.Priority), in.Tags,
	)
	t, err := scanTodo(row)
	if err != nil {
		return nil, classify("insert todo", err, false)
	}
	return t, nil
}

func (r *TodoRepository) Replace(ctx context.Context, id int64, in domain.TodoReplacement) (*domain.Todo, error) {
	if r.db == nil {
		return nil, classify("replace todo", nil, true)
	}

	row := r.db.QueryRow(ctx, `
		UPDATE todos SET title = $2, description = $3, completed = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+todoColumns,
		id, in.Title, in.Description, in.Completed,
	)
	t, err := scanTodo(row)
	if err != nil {
		return nil, classify("replace todo", err, false)
	}
	return t, nil
}

// Merge reads the row, merges in memory and writes every mergeable column
// back. Concurrent merges race; the last write wins.
func (r *TodoRepository) Merge(ctx context.Context, id int64, patch domain.TodoPatch) (*domain.Todo, error) {
	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := domain.Merge(*current, patch)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `
		UPDATE todos
		SET title = $2, description = $3, completed = $4, due_date = $5, priority = $6, tags = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+todoColumns,
		id, next.Title, next.Description, next.Completed, next.DueDate, string(next.Priority), next.Tags,
	)
	t, err := scanTodo(row)
	if err != nil {
		return nil, classify("merge todo", err, false)
	}
	return t, nil
}

func (r *TodoRepository) Delete(ctx context.Context, id int64) (bool, error) {
	if r.db == nil {
		return false, classify("delete todo", nil, true)
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return false, classify("delete todo", err, false)
	}
	return tag.RowsAffected() > 0, nil
}

func scanTodo(row pgx.Row) (*domain.Todo, error) {
	var (
		t        domain.Todo
		priority string
	)
	if err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Completed, &t.DueDate,
		&priority, &t.Tags, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p, err := domain.ParsePriority(priority)
	if err != nil {
		return nil, fmt.Errorf("row %d: unexpected priority %q", t.ID, priority)
	}
	t.Priority = p
	return &t, nil
}
