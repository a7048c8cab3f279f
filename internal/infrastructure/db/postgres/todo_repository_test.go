package postgres

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/authpractice/todo-service/internal/core/domain"
)

var (
	created = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	dueOn   = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
)

func newMockRepo(t *testing.T) (*TodoRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		mock.Close()
	})
	return &TodoRepository{db: mock}, mock
}

func todoRows() *pgxmock.Rows {
	return pgxmock.NewRows(strings.Split(todoColumns, ", "))
}

// addTodo appends t using the Go types scanTodo reads into.
func addTodo(rows *pgxmock.Rows, t domain.Todo) *pgxmock.Rows {
	return rows.AddRow(t.ID, t.Title, t.Description, t.Completed, t.DueDate,
		string(t.Priority), t.Tags, t.CreatedAt, t.UpdatedAt)
}

func stored(id int64) domain.Todo {
	due := dueOn
	return domain.Todo{
		ID:          id,
		Title:       "Write report",
		Description: "quarterly numbers",
		Completed:   false,
		DueDate:     &due,
		Priority:    domain.PriorityHigh,
		Tags:        []string{"work", "q1"},
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestTodoRepository_ListAll_NewestFirst(t *testing.T) {
	repo, mock := newMockRepo(t)

	t3, t2, t1 := stored(3), stored(2), stored(1)
	t2.DueDate, t2.Tags, t2.Priority = nil, nil, domain.PriorityLow
	rows := addTodo(addTodo(addTodo(todoRows(), t3), t2), t1)

	mock.ExpectQuery(regexp.QuoteMeta("FROM todos ORDER BY created_at DESC, id DESC")).
		WillReturnRows(rows)

	list, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll returned error: %v", err)
	}
	if len(list) != 3 || list[0].ID != 3 || list[1].ID != 2 || list[2].ID != 1 {
		t.Fatalf("expected [3 2 1], got %+v", list)
	}
	if list[1].DueDate != nil || list[1].Tags != nil || list[1].Priority != domain.PriorityLow {
		t.Fatalf("null columns not preserved: %+v", list[1])
	}
	if !list[0].DueDate.Equal(dueOn) || !reflect.DeepEqual(list[0].Tags, []string{"work", "q1"}) {
		t.Fatalf("date/tags round trip failed: %+v", list[0])
	}
}

func TestTodoRepository_ListAll_EmptyIsNotNil(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM todos ORDER BY")).WillReturnRows(todoRows())

	list, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll returned error: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", list)
	}
}

func TestTodoRepository_ListAll_ConnectionLost(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM todos ORDER BY")).
		WillReturnError(&pgconn.PgError{Code: "08006"})

	if _, err := repo.ListAll(context.Background()); !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestTodoRepository_Insert_AppliesDefaults(t *testing.T) {
	repo, mock := newMockRepo(t)

	want := domain.Todo{ID: 1, Title: "Buy milk", Priority: domain.PriorityMedium, CreatedAt: created, UpdatedAt: created}
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO todos (title, description, due_date, priority, tags) VALUES ($1, $2, $3, $4, $5) RETURNING")).
		WithArgs("Buy milk", "", (*time.Time)(nil), "medium", []string(nil)).
		WillReturnRows(addTodo(todoRows(), want))

	got, err := repo.Insert(context.Background(), domain.NewTodo{Title: "  Buy milk "})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if got.ID != 1 || got.Title != "Buy milk" || got.Description != "" || got.Completed {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.Priority != domain.PriorityMedium || got.DueDate != nil || got.Tags != nil {
		t.Fatalf("defaults not applied: %+v", got)
	}
}

func TestTodoRepository_Insert_AllFields(t *testing.T) {
	repo, mock := newMockRepo(t)

	row := stored(4)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO todos")).
		WithArgs(row.Title, row.Description, row.DueDate, "high", row.Tags).
		WillReturnRows(addTodo(todoRows(), row))

	got, err := repo.Insert(context.Background(), domain.NewTodo{
		Title: row.Title, Description: row.Description, DueDate: row.DueDate,
		Priority: domain.PriorityHigh, Tags: row.Tags,
	})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if !reflect.DeepEqual(*got, row) {
		t.Fatalf("got %+v, want %+v", *got, row)
	}
}

func TestTodoRepository_Merge_CompletedOnlyKeepsOtherColumns(t *testing.T) {
	repo, mock := newMockRepo(t)

	current := stored(7)
	updated := current
	updated.Completed = true
	updated.UpdatedAt = created.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("FROM todos WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(addTodo(todoRows(), current))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE todos SET title = $2, description = $3, completed = $4, due_date = $5, priority = $6, tags = $7, updated_at = now() WHERE id = $1")).
		WithArgs(int64(7), current.Title, current.Description, true, current.DueDate, "high", current.Tags).
		WillReturnRows(addTodo(todoRows(), updated))

	got, err := repo.Merge(context.Background(), 7, domain.TodoPatch{Completed: domain.Some(true)})
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if !got.Completed {
		t.Fatalf("completed not applied: %+v", got)
	}
	if got.Title != current.Title || got.Description != current.Description ||
		!got.DueDate.Equal(*current.DueDate) || got.Priority != current.Priority ||
		!reflect.DeepEqual(got.Tags, current.Tags) || !got.CreatedAt.Equal(current.CreatedAt) {
		t.Fatalf("unrelated columns changed: %+v", got)
	}
}

func TestTodoRepository_Merge_BlankTitleSkipsWrite(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM todos WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(addTodo(todoRows(), stored(7)))

	_, err := repo.Merge(context.Background(), 7, domain.TodoPatch{Title: domain.Some("   ")})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTodoRepository_Merge_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM todos WHERE id = $1")).
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Merge(context.Background(), 99, domain.TodoPatch{Completed: domain.Some(true)})
	if !errors.Is(err, domain.ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
}

func TestTodoRepository_Replace(t *testing.T) {
	repo, mock := newMockRepo(t)

	row := stored(5)
	row.Title, row.Description, row.Completed = "New", "", true
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE todos SET title = $2, description = $3, completed = $4, updated_at = now() WHERE id = $1")).
		WithArgs(int64(5), "New", "", true).
		WillReturnRows(addTodo(todoRows(), row))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE todos SET title = $2")).
		WithArgs(int64(6), "x", "y", false).
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.Replace(context.Background(), 5, domain.TodoReplacement{Title: "New", Completed: true})
	if err != nil {
		t.Fatalf("Replace returned error: %v", err)
	}
	if got.Title != "New" || !got.Completed || got.Description != "" {
		t.Fatalf("unexpected record: %+v", got)
	}

	_, err = repo.Replace(context.Background(), 6, domain.TodoReplacement{Title: "x", Description: "y"})
	if !errors.Is(err, domain.ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound, got %v", err)
	}
}

func TestTodoRepository_Delete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM todos WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM todos WHERE id = $1")).
		WithArgs(int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM todos WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnError(&pgconn.PgError{Code: "57P01"})

	ctx := context.Background()
	if removed, err := repo.Delete(ctx, 1); err != nil || !removed {
		t.Fatalf("Delete(1) = %v, %v; want true, nil", removed, err)
	}
	if removed, err := repo.Delete(ctx, 2); err != nil || removed {
		t.Fatalf("Delete(2) = %v, %v; want false, nil", removed, err)
	}
	if _, err := repo.Delete(ctx, 3); !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestTodoRepository_FindByID_UnknownPriority(t *testing.T) {
	repo, mock := newMockRepo(t)

	row := stored(8)
	row.Priority = "urgent"
	mock.ExpectQuery(regexp.QuoteMeta("FROM todos WHERE id = $1")).
		WithArgs(int64(8)).
		WillReturnRows(addTodo(todoRows(), row))

	if _, err := repo.FindByID(context.Background(), 8); !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestApplySchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	for _, stmt := range schemaStatements {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}
	if err := applySchema(context.Background(), mock); err != nil {
		t.Fatalf("applySchema returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApplySchema_StopsOnFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(schemaStatements[0])).
		WillReturnError(&pgconn.PgError{Code: "42501", Message: "permission denied"})

	if err := applySchema(context.Background(), mock); !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
