package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/authpractice/todo-service/internal/core/domain"
)

func newFallback(repo *stubTodoRepo) *FallbackRepository {
	fb := NewFallbackRepository(repo, discardLogger)
	fb.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return fb
}

func TestFallback_ListMasksStorageFailure(t *testing.T) {
	for _, storeErr := range []error{
		domain.ErrStorageUnavailable,
		fmt.Errorf("%w: list: boom", domain.ErrStorage),
	} {
		repo := newStubTodoRepo()
		repo.err = storeErr

		todos, err := newFallback(repo).ListAll(context.Background())
		if err != nil {
			t.Fatalf("expected masked error for %v, got %v", storeErr, err)
		}
		if todos == nil || len(todos) != 0 {
			t.Fatalf("expected empty list, got %#v", todos)
		}
	}
}

func TestFallback_InsertReturnsMock(t *testing.T) {
	repo := newStubTodoRepo()
	repo.err = domain.ErrStorageUnavailable
	fb := newFallback(repo)

	todo, err := fb.Insert(context.Background(), domain.NewTodo{Title: "Buy milk"})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if todo.Title != mockTitle || todo.Description != mockDescription {
		t.Fatalf("unexpected mock todo: %+v", todo)
	}
	if todo.ID != fb.now().UnixMilli() {
		t.Fatalf("expected timestamp id, got %d", todo.ID)
	}
	if todo.Completed || todo.Priority != domain.PriorityMedium {
		t.Fatalf("unexpected mock defaults: %+v", todo)
	}
}

func TestFallback_MergeAppliesPatchToPlaceholder(t *testing.T) {
	repo := newStubTodoRepo()
	repo.err = domain.ErrStorageUnavailable

	todo, err := newFallback(repo).Merge(context.Background(), 5, domain.TodoPatch{Completed: domain.Some(true)})
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if todo.ID != 5 || !todo.Completed || todo.Title != mockUpdatedTitle {
		t.Fatalf("unexpected mock merge result: %+v", todo)
	}
}

func TestFallback_ReplaceEchoesInput(t *testing.T) {
	repo := newStubTodoRepo()
	repo.err = domain.ErrStorageUnavailable

	todo, err := newFallback(repo).Replace(context.Background(), 3, domain.TodoReplacement{Title: "x", Completed: true})
	if err != nil {
		t.Fatalf("Replace returned error: %v", err)
	}
	if todo.ID != 3 || todo.Title != "x" || !todo.Completed {
		t.Fatalf("unexpected mock replace result: %+v", todo)
	}
}

func TestFallback_DeleteReportsSuccess(t *testing.T) {
	repo := newStubTodoRepo()
	repo.err = domain.ErrStorageUnavailable

	removed, err := newFallback(repo).Delete(context.Background(), 999)
	if err != nil || !removed {
		t.Fatalf("expected masked delete, got removed=%v err=%v", removed, err)
	}
}

func TestFallback_DoesNotMaskNotFound(t *testing.T) {
	fb := newFallback(newStubTodoRepo())

	if _, err := fb.Merge(context.Background(), 999, domain.TodoPatch{Completed: domain.Some(true)}); !errors.Is(err, domain.ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound from Merge, got %v", err)
	}
	if _, err := fb.FindByID(context.Background(), 999); !errors.Is(err, domain.ErrTodoNotFound) {
		t.Fatalf("expected ErrTodoNotFound from FindByID, got %v", err)
	}
	removed, err := fb.Delete(context.Background(), 999)
	if err != nil || removed {
		t.Fatalf("expected not removed, got removed=%v err=%v", removed, err)
	}
}

func TestFallback_DoesNotMaskValidation(t *testing.T) {
	repo := newStubTodoRepo()
	repo.err = domain.NewValidationError("title", "Title cannot be empty")

	if _, err := newFallback(repo).Merge(context.Background(), 1, domain.TodoPatch{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestFallback_MockMergeStillValidates(t *testing.T) {
	repo := newStubTodoRepo()
	repo.err = domain.ErrStorageUnavailable

	_, err := newFallback(repo).Merge(context.Background(), 1, domain.TodoPatch{Priority: domain.Some("urgent")})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestFallback_ThroughService(t *testing.T) {
	repo := newStubTodoRepo()
	repo.err = domain.ErrStorageUnavailable
	svc := NewTodoService(newFallback(repo), nil, discardLogger)

	list, err := svc.List(context.Background())
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %v %v", list, err)
	}
	if err := svc.Delete(context.Background(), 1, "admin"); err != nil {
		t.Fatalf("expected masked delete, got %v", err)
	}
}
