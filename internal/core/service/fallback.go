package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/authpractice/todo-service/internal/api/metrics"
	"github.com/authpractice/todo-service/internal/core/domain"
	"github.com/authpractice/todo-service/internal/core/ports"
)

const (
	mockTitle              = "Mock Todo (Database Unavailable)"
	mockDescription        = "This is a mock todo created because the database is not available in development."
	mockUpdatedTitle       = "Mock Updated Todo (Database Unavailable)"
	mockUpdatedDescription = "This todo was updated in mock mode because the database is not available in development."
)

// FallbackRepository is the development-mode switch: it wraps a repository
// and, when the store fails, answers with fabricated success values instead
// of the error. Validation and not-found errors pass through untouched.
//
// Only construct it when development fallback is explicitly enabled.
type FallbackRepository struct {
	next   ports.TodoRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewFallbackRepository(next ports.TodoRepository, logger zerolog.Logger) *FallbackRepository {
	return &FallbackRepository{next: next, logger: logger, now: time.Now}
}

func (r *FallbackRepository) ListAll(ctx context.Context) ([]domain.Todo, error) {
	todos, err := r.next.ListAll(ctx)
	if r.masks("list", err) {
		return []domain.Todo{}, nil
	}
	return todos, err
}

// FindByID has no sensible fabricated answer, so it is never masked.
func (r *FallbackRepository) FindByID(ctx context.Context, id int64) (*domain.Todo, error) {
	return r.next.FindByID(ctx, id)
}

func (r *FallbackRepository) Insert(ctx context.Context, in domain.NewTodo) (*domain.Todo, error) {
	todo, err := r.next.Insert(ctx, in)
	if r.masks("create", err) {
		now := r.now().UTC()
		return &domain.Todo{
			ID:          now.UnixMilli(),
			Title:       mockTitle,
			Description: mockDescription,
			Completed:   false,
			Priority:    domain.PriorityMedium,
			CreatedAt:   now,
			UpdatedAt:   now,
		}, nil
	}
	return todo, err
}

func (r *FallbackRepository) Replace(ctx context.Context, id int64, in domain.TodoReplacement) (*domain.Todo, error) {
	todo, err := r.next.Replace(ctx, id, in)
	if r.masks("replace", err) {
		mock := r.placeholder(id)
		mock.Title = in.Title
		mock.Description = in.Description
		mock.Completed = in.Completed
		return &mock, nil
	}
	return todo, err
}

func (r *FallbackRepository) Merge(ctx context.Context, id int64, patch domain.TodoPatch) (*domain.Todo, error) {
	todo, err := r.next.Merge(ctx, id, patch)
	if r.masks("update", err) {
		mock, mergeErr := domain.Merge(r.placeholder(id), patch)
		if mergeErr != nil {
			return nil, mergeErr
		}
		return &mock, nil
	}
	return todo, err
}

func (r *FallbackRepository) Delete(ctx context.Context, id int64) (bool, error) {
	removed, err := r.next.Delete(ctx, id)
	if r.masks("delete", err) {
		return true, nil
	}
	return removed, err
}

func (r *FallbackRepository) placeholder(id int64) domain.Todo {
	now := r.now().UTC()
	return domain.Todo{
		ID:          id,
		Title:       mockUpdatedTitle,
		Description: mockUpdatedDescription,
		Priority:    domain.PriorityMedium,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// masks reports whether err is a storage failure to hide, logging it first.
func (r *FallbackRepository) masks(operation string, err error) bool {
	if err == nil || !domain.IsStorageFailure(err) {
		return false
	}
	metrics.FallbackResponsesTotal.WithLabelValues(operation).Inc()
	r.logger.Warn().
		Err(err).
		Str("operation", operation).
		Msg("storage failed; serving development fallback response")
	return true
}
