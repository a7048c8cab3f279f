package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/authpractice/todo-service/internal/api/metrics"
	"github.com/authpractice/todo-service/internal/core/domain"
	"github.com/authpractice/todo-service/internal/core/ports"
)

const historyLimit = 50

// TodoService validates input, calls the repository and records an audit
// trail of successful mutations.
type TodoService struct {
	repo   ports.TodoRepository
	audit  ports.AuditRepository
	logger zerolog.Logger
	now    func() time.Time
}

// NewTodoService wires the service. audit may be nil, in which case no trail
// is kept.
func NewTodoService(repo ports.TodoRepository, audit ports.AuditRepository, logger zerolog.Logger) *TodoService {
	return &TodoService{repo: repo, audit: audit, logger: logger, now: time.Now}
}

func (s *TodoService) List(ctx context.Context) ([]domain.Todo, error) {
	todos, err := s.repo.ListAll(ctx)
	observe("list", err)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	if todos == nil {
		todos = []domain.Todo{}
	}
	return todos, nil
}

func (s *TodoService) Get(ctx context.Context, id int64) (*domain.Todo, error) {
	todo, err := s.repo.FindByID(ctx, id)
	observe("get", err)
	if err != nil {
		return nil, fmt.Errorf("get todo %d: %w", id, err)
	}
	return todo, nil
}

// Create rejects a blank title before any storage call.
func (s *TodoService) Create(ctx context.Context, in ports.CreateTodoInput) (*domain.Todo, error) {
	if strings.TrimSpace(in.Title) == "" {
		err := domain.NewValidationError("title", "Title is required")
		observe("create", err)
		return nil, err
	}

	var priority domain.Priority
	if in.Priority != "" {
		p, err := domain.ParsePriority(in.Priority)
		if err != nil {
			observe("create", err)
			return nil, err
		}
		priority = p
	}

	todo, err := s.repo.Insert(ctx, domain.NewTodo{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Priority:    priority,
		Tags:        in.Tags,
	}.WithDefaults())
	observe("create", err)
	if err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}

	s.logger.Info().Int64("todo_id", todo.ID).Str("actor", in.Actor).Msg("todo created")
	s.record(ctx, domain.AuditCreated, todo, in.Actor)
	return todo, nil
}

func (s *TodoService) Replace(ctx context.Context, in ports.ReplaceTodoInput) (*domain.Todo, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		err := domain.NewValidationError("title", "Title cannot be empty")
		observe("replace", err)
		return nil, err
	}

	todo, err := s.repo.Replace(ctx, in.ID, domain.TodoReplacement{
		Title:       title,
		Description: in.Description,
		Completed:   in.Completed,
	})
	observe("replace", err)
	if err != nil {
		return nil, fmt.Errorf("replace todo %d: %w", in.ID, err)
	}

	s.record(ctx, domain.AuditReplaced, todo, in.Actor)
	return todo, nil
}

// Update merges the patch against the stored row. A title that is present
// but blank is rejected here so the store is never touched.
func (s *TodoService) Update(ctx context.Context, in ports.UpdateTodoInput) (*domain.Todo, error) {
	if in.Patch.Title.Present() && strings.TrimSpace(in.Patch.Title.Value) == "" {
		err := domain.NewValidationError("title", "Title cannot be empty")
		observe("update", err)
		return nil, err
	}

	todo, err := s.repo.Merge(ctx, in.ID, in.Patch)
	observe("update", err)
	if err != nil {
		return nil, fmt.Errorf("update todo %d: %w", in.ID, err)
	}

	s.record(ctx, domain.AuditUpdated, todo, in.Actor)
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, id int64, actor string) error {
	removed, err := s.repo.Delete(ctx, id)
	if err == nil && !removed {
		err = domain.ErrTodoNotFound
	}
	observe("delete", err)
	if err != nil {
		return fmt.Errorf("delete todo %d: %w", id, err)
	}

	s.record(ctx, domain.AuditDeleted, &domain.Todo{ID: id}, actor)
	return nil
}

func (s *TodoService) History(ctx context.Context, id int64) ([]domain.AuditEntry, error) {
	if s.audit == nil {
		return []domain.AuditEntry{}, nil
	}
	entries, err := s.audit.ListByTodo(ctx, id, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("todo %d history: %w", id, err)
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	return entries, nil
}

// record writes the audit entry; failures are logged and never surface.
func (s *TodoService) record(ctx context.Context, action domain.AuditAction, todo *domain.Todo, actor string) {
	if s.audit == nil {
		return
	}
	entry := domain.AuditEntry{
		TodoID:    todo.ID,
		Action:    action,
		Actor:     actor,
		Title:     todo.Title,
		Completed: todo.Completed,
		Timestamp: s.now().UTC(),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		metrics.AuditErrorsTotal.Inc()
		s.logger.Warn().Err(err).Int64("todo_id", todo.ID).Str("action", string(action)).Msg("failed to record audit entry")
	}
}

func observe(operation string, err error) {
	metrics.TodoOperationsTotal.WithLabelValues(operation, metrics.Outcome(err)).Inc()
}

