package handler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/authpractice/todo-service/internal/core/domain"
)

const dateLayout = "2006-01-02"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// dueDate accepts a calendar date or a full RFC 3339 timestamp and keeps the
// date part.
type dueDate struct {
	time.Time
}

func (d *dueDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("due_date must be a string")
	}
	for _, layout := range []string{dateLayout, time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, day := t.Date()
			d.Time = time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
			return nil
		}
	}
	return fmt.Errorf("due_date must be YYYY-MM-DD")
}

// --- Request types ---

type createTodoRequest struct {
	Title       string   `json:"title"       validate:"max=500"`
	Description string   `json:"description" validate:"max=5000"`
	DueDate     *dueDate `json:"due_date"`
	Priority    string   `json:"priority"`
	Tags        []string `json:"tags"        validate:"omitempty,max=20,dive,max=50"`
}

// updateTodoRequest is a merge-patch body: only keys present in the JSON
// document change the stored row.
type updateTodoRequest struct {
	Title       domain.Optional[string]   `json:"title"`
	Description domain.Optional[string]   `json:"description"`
	Completed   domain.Optional[bool]     `json:"completed"`
	DueDate     domain.Optional[dueDate]  `json:"due_date"`
	Priority    domain.Optional[string]   `json:"priority"`
	Tags        domain.Optional[[]string] `json:"tags"`
}

// replaceTodoRequest must carry all three fields.
type replaceTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// fieldLimits applies the create-time length rules to merge-patch values.
type fieldLimits struct {
	Title       string   `json:"title"       validate:"max=500"`
	Description string   `json:"description" validate:"max=5000"`
	Tags        []string `json:"tags"        validate:"omitempty,max=20,dive,max=50"`
}

func (r updateTodoRequest) limits() fieldLimits {
	return fieldLimits{Title: r.Title.Value, Description: r.Description.Value, Tags: r.Tags.Value}
}

func (r updateTodoRequest) toPatch() domain.TodoPatch {
	patch := domain.TodoPatch{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		Priority:    r.Priority,
		Tags:        r.Tags,
	}
	switch {
	case r.DueDate.Present():
		patch.DueDate = domain.Some(r.DueDate.Value.Time)
	case r.DueDate.Null:
		patch.DueDate = domain.Null[time.Time]()
	}
	return patch
}

// --- Response types ---

type todoResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	DueDate     *string   `json:"due_date"`
	Priority    string    `json:"priority"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type auditEntryResponse struct {
	Action    string    `json:"action"`
	Actor     string    `json:"actor,omitempty"`
	Title     string    `json:"title,omitempty"`
	Completed bool      `json:"completed"`
	Timestamp time.Time `json:"timestamp"`
}

func toTodoResponse(t *domain.Todo) todoResponse {
	resp := todoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    string(t.Priority),
		Tags:        t.Tags,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.DueDate != nil {
		s := t.DueDate.Format(dateLayout)
		resp.DueDate = &s
	}
	return resp
}

func toTodoListResponse(todos []domain.Todo) []todoResponse {
	out := make([]todoResponse, 0, len(todos))
	for i := range todos {
		out = append(out, toTodoResponse(&todos[i]))
	}
	return out
}

func toAuditResponse(entries []domain.AuditEntry) []auditEntryResponse {
	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditEntryResponse{
			Action:    string(e.Action),
			Actor:     e.Actor,
			Title:     e.Title,
			Completed: e.Completed,
			Timestamp: e.Timestamp,
		})
	}
	return out
}
