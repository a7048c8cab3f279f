package domain

import (
	"strings"
	"time"
)

// Priority is the urgency bucket of a todo.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority validates s against the known priorities.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", NewValidationError("priority", "Priority must be one of: low, medium, high")
}

// Todo is the single persisted entity. ID, CreatedAt and UpdatedAt are owned
// by storage.
type Todo struct {
	ID          int64
	Title       string
	Description string
	Completed   bool
	DueDate     *time.Time
	Priority    Priority
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTodo carries the fields accepted on insert. Zero values mean "use the
// column default".
type NewTodo struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    Priority
	Tags        []string
}

// WithDefaults fills omitted optional fields.
func (n NewTodo) WithDefaults() NewTodo {
	n.Title = strings.TrimSpace(n.Title)
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}
	return n
}

// TodoReplacement is the body of a full-replace update: every field is
// written as given.
type TodoReplacement struct {
	Title       string
	Description string
	Completed   bool
}

// TodoPatch is a merge-patch body. Absent fields keep the stored value.
type TodoPatch struct {
	Title       Optional[string]
	Description Optional[string]
	Completed   Optional[bool]
	DueDate     Optional[time.Time]
	Priority    Optional[string]
	Tags        Optional[[]string]
}

// IsEmpty reports whether the patch carries no field at all.
func (p TodoPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Completed.Set &&
		!p.DueDate.Set && !p.Priority.Set && !p.Tags.Set
}

// Merge applies patch on top of current and returns the record to persist.
// It never touches ID, CreatedAt or UpdatedAt.
func Merge(current Todo, patch TodoPatch) (Todo, error) {
	next := current

	if patch.Title.Present() {
		next.Title = strings.TrimSpace(patch.Title.Value)
	}
	if strings.TrimSpace(next.Title) == "" {
		return current, NewValidationError("title", "Title cannot be empty")
	}

	if patch.Description.Set {
		next.Description = ""
		if !patch.Description.Null {
			next.Description = patch.Description.Value
		}
	}

	if patch.Completed.Present() {
		next.Completed = patch.Completed.Value
	}

	if patch.DueDate.Set {
		next.DueDate = nil
		if !patch.DueDate.Null {
			d := patch.DueDate.Value
			next.DueDate = &d
		}
	}

	if patch.Priority.Set {
		next.Priority = PriorityMedium
		if !patch.Priority.Null {
			p, err := ParsePriority(patch.Priority.Value)
			if err != nil {
				return current, err
			}
			next.Priority = p
		}
	}

	if patch.Tags.Set {
		next.Tags = nil
		if !patch.Tags.Null {
			next.Tags = append([]string(nil), patch.Tags.Value...)
		}
	}

	return next, nil
}
