package domain

import "time"

// AuditAction names a mutation recorded in the audit trail.
type AuditAction string

const (
	AuditCreated  AuditAction = "created"
	AuditUpdated  AuditAction = "updated"
	AuditReplaced AuditAction = "replaced"
	AuditDeleted  AuditAction = "deleted"
)

// AuditEntry records a single successful mutation of a todo.
type AuditEntry struct {
	TodoID    int64       `json:"todo_id" bson:"todo_id"`
	Action    AuditAction `json:"action" bson:"action"`
	Actor     string      `json:"actor,omitempty" bson:"actor,omitempty"`
	Title     string      `json:"title,omitempty" bson:"title,omitempty"`
	Completed bool        `json:"completed" bson:"completed"`
	Timestamp time.Time   `json:"timestamp" bson:"timestamp"`
}
