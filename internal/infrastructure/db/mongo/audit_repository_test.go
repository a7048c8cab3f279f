package mongo

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/authpractice/todo-service/internal/core/domain"
)

func TestAuditRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("record", func(mt *mtest.T) {
		repo := NewAuditRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.Record(context.Background(), domain.AuditEntry{
			TodoID:    7,
			Action:    domain.AuditCreated,
			Actor:     "admin",
			Title:     "Buy milk",
			Timestamp: time.Now(),
		})
		if err != nil {
			mt.Fatalf("Record returned error: %v", err)
		}
	})

	mt.Run("record failure", func(mt *mtest.T) {
		repo := NewAuditRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key",
		}))

		if err := repo.Record(context.Background(), domain.AuditEntry{TodoID: 7}); err == nil {
			mt.Fatalf("expected error")
		}
	})

	mt.Run("list by todo", func(mt *mtest.T) {
		repo := NewAuditRepository(mt.DB)
		ns := mt.DB.Name() + "." + auditCollection
		ts := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "todo_id", Value: int64(7)},
				{Key: "action", Value: "updated"},
				{Key: "completed", Value: true},
				{Key: "timestamp", Value: ts.Add(time.Minute)},
			},
			bson.D{
				{Key: "todo_id", Value: int64(7)},
				{Key: "action", Value: "created"},
				{Key: "title", Value: "Buy milk"},
				{Key: "completed", Value: false},
				{Key: "timestamp", Value: ts},
			},
		))

		entries, err := repo.ListByTodo(context.Background(), 7, 50)
		if err != nil {
			mt.Fatalf("ListByTodo returned error: %v", err)
		}
		if len(entries) != 2 {
			mt.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Action != domain.AuditUpdated || !entries[0].Completed {
			mt.Fatalf("unexpected first entry: %+v", entries[0])
		}
		if entries[1].Title != "Buy milk" || !entries[1].Timestamp.Equal(ts) {
			mt.Fatalf("unexpected second entry: %+v", entries[1])
		}
	})

	mt.Run("list empty", func(mt *mtest.T) {
		repo := NewAuditRepository(mt.DB)
		ns := mt.DB.Name() + "." + auditCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		entries, err := repo.ListByTodo(context.Background(), 9, 50)
		if err != nil {
			mt.Fatalf("ListByTodo returned error: %v", err)
		}
		if entries == nil || len(entries) != 0 {
			mt.Fatalf("expected empty slice, got %#v", entries)
		}
	})
}
