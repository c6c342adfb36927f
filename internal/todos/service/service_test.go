package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/changefeed"
	"github.com/pitlane-hq/pitlane/internal/clock"
	todosdomain "github.com/pitlane-hq/pitlane/internal/todos/domain"
	"github.com/pitlane-hq/pitlane/internal/todos/repository"
	"github.com/pitlane-hq/pitlane/pkg/db"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) todosdomain.Service {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&todosdomain.Todo{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	clk := clock.NewFakeClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	return New(zap.NewNop(), repository.New(dbConn), changefeed.NewHub(), node, clk)
}

func mustCreateTodo(t *testing.T, svc todosdomain.Service, departmentID snowflake.ID, kind, title string) *todosdomain.Todo {
	t.Helper()
	todo, err := svc.Create(context.Background(), todosdomain.CreateTodoRequest{
		StoreID:      snowflake.ID(1),
		DepartmentID: departmentID,
		Kind:         kind,
		Title:        title,
	})
	if err != nil {
		t.Fatalf("failed to create %s: %v", kind, err)
	}
	return todo
}

func TestOpenCountsSplitByKind(t *testing.T) {
	svc := newTestService(t)
	departmentID := snowflake.ID(10)

	mustCreateTodo(t, svc, departmentID, todosdomain.KindTodo, "Order shop supplies")
	mustCreateTodo(t, svc, departmentID, todosdomain.KindTodo, "Call vendor")
	issue := mustCreateTodo(t, svc, departmentID, todosdomain.KindIssue, "Lift three is down")

	counts, err := svc.Counts(context.Background(), departmentID)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if counts.Todos != 2 || counts.Issues != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	if _, err := svc.Complete(context.Background(), issue.ID.String()); err != nil {
		t.Fatalf("failed to complete: %v", err)
	}
	counts, err = svc.Counts(context.Background(), departmentID)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if counts.Issues != 0 {
		t.Fatalf("expected resolved issue excluded, got %+v", counts)
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	todo := mustCreateTodo(t, svc, snowflake.ID(10), todosdomain.KindTodo, "One-shot task")

	first, err := svc.Complete(context.Background(), todo.ID.String())
	if err != nil {
		t.Fatalf("failed to complete: %v", err)
	}
	second, err := svc.Complete(context.Background(), todo.ID.String())
	if err != nil {
		t.Fatalf("failed to re-complete: %v", err)
	}
	if !first.CompletedAt.Equal(*second.CompletedAt) {
		t.Fatal("expected completion time unchanged on repeat")
	}
}

func TestReopenClearsCompletion(t *testing.T) {
	svc := newTestService(t)
	todo := mustCreateTodo(t, svc, snowflake.ID(10), todosdomain.KindIssue, "Recurring issue")

	if _, err := svc.Complete(context.Background(), todo.ID.String()); err != nil {
		t.Fatalf("failed to complete: %v", err)
	}
	reopened, err := svc.Reopen(context.Background(), todo.ID.String())
	if err != nil {
		t.Fatalf("failed to reopen: %v", err)
	}
	if reopened.CompletedAt != nil {
		t.Fatal("expected completion cleared")
	}
}

func TestListOpenOnlyFiltersCompleted(t *testing.T) {
	svc := newTestService(t)
	departmentID := snowflake.ID(10)

	open := mustCreateTodo(t, svc, departmentID, todosdomain.KindTodo, "Still open")
	closed := mustCreateTodo(t, svc, departmentID, todosdomain.KindTodo, "Already done")
	if _, err := svc.Complete(context.Background(), closed.ID.String()); err != nil {
		t.Fatalf("failed to complete: %v", err)
	}

	todos, err := svc.List(context.Background(), departmentID, todosdomain.KindTodo, true)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(todos) != 1 || todos[0].ID != open.ID {
		t.Fatalf("expected only the open todo, got %+v", todos)
	}
}
