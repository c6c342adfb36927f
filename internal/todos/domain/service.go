package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// OpenCounts summarizes outstanding work for a department.
type OpenCounts struct {
	Todos  int `json:"todos"`
	Issues int `json:"issues"`
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, todo *Todo) error
	FindByID(ctx context.Context, id snowflake.ID) (*Todo, error)
	ListByDepartment(ctx context.Context, departmentID snowflake.ID, kind string, openOnly bool) ([]Todo, error)
	Update(ctx context.Context, todo *Todo) error
	Delete(ctx context.Context, id snowflake.ID) error
	CountOpen(ctx context.Context, departmentID snowflake.ID) (OpenCounts, error)
	CloseIssuesByIDs(ctx context.Context, ids []snowflake.ID, at time.Time) error
}

type Service interface {
	Create(ctx context.Context, req CreateTodoRequest) (*Todo, error)
	Get(ctx context.Context, id string) (*Todo, error)
	List(ctx context.Context, departmentID snowflake.ID, kind string, openOnly bool) ([]Todo, error)
	Update(ctx context.Context, id string, req UpdateTodoRequest) (*Todo, error)
	Complete(ctx context.Context, id string) (*Todo, error)
	Reopen(ctx context.Context, id string) (*Todo, error)
	Delete(ctx context.Context, id string) error
	Counts(ctx context.Context, departmentID snowflake.ID) (OpenCounts, error)
}

type CreateTodoRequest struct {
	StoreID        snowflake.ID
	DepartmentID   snowflake.ID
	AssigneeUserID snowflake.ID
	Kind           string
	Title          string
	Detail         string
	DueAt          *time.Time
}

type UpdateTodoRequest struct {
	Title          *string
	Detail         *string
	AssigneeUserID *snowflake.ID
	DueAt          *time.Time
}

var (
	ErrInvalidTitle = errors.New("invalid_title")
	ErrInvalidKind  = errors.New("invalid_kind")
	ErrInvalidTodo  = errors.New("invalid_todo")
	ErrTodoNotFound = errors.New("todo_not_found")
)
