package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// StatusCounts rolls a department's rocks up for one quarter.
type StatusCounts struct {
	OnTrack  int `json:"on_track"`
	OffTrack int `json:"off_track"`
	Done     int `json:"done"`
	Total    int `json:"total"`
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, rock *Rock) error
	FindByID(ctx context.Context, id snowflake.ID) (*Rock, error)
	ListByDepartment(ctx context.Context, departmentID snowflake.ID, year, quarter int) ([]Rock, error)
	Update(ctx context.Context, rock *Rock) error
	Delete(ctx context.Context, id snowflake.ID) error
	CountByStatus(ctx context.Context, departmentID snowflake.ID, year, quarter int) (StatusCounts, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRockRequest) (*Rock, error)
	Get(ctx context.Context, id string) (*Rock, error)
	List(ctx context.Context, departmentID snowflake.ID, year, quarter int) ([]Rock, error)
	Update(ctx context.Context, id string, req UpdateRockRequest) (*Rock, error)
	Delete(ctx context.Context, id string) error
	Counts(ctx context.Context, departmentID snowflake.ID, year, quarter int) (StatusCounts, error)
}

type CreateRockRequest struct {
	StoreID      snowflake.ID
	DepartmentID snowflake.ID
	OwnerUserID  snowflake.ID
	Title        string
	Description  string
	Year         int
	Quarter      int
}

type UpdateRockRequest struct {
	Title       *string
	Description *string
	Status      *string
	Milestones  *int
	OwnerUserID *snowflake.ID
}

var (
	ErrInvalidTitle  = errors.New("invalid_title")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrInvalidPeriod = errors.New("invalid_period")
	ErrInvalidRock   = errors.New("invalid_rock")
	ErrRockNotFound  = errors.New("rock_not_found")
)
