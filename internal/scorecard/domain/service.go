package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// ScorecardRow pairs a definition with its recorded entries for the period
// and the band of the latest entry.
type ScorecardRow struct {
	Definition KPIDefinition `json:"definition"`
	Entries    []KPIEntry    `json:"entries"`
	Status     string        `json:"status"`
}

// Period names one reporting window.
type Period struct {
	Year    int `json:"year"`
	Quarter int `json:"quarter"`
}

type Service interface {
	CreateDefinition(ctx context.Context, req CreateDefinitionRequest) (*KPIDefinition, error)
	UpdateDefinition(ctx context.Context, id string, req UpdateDefinitionRequest) (*KPIDefinition, error)
	DeleteDefinition(ctx context.Context, id string) error
	ListDefinitions(ctx context.Context, departmentID snowflake.ID) ([]KPIDefinition, error)

	// RecordEntry upserts the value for one definition and period slot.
	// Re-recording the same slot overwrites the previous value.
	RecordEntry(ctx context.Context, req RecordEntryRequest) (*KPIEntry, error)

	// Scorecard returns every definition of the department with its entries
	// for the period, banded by the latest recorded slot.
	Scorecard(ctx context.Context, departmentID snowflake.ID, period Period) ([]ScorecardRow, error)

	// StatusSummary rolls the department's scorecard up into counts per
	// band for the period.
	StatusSummary(ctx context.Context, departmentID snowflake.ID, period Period) (map[string]int, error)
}

type CreateDefinitionRequest struct {
	StoreID         snowflake.ID
	DepartmentID    snowflake.ID
	Name            string
	MetricType      string
	TargetValue     float64
	TargetDirection string
	Granularity     string
	DisplayOrder    int
}

type UpdateDefinitionRequest struct {
	Name            *string
	MetricType      *string
	TargetValue     *float64
	TargetDirection *string
	Granularity     *string
	DisplayOrder    *int
}

type RecordEntryRequest struct {
	DefinitionID string
	Year         int
	Quarter      int
	Slot         int
	Value        float64
	Note         string
	RecordedBy   snowflake.ID
}

var (
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidMetricType  = errors.New("invalid_metric_type")
	ErrInvalidDirection   = errors.New("invalid_target_direction")
	ErrInvalidGranularity = errors.New("invalid_granularity")
	ErrInvalidPeriod      = errors.New("invalid_period")
	ErrInvalidDefinition  = errors.New("invalid_definition")
	ErrDefinitionNotFound = errors.New("kpi_definition_not_found")
)
