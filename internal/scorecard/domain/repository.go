package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateDefinition(ctx context.Context, definition *KPIDefinition) error
	FindDefinitionByID(ctx context.Context, id snowflake.ID) (*KPIDefinition, error)
	ListDefinitionsByDepartment(ctx context.Context, departmentID snowflake.ID) ([]KPIDefinition, error)
	UpdateDefinition(ctx context.Context, definition *KPIDefinition) error
	DeleteDefinition(ctx context.Context, id snowflake.ID) error

	UpsertEntry(ctx context.Context, entry *KPIEntry) error
	ListEntries(ctx context.Context, definitionID snowflake.ID, year, quarter int) ([]KPIEntry, error)
	LatestEntry(ctx context.Context, definitionID snowflake.ID, year, quarter int) (*KPIEntry, error)
}
