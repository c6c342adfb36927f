package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, department *Department) error
	FindByID(ctx context.Context, id snowflake.ID) (*Department, error)
	ListByStore(ctx context.Context, storeID snowflake.ID) ([]Department, error)
	ListByIDs(ctx context.Context, ids []snowflake.ID) ([]Department, error)
	Update(ctx context.Context, department *Department) error

	CreateGrant(ctx context.Context, grant *DepartmentAccessGrant) error
	DeleteGrant(ctx context.Context, userID, departmentID snowflake.ID) error
	ListGrantedDepartmentIDs(ctx context.Context, userID snowflake.ID) ([]snowflake.ID, error)
}
