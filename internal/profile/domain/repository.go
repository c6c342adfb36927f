package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, profile *Profile) error
	FindByUserID(ctx context.Context, userID snowflake.ID) (*Profile, error)
	UpdateFields(ctx context.Context, userID snowflake.ID, fields map[string]any) error
	ListByStore(ctx context.Context, storeID snowflake.ID) ([]Profile, error)
}
