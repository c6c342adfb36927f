package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateStore(ctx context.Context, store *Store) error
	FindStoreByID(ctx context.Context, id snowflake.ID) (*Store, error)
	ListAllStores(ctx context.Context) ([]Store, error)
	ListStoresByGroup(ctx context.Context, groupID snowflake.ID) ([]Store, error)
	ListStoresByIDs(ctx context.Context, ids []snowflake.ID) ([]Store, error)

	CreateGroup(ctx context.Context, group *StoreGroup) error
	FindGroupByID(ctx context.Context, id snowflake.ID) (*StoreGroup, error)
	ListGroups(ctx context.Context) ([]StoreGroup, error)

	CreateGrant(ctx context.Context, grant *StoreAccessGrant) error
	DeleteGrant(ctx context.Context, userID, storeID snowflake.ID) error
	ListGrantedStoreIDs(ctx context.Context, userID snowflake.ID) ([]snowflake.ID, error)
}
