package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/store/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) WithTx(tx *gorm.DB) domain.Repository {
	return &repo{db: tx}
}

func (r *repo) CreateStore(ctx context.Context, store *domain.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

func (r *repo) FindStoreByID(ctx context.Context, id snowflake.ID) (*domain.Store, error) {
	var store domain.Store
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrStoreNotFound
	}
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *repo) ListAllStores(ctx context.Context) ([]domain.Store, error) {
	var stores []domain.Store
	err := r.db.WithContext(ctx).Order("name asc, id asc").Find(&stores).Error
	if err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *repo) ListStoresByGroup(ctx context.Context, groupID snowflake.ID) ([]domain.Store, error) {
	var stores []domain.Store
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("name asc, id asc").
		Find(&stores).Error
	if err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *repo) ListStoresByIDs(ctx context.Context, ids []snowflake.ID) ([]domain.Store, error) {
	if len(ids) == 0 {
		return []domain.Store{}, nil
	}
	var stores []domain.Store
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("name asc, id asc").
		Find(&stores).Error
	if err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *repo) CreateGroup(ctx context.Context, group *domain.StoreGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *repo) FindGroupByID(ctx context.Context, id snowflake.ID) (*domain.StoreGroup, error) {
	var group domain.StoreGroup
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *repo) ListGroups(ctx context.Context) ([]domain.StoreGroup, error) {
	var groups []domain.StoreGroup
	err := r.db.WithContext(ctx).Order("name asc, id asc").Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *repo) CreateGrant(ctx context.Context, grant *domain.StoreAccessGrant) error {
	return r.db.WithContext(ctx).Create(grant).Error
}

func (r *repo) DeleteGrant(ctx context.Context, userID, storeID snowflake.ID) error {
	tx := r.db.WithContext(ctx).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		Delete(&domain.StoreAccessGrant{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrGrantNotFound
	}
	return nil
}

func (r *repo) ListGrantedStoreIDs(ctx context.Context, userID snowflake.ID) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := r.db.WithContext(ctx).
		Model(&domain.StoreAccessGrant{}).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Pluck("store_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
