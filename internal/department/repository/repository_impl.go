package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/department/domain"
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

func (r *repo) Create(ctx context.Context, department *domain.Department) error {
	return r.db.WithContext(ctx).Create(department).Error
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Department, error) {
	var department domain.Department
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&department).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrDepartmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *repo) ListByStore(ctx context.Context, storeID snowflake.ID) ([]domain.Department, error) {
	var departments []domain.Department
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("name asc, id asc").
		Find(&departments).Error
	if err != nil {
		return nil, err
	}
	return departments, nil
}

func (r *repo) ListByIDs(ctx context.Context, ids []snowflake.ID) ([]domain.Department, error) {
	if len(ids) == 0 {
		return []domain.Department{}, nil
	}
	var departments []domain.Department
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("name asc, id asc").
		Find(&departments).Error
	if err != nil {
		return nil, err
	}
	return departments, nil
}

func (r *repo) Update(ctx context.Context, department *domain.Department) error {
	return r.db.WithContext(ctx).Save(department).Error
}

func (r *repo) CreateGrant(ctx context.Context, grant *domain.DepartmentAccessGrant) error {
	return r.db.WithContext(ctx).Create(grant).Error
}

func (r *repo) DeleteGrant(ctx context.Context, userID, departmentID snowflake.ID) error {
	tx := r.db.WithContext(ctx).
		Where("user_id = ? AND department_id = ?", userID, departmentID).
		Delete(&domain.DepartmentAccessGrant{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrGrantNotFound
	}
	return nil
}

func (r *repo) ListGrantedDepartmentIDs(ctx context.Context, userID snowflake.ID) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := r.db.WithContext(ctx).
		Model(&domain.DepartmentAccessGrant{}).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Pluck("department_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
