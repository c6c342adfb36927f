package repository

import (
	"context"

	"github.com/pitlane-hq/pitlane/internal/directory/domain"
	"github.com/pitlane-hq/pitlane/pkg/rls"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) ListMembers(ctx context.Context, req domain.ListMembersRequest) ([]domain.Member, error) {
	var members []domain.Member
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := rls.WithStore(tx, int64(req.StoreID)); err != nil {
			return err
		}

		query := tx.
			Table("profiles").
			Select("users.id as user_id, users.display_name, users.email, profiles.role, profiles.title, profiles.phone, profiles.avatar_url").
			Joins("JOIN users ON users.id = profiles.user_id").
			Where("profiles.store_id = ?", req.StoreID)

		if req.Role != "" {
			query = query.Where("profiles.role = ?", req.Role)
		}
		if req.DepartmentID != 0 {
			// Department membership comes from grants or from managing the
			// department, not from the profile itself.
			grantees := tx.Table("department_access_grants").
				Select("user_id").
				Where("department_id = ?", req.DepartmentID)
			managers := tx.Table("departments").
				Select("manager_user_id").
				Where("id = ? AND manager_user_id IS NOT NULL", req.DepartmentID)
			query = query.Where("profiles.user_id IN (?) OR profiles.user_id IN (?)", grantees, managers)
		}

		return query.Order("users.display_name asc").Scan(&members).Error
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}
