package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/selection/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewHintStore returns the database-backed hint store.
func NewHintStore(db *gorm.DB) domain.HintStore {
	return &hintRepo{db: db}
}

type hintRepo struct {
	db *gorm.DB
}

func (r *hintRepo) Get(ctx context.Context, userID snowflake.ID) (domain.SelectionHint, error) {
	var hint domain.SelectionHint
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&hint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.SelectionHint{UserID: userID}, nil
	}
	if err != nil {
		return domain.SelectionHint{}, err
	}
	return hint, nil
}

func (r *hintRepo) SetStore(ctx context.Context, userID snowflake.ID, value string) error {
	return r.upsert(ctx, userID, "store_id", value)
}

func (r *hintRepo) SetDepartment(ctx context.Context, userID snowflake.ID, value string) error {
	return r.upsert(ctx, userID, "department_id", value)
}

func (r *hintRepo) ClearStore(ctx context.Context, userID snowflake.ID) error {
	return r.upsert(ctx, userID, "store_id", "")
}

func (r *hintRepo) ClearDepartment(ctx context.Context, userID snowflake.ID) error {
	return r.upsert(ctx, userID, "department_id", "")
}

func (r *hintRepo) upsert(ctx context.Context, userID snowflake.ID, column, value string) error {
	hint := domain.SelectionHint{UserID: userID}
	switch column {
	case "store_id":
		hint.StoreID = value
	case "department_id":
		hint.DepartmentID = value
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{column: value}),
		}).
		Create(&hint).Error
}
