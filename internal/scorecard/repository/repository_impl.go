package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/scorecard/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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

func (r *repo) CreateDefinition(ctx context.Context, definition *domain.KPIDefinition) error {
	return r.db.WithContext(ctx).Create(definition).Error
}

func (r *repo) FindDefinitionByID(ctx context.Context, id snowflake.ID) (*domain.KPIDefinition, error) {
	var definition domain.KPIDefinition
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&definition).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrDefinitionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &definition, nil
}

func (r *repo) ListDefinitionsByDepartment(ctx context.Context, departmentID snowflake.ID) ([]domain.KPIDefinition, error) {
	var definitions []domain.KPIDefinition
	err := r.db.WithContext(ctx).
		Where("department_id = ?", departmentID).
		Order("display_order asc, name asc").
		Find(&definitions).Error
	if err != nil {
		return nil, err
	}
	return definitions, nil
}

func (r *repo) UpdateDefinition(ctx context.Context, definition *domain.KPIDefinition) error {
	return r.db.WithContext(ctx).Save(definition).Error
}

func (r *repo) DeleteDefinition(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("definition_id = ?", id).Delete(&domain.KPIEntry{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&domain.KPIDefinition{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrDefinitionNotFound
		}
		return nil
	})
}

func (r *repo) UpsertEntry(ctx context.Context, entry *domain.KPIEntry) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "definition_id"}, {Name: "year"}, {Name: "quarter"}, {Name: "slot"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"value", "note", "recorded_by", "updated_at"}),
		}).
		Create(entry).Error
}

func (r *repo) ListEntries(ctx context.Context, definitionID snowflake.ID, year, quarter int) ([]domain.KPIEntry, error) {
	var entries []domain.KPIEntry
	err := r.db.WithContext(ctx).
		Where("definition_id = ? AND year = ? AND quarter = ?", definitionID, year, quarter).
		Order("slot asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) LatestEntry(ctx context.Context, definitionID snowflake.ID, year, quarter int) (*domain.KPIEntry, error) {
	var entry domain.KPIEntry
	err := r.db.WithContext(ctx).
		Where("definition_id = ? AND year = ? AND quarter = ?", definitionID, year, quarter).
		Order("slot desc").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
