package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/rocks/domain"
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

func (r *repo) Create(ctx context.Context, rock *domain.Rock) error {
	return r.db.WithContext(ctx).Create(rock).Error
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Rock, error) {
	var rock domain.Rock
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRockNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rock, nil
}

func (r *repo) ListByDepartment(ctx context.Context, departmentID snowflake.ID, year, quarter int) ([]domain.Rock, error) {
	var rocks []domain.Rock
	err := r.db.WithContext(ctx).
		Where("department_id = ? AND year = ? AND quarter = ?", departmentID, year, quarter).
		Order("created_at asc, id asc").
		Find(&rocks).Error
	if err != nil {
		return nil, err
	}
	return rocks, nil
}

func (r *repo) Update(ctx context.Context, rock *domain.Rock) error {
	return r.db.WithContext(ctx).Save(rock).Error
}

func (r *repo) Delete(ctx context.Context, id snowflake.ID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Rock{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrRockNotFound
	}
	return nil
}

func (r *repo) CountByStatus(ctx context.Context, departmentID snowflake.ID, year, quarter int) (domain.StatusCounts, error) {
	type row struct {
		Status string
		Count  int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&domain.Rock{}).
		Select("status, count(*) as count").
		Where("department_id = ? AND year = ? AND quarter = ?", departmentID, year, quarter).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return domain.StatusCounts{}, err
	}

	var counts domain.StatusCounts
	for _, r := range rows {
		switch r.Status {
		case domain.StatusOnTrack:
			counts.OnTrack = r.Count
		case domain.StatusOffTrack:
			counts.OffTrack = r.Count
		case domain.StatusDone:
			counts.Done = r.Count
		}
		counts.Total += r.Count
	}
	return counts, nil
}
