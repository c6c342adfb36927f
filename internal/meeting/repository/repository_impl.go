package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/meeting/domain"
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

func (r *repo) Create(ctx context.Context, meeting *domain.Meeting, segments []domain.MeetingSegment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(meeting).Error; err != nil {
			return err
		}
		if len(segments) == 0 {
			return nil
		}
		return tx.Create(&segments).Error
	})
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Meeting, error) {
	var meeting domain.Meeting
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMeetingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &meeting, nil
}

func (r *repo) ListByDepartment(ctx context.Context, departmentID snowflake.ID) ([]domain.Meeting, error) {
	var meetings []domain.Meeting
	err := r.db.WithContext(ctx).
		Where("department_id = ?", departmentID).
		Order("scheduled_at desc").
		Find(&meetings).Error
	if err != nil {
		return nil, err
	}
	return meetings, nil
}

func (r *repo) ListSegments(ctx context.Context, meetingID snowflake.ID) ([]domain.MeetingSegment, error) {
	var segments []domain.MeetingSegment
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("position asc").
		Find(&segments).Error
	if err != nil {
		return nil, err
	}
	return segments, nil
}

func (r *repo) Update(ctx context.Context, meeting *domain.Meeting) error {
	return r.db.WithContext(ctx).Save(meeting).Error
}

func (r *repo) UpdateSegment(ctx context.Context, segment *domain.MeetingSegment) error {
	return r.db.WithContext(ctx).Save(segment).Error
}

func (r *repo) UpsertRating(ctx context.Context, rating *domain.MeetingRating) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "meeting_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating"}),
		}).
		Create(rating).Error
}

func (r *repo) ListRatings(ctx context.Context, meetingID snowflake.ID) ([]domain.MeetingRating, error) {
	var ratings []domain.MeetingRating
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at asc").
		Find(&ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}
