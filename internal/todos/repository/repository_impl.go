package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/todos/domain"
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

func (r *repo) Create(ctx context.Context, todo *domain.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Todo, error) {
	var todo domain.Todo
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&todo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTodoNotFound
	}
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *repo) ListByDepartment(ctx context.Context, departmentID snowflake.ID, kind string, openOnly bool) ([]domain.Todo, error) {
	query := r.db.WithContext(ctx).Where("department_id = ?", departmentID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if openOnly {
		query = query.Where("completed_at IS NULL")
	}

	var todos []domain.Todo
	err := query.Order("due_at asc nulls last, created_at asc").Find(&todos).Error
	if err != nil {
		return nil, err
	}
	return todos, nil
}

func (r *repo) Update(ctx context.Context, todo *domain.Todo) error {
	return r.db.WithContext(ctx).Save(todo).Error
}

func (r *repo) Delete(ctx context.Context, id snowflake.ID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Todo{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func (r *repo) CountOpen(ctx context.Context, departmentID snowflake.ID) (domain.OpenCounts, error) {
	type row struct {
		Kind  string
		Count int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&domain.Todo{}).
		Select("kind, count(*) as count").
		Where("department_id = ? AND completed_at IS NULL", departmentID).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return domain.OpenCounts{}, err
	}

	var counts domain.OpenCounts
	for _, r := range rows {
		switch r.Kind {
		case domain.KindTodo:
			counts.Todos = r.Count
		case domain.KindIssue:
			counts.Issues = r.Count
		}
	}
	return counts, nil
}

func (r *repo) CloseIssuesByIDs(ctx context.Context, ids []snowflake.ID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&domain.Todo{}).
		Where("id IN ? AND kind = ? AND completed_at IS NULL", ids, domain.KindIssue).
		Updates(map[string]interface{}{"completed_at": at, "updated_at": at}).Error
}
