package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/changefeed"
	"github.com/pitlane-hq/pitlane/internal/clock"
	"github.com/pitlane-hq/pitlane/internal/todos/domain"
	"go.uber.org/zap"
)

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	hub   *changefeed.Hub
	genID *snowflake.Node
	clock clock.Clock
}

func New(log *zap.Logger, repo domain.Repository, hub *changefeed.Hub, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &Service{
		log:   log.Named("todos.service"),
		repo:  repo,
		hub:   hub,
		genID: genID,
		clock: clk,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTodoRequest) (*domain.Todo, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	kind := req.Kind
	if kind == "" {
		kind = domain.KindTodo
	}
	if !domain.ValidKind(kind) {
		return nil, domain.ErrInvalidKind
	}

	now := s.clock.Now()
	todo := &domain.Todo{
		ID:             s.genID.Generate(),
		StoreID:        req.StoreID,
		DepartmentID:   req.DepartmentID,
		AssigneeUserID: req.AssigneeUserID,
		Kind:           kind,
		Title:          title,
		Detail:         strings.TrimSpace(req.Detail),
		DueAt:          req.DueAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, err
	}
	s.publish(todo, "created")
	return todo, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Todo, error) {
	todoID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, domain.ErrInvalidTodo
	}
	return s.repo.FindByID(ctx, todoID)
}

func (s *Service) List(ctx context.Context, departmentID snowflake.ID, kind string, openOnly bool) ([]domain.Todo, error) {
	if kind != "" && !domain.ValidKind(kind) {
		return nil, domain.ErrInvalidKind
	}
	return s.repo.ListByDepartment(ctx, departmentID, kind, openOnly)
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateTodoRequest) (*domain.Todo, error) {
	todoID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, domain.ErrInvalidTodo
	}
	todo, err := s.repo.FindByID(ctx, todoID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		todo.Title = title
	}
	if req.Detail != nil {
		todo.Detail = strings.TrimSpace(*req.Detail)
	}
	if req.AssigneeUserID != nil {
		todo.AssigneeUserID = *req.AssigneeUserID
	}
	if req.DueAt != nil {
		todo.DueAt = req.DueAt
	}
	todo.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, todo); err != nil {
		return nil, err
	}
	s.publish(todo, "updated")
	return todo, nil
}

func (s *Service) Complete(ctx context.Context, id string) (*domain.Todo, error) {
	return s.setCompletion(ctx, id, true)
}

func (s *Service) Reopen(ctx context.Context, id string) (*domain.Todo, error) {
	return s.setCompletion(ctx, id, false)
}

func (s *Service) setCompletion(ctx context.Context, id string, done bool) (*domain.Todo, error) {
	todoID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, domain.ErrInvalidTodo
	}
	todo, err := s.repo.FindByID(ctx, todoID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if done {
		if todo.CompletedAt != nil {
			return todo, nil
		}
		todo.CompletedAt = &now
	} else {
		if todo.CompletedAt == nil {
			return todo, nil
		}
		todo.CompletedAt = nil
	}
	todo.UpdatedAt = now

	if err := s.repo.Update(ctx, todo); err != nil {
		return nil, err
	}
	if done {
		s.publish(todo, "completed")
	} else {
		s.publish(todo, "reopened")
	}
	return todo, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	todoID, err := snowflake.ParseString(id)
	if err != nil {
		return domain.ErrInvalidTodo
	}
	todo, err := s.repo.FindByID(ctx, todoID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, todoID); err != nil {
		return err
	}
	s.publish(todo, "deleted")
	return nil
}

func (s *Service) Counts(ctx context.Context, departmentID snowflake.ID) (domain.OpenCounts, error) {
	return s.repo.CountOpen(ctx, departmentID)
}

func (s *Service) publish(todo *domain.Todo, action string) {
	s.hub.Publish(changefeed.RecordTodo, changefeed.Event{
		RecordID:     todo.ID.String(),
		StoreID:      todo.StoreID.String(),
		DepartmentID: todo.DepartmentID.String(),
		Action:       action,
		OccurredAt:   s.clock.Now(),
	})
}
