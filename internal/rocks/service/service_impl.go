package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/changefeed"
	"github.com/pitlane-hq/pitlane/internal/clock"
	"github.com/pitlane-hq/pitlane/internal/rocks/domain"
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
		log:   log.Named("rocks.service"),
		repo:  repo,
		hub:   hub,
		genID: genID,
		clock: clk,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRockRequest) (*domain.Rock, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	if req.Quarter < 1 || req.Quarter > 4 || req.Year < 2000 {
		return nil, domain.ErrInvalidPeriod
	}

	now := s.clock.Now()
	rock := &domain.Rock{
		ID:           s.genID.Generate(),
		StoreID:      req.StoreID,
		DepartmentID: req.DepartmentID,
		OwnerUserID:  req.OwnerUserID,
		Title:        title,
		Description:  strings.TrimSpace(req.Description),
		Year:         req.Year,
		Quarter:      req.Quarter,
		Status:       domain.StatusOnTrack,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, rock); err != nil {
		return nil, err
	}
	s.publish(rock, "created")
	return rock, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Rock, error) {
	rockID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, domain.ErrInvalidRock
	}
	return s.repo.FindByID(ctx, rockID)
}

func (s *Service) List(ctx context.Context, departmentID snowflake.ID, year, quarter int) ([]domain.Rock, error) {
	return s.repo.ListByDepartment(ctx, departmentID, year, quarter)
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRockRequest) (*domain.Rock, error) {
	rockID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, domain.ErrInvalidRock
	}
	rock, err := s.repo.FindByID(ctx, rockID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		rock.Title = title
	}
	if req.Description != nil {
		rock.Description = strings.TrimSpace(*req.Description)
	}
	if req.Status != nil {
		if !domain.ValidStatus(*req.Status) {
			return nil, domain.ErrInvalidStatus
		}
		rock.Status = *req.Status
	}
	if req.Milestones != nil {
		rock.Milestones = *req.Milestones
	}
	if req.OwnerUserID != nil {
		rock.OwnerUserID = *req.OwnerUserID
	}
	rock.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, rock); err != nil {
		return nil, err
	}
	s.publish(rock, "updated")
	return rock, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	rockID, err := snowflake.ParseString(id)
	if err != nil {
		return domain.ErrInvalidRock
	}
	rock, err := s.repo.FindByID(ctx, rockID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, rockID); err != nil {
		return err
	}
	s.publish(rock, "deleted")
	return nil
}

func (s *Service) Counts(ctx context.Context, departmentID snowflake.ID, year, quarter int) (domain.StatusCounts, error) {
	return s.repo.CountByStatus(ctx, departmentID, year, quarter)
}

func (s *Service) publish(rock *domain.Rock, action string) {
	s.hub.Publish(changefeed.RecordRock, changefeed.Event{
		RecordID:     rock.ID.String(),
		StoreID:      rock.StoreID.String(),
		DepartmentID: rock.DepartmentID.String(),
		Action:       action,
		OccurredAt:   s.clock.Now(),
	})
}
