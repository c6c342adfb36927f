package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/clock"
	"github.com/pitlane-hq/pitlane/internal/profile/domain"
	"go.uber.org/zap"
)

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	clock clock.Clock
}

func NewService(log *zap.Logger, repo domain.Repository, clk clock.Clock) domain.Service {
	return &Service{
		log:   log.Named("profile.service"),
		repo:  repo,
		clock: clk,
	}
}

func (s *Service) Load(ctx context.Context, userID snowflake.ID) (*domain.Profile, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, err
		}
		s.log.Error("profile load failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, domain.ErrProfileUnavailable
	}
	return profile, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateProfileRequest) (*domain.Profile, error) {
	if !domain.ValidRole(req.Role) {
		return nil, domain.ErrInvalidRole
	}

	now := s.clock.Now()
	profile := &domain.Profile{
		UserID:       req.UserID,
		Role:         req.Role,
		StoreID:      req.StoreID,
		StoreGroupID: req.StoreGroupID,
		Title:        strings.TrimSpace(req.Title),
		Phone:        strings.TrimSpace(req.Phone),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) Update(ctx context.Context, userID snowflake.ID, req domain.UpdateProfileRequest) (*domain.Profile, error) {
	fields := map[string]any{"updated_at": s.clock.Now()}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Phone != nil {
		fields["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.AvatarURL != nil {
		fields["avatar_url"] = strings.TrimSpace(*req.AvatarURL)
	}

	if err := s.repo.UpdateFields(ctx, userID, fields); err != nil {
		return nil, err
	}
	return s.repo.FindByUserID(ctx, userID)
}
