package service

import (
	"context"

	"github.com/pitlane-hq/pitlane/internal/directory/domain"
	profiledomain "github.com/pitlane-hq/pitlane/internal/profile/domain"
	"go.uber.org/zap"
)

type Service struct {
	log  *zap.Logger
	repo domain.Repository
}

func New(log *zap.Logger, repo domain.Repository) domain.Service {
	return &Service{
		log:  log.Named("directory.service"),
		repo: repo,
	}
}

func (s *Service) ListMembers(ctx context.Context, req domain.ListMembersRequest) ([]domain.Member, error) {
	if req.Role != "" && !profiledomain.ValidRole(req.Role) {
		return nil, domain.ErrInvalidRole
	}
	return s.repo.ListMembers(ctx, req)
}
