package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/pitlane-hq/pitlane/internal/clock"
	"github.com/pitlane-hq/pitlane/internal/department/domain"
	profiledomain "github.com/pitlane-hq/pitlane/internal/profile/domain"
	"github.com/pitlane-hq/pitlane/pkg/db"
	"go.uber.org/zap"
)

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

func New(log *zap.Logger, repo domain.Repository, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &Service{
		log:   log.Named("department.service"),
		repo:  repo,
		genID: genID,
		clock: clk,
	}
}

// ResolveScope returns the department candidate set. Grant-scoped users
// resolve from their grant list alone, which may reference departments in
// other stores; the selection layer re-validates store membership before
// anything is activated. Empty grants stay empty. All other roles need an
// active store and see every department in it.
func (s *Service) ResolveScope(ctx context.Context, profile *profiledomain.Profile, activeStoreID snowflake.ID) ([]domain.Department, error) {
	if profile == nil {
		return nil, domain.ErrScopeUnavailable
	}

	if profile.GrantScopedDepartments() {
		ids, err := s.repo.ListGrantedDepartmentIDs(ctx, profile.UserID)
		if err != nil {
			s.log.Error("list department grants", zap.Stringer("user_id", profile.UserID), zap.Error(err))
			return nil, domain.ErrScopeUnavailable
		}
		if len(ids) == 0 {
			return []domain.Department{}, nil
		}
		departments, err := s.repo.ListByIDs(ctx, ids)
		if err != nil {
			s.log.Error("list granted departments", zap.Error(err))
			return nil, domain.ErrScopeUnavailable
		}
		return departments, nil
	}

	if activeStoreID == 0 {
		return nil, domain.ErrStoreNotSelected
	}
	departments, err := s.repo.ListByStore(ctx, activeStoreID)
	if err != nil {
		s.log.Error("list store departments", zap.Stringer("store_id", activeStoreID), zap.Error(err))
		return nil, domain.ErrScopeUnavailable
	}
	return departments, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateDepartmentRequest) (*domain.Department, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	depType := req.Type
	if depType == "" {
		depType = domain.TypeOther
	}
	if !domain.ValidType(depType) {
		return nil, domain.ErrInvalidType
	}

	now := s.clock.Now()
	id := s.genID.Generate()
	department := &domain.Department{
		ID:            id,
		StoreID:       req.StoreID,
		Name:          name,
		Slug:          slug.Make(name) + "-" + strconv.FormatInt(int64(id)%100000, 10),
		Type:          depType,
		ManagerUserID: req.ManagerUserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, department); err != nil {
		return nil, err
	}
	return department, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Department, error) {
	departmentID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, domain.ErrInvalidDepartment
	}
	return s.repo.FindByID(ctx, departmentID)
}

func (s *Service) ListByStore(ctx context.Context, storeID snowflake.ID) ([]domain.Department, error) {
	return s.repo.ListByStore(ctx, storeID)
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateDepartmentRequest) (*domain.Department, error) {
	departmentID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, domain.ErrInvalidDepartment
	}
	department, err := s.repo.FindByID(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		department.Name = name
	}
	if req.Type != nil {
		if !domain.ValidType(*req.Type) {
			return nil, domain.ErrInvalidType
		}
		department.Type = *req.Type
	}
	if req.ManagerUserID != nil {
		department.ManagerUserID = req.ManagerUserID
	}
	department.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, department); err != nil {
		return nil, err
	}
	return department, nil
}

func (s *Service) GrantAccess(ctx context.Context, userID, departmentID snowflake.ID) error {
	if _, err := s.repo.FindByID(ctx, departmentID); err != nil {
		return err
	}
	grant := &domain.DepartmentAccessGrant{
		ID:           s.genID.Generate(),
		UserID:       userID,
		DepartmentID: departmentID,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.repo.CreateGrant(ctx, grant); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrGrantExists
		}
		return err
	}
	return nil
}

func (s *Service) RevokeAccess(ctx context.Context, userID, departmentID snowflake.ID) error {
	return s.repo.DeleteGrant(ctx, userID, departmentID)
}
