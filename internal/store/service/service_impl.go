package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/pitlane-hq/pitlane/internal/cache"
	"github.com/pitlane-hq/pitlane/internal/clock"
	profiledomain "github.com/pitlane-hq/pitlane/internal/profile/domain"
	"github.com/pitlane-hq/pitlane/internal/store/domain"
	"github.com/pitlane-hq/pitlane/pkg/db"
	"go.uber.org/zap"
)

type Service struct {
	log    *zap.Logger
	repo   domain.Repository
	genID  *snowflake.Node
	clock  clock.Clock
	scopes cache.ScopeResolverCache
}

func New(log *zap.Logger, repo domain.Repository, genID *snowflake.Node, clk clock.Clock, scopes cache.ScopeResolverCache) domain.Service {
	return &Service{
		log:    log.Named("store.service"),
		repo:   repo,
		genID:  genID,
		clock:  clk,
		scopes: scopes,
	}
}

// ResolveScope walks the access rules in priority order and returns the first
// match. The rules are mutually exclusive: a global admin's scope never
// shrinks to their home store, and a grant list never widens to the group.
// Repository failures surface as ErrScopeUnavailable so callers can tell
// "could not resolve" apart from "resolved to nothing". Successful results
// are memoised per user; failures never are, so a retry hits the database.
func (s *Service) ResolveScope(ctx context.Context, profile *profiledomain.Profile) (*domain.StoreScope, error) {
	if profile == nil {
		return nil, domain.ErrScopeUnavailable
	}
	if scope, ok := s.scopes.GetScope(profile.UserID); ok {
		return scope, nil
	}
	scope, err := s.resolveScope(ctx, profile)
	if err != nil {
		return nil, err
	}
	s.scopes.SetScope(profile.UserID, scope)
	return scope, nil
}

func (s *Service) resolveScope(ctx context.Context, profile *profiledomain.Profile) (*domain.StoreScope, error) {
	if profile.Role == profiledomain.RoleGlobalAdmin {
		stores, err := s.repo.ListAllStores(ctx)
		if err != nil {
			s.log.Error("list all stores", zap.Error(err))
			return nil, domain.ErrScopeUnavailable
		}
		return &domain.StoreScope{Stores: stores, CanSwitch: true}, nil
	}

	if profile.StoreGroupID != nil && profile.StoreID == nil {
		stores, err := s.repo.ListStoresByGroup(ctx, *profile.StoreGroupID)
		if err != nil {
			s.log.Error("list group stores", zap.Stringer("group_id", *profile.StoreGroupID), zap.Error(err))
			return nil, domain.ErrScopeUnavailable
		}
		return &domain.StoreScope{Stores: stores, CanSwitch: len(stores) > 1}, nil
	}

	grantIDs, err := s.repo.ListGrantedStoreIDs(ctx, profile.UserID)
	if err != nil {
		s.log.Error("list granted stores", zap.Stringer("user_id", profile.UserID), zap.Error(err))
		return nil, domain.ErrScopeUnavailable
	}
	if len(grantIDs) > 0 {
		ids := grantIDs
		if profile.StoreID != nil {
			ids = append([]snowflake.ID{*profile.StoreID}, ids...)
		}
		ids = dedupIDs(ids)
		stores, err := s.repo.ListStoresByIDs(ctx, ids)
		if err != nil {
			s.log.Error("list granted store rows", zap.Error(err))
			return nil, domain.ErrScopeUnavailable
		}
		// Holding any explicit grant marks the user as multi-store, even
		// when the rows currently resolve to a single store.
		return &domain.StoreScope{Stores: stores, CanSwitch: true}, nil
	}

	if profile.StoreID != nil {
		store, err := s.repo.FindStoreByID(ctx, *profile.StoreID)
		if err != nil {
			s.log.Error("find home store", zap.Stringer("store_id", *profile.StoreID), zap.Error(err))
			return nil, domain.ErrScopeUnavailable
		}
		return &domain.StoreScope{Stores: []domain.Store{*store}, CanSwitch: false}, nil
	}

	// No assignment at all. A legitimate outcome, not an error.
	return &domain.StoreScope{Stores: []domain.Store{}, CanSwitch: false}, nil
}

func dedupIDs(ids []snowflake.ID) []snowflake.ID {
	seen := make(map[snowflake.ID]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *Service) CreateStore(ctx context.Context, req domain.CreateStoreRequest) (*domain.Store, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.GroupID != nil {
		if _, err := s.repo.FindGroupByID(ctx, *req.GroupID); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	id := s.genID.Generate()
	store := &domain.Store{
		ID:        id,
		Name:      name,
		Slug:      slug.Make(name) + "-" + strconv.FormatInt(int64(id)%100000, 10),
		GroupID:   req.GroupID,
		City:      strings.TrimSpace(req.City),
		Region:    strings.TrimSpace(req.Region),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateStore(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Service) GetStore(ctx context.Context, id string) (*domain.Store, error) {
	storeID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, domain.ErrInvalidStore
	}
	return s.repo.FindStoreByID(ctx, storeID)
}

func (s *Service) ListStores(ctx context.Context) ([]domain.Store, error) {
	return s.repo.ListAllStores(ctx)
}

func (s *Service) CreateGroup(ctx context.Context, req domain.CreateGroupRequest) (*domain.StoreGroup, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	now := s.clock.Now()
	group := &domain.StoreGroup{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      slug.Make(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateGroup(ctx, group); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrGroupExists
		}
		return nil, err
	}
	return group, nil
}

func (s *Service) ListGroups(ctx context.Context) ([]domain.StoreGroup, error) {
	return s.repo.ListGroups(ctx)
}

func (s *Service) GrantAccess(ctx context.Context, userID, storeID snowflake.ID) error {
	if _, err := s.repo.FindStoreByID(ctx, storeID); err != nil {
		return err
	}
	grant := &domain.StoreAccessGrant{
		ID:        s.genID.Generate(),
		UserID:    userID,
		StoreID:   storeID,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateGrant(ctx, grant); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrGrantExists
		}
		return err
	}
	s.scopes.EvictScope(userID)
	return nil
}

func (s *Service) RevokeAccess(ctx context.Context, userID, storeID snowflake.ID) error {
	if err := s.repo.DeleteGrant(ctx, userID, storeID); err != nil {
		return err
	}
	s.scopes.EvictScope(userID)
	return nil
}
