package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/cache"
	"github.com/pitlane-hq/pitlane/internal/clock"
	profiledomain "github.com/pitlane-hq/pitlane/internal/profile/domain"
	storedomain "github.com/pitlane-hq/pitlane/internal/store/domain"
	"github.com/pitlane-hq/pitlane/internal/store/repository"
	"github.com/pitlane-hq/pitlane/pkg/db"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) storedomain.Service {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(
		&storedomain.Store{},
		&storedomain.StoreGroup{},
		&storedomain.StoreAccessGrant{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	clk := clock.NewFakeClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	return New(zap.NewNop(), repository.New(dbConn), node, clk, cache.NewScopeResolverCache())
}

func mustCreateStore(t *testing.T, svc storedomain.Service, name string, groupID *snowflake.ID) *storedomain.Store {
	t.Helper()
	store, err := svc.CreateStore(context.Background(), storedomain.CreateStoreRequest{
		Name:    name,
		GroupID: groupID,
	})
	if err != nil {
		t.Fatalf("failed to create store %q: %v", name, err)
	}
	return store
}

func TestResolveScopeGlobalAdminSeesEverything(t *testing.T) {
	svc := newTestService(t)

	home := mustCreateStore(t, svc, "Birch Motors", nil)
	mustCreateStore(t, svc, "Alder Auto", nil)
	mustCreateStore(t, svc, "Cedar Cars", nil)

	homeID := home.ID
	scope, err := svc.ResolveScope(context.Background(), &profiledomain.Profile{
		UserID:  snowflake.ID(100),
		Role:    profiledomain.RoleGlobalAdmin,
		StoreID: &homeID,
	})
	if err != nil {
		t.Fatalf("failed to resolve scope: %v", err)
	}
	if len(scope.Stores) != 3 {
		t.Fatalf("expected 3 stores, got %d", len(scope.Stores))
	}
	if !scope.CanSwitch {
		t.Fatal("expected global admin scope to allow switching")
	}
	// Alphabetical, never reordered by the home-store assignment.
	if scope.Stores[0].Name != "Alder Auto" || scope.Stores[2].Name != "Cedar Cars" {
		t.Fatalf("unexpected ordering: %q, %q, %q",
			scope.Stores[0].Name, scope.Stores[1].Name, scope.Stores[2].Name)
	}
}

func TestResolveScopeGroupWithoutHomeStore(t *testing.T) {
	svc := newTestService(t)

	group, err := svc.CreateGroup(context.Background(), storedomain.CreateGroupRequest{Name: "Summit Group"})
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}
	groupID := group.ID
	mustCreateStore(t, svc, "Summit East", &groupID)
	mustCreateStore(t, svc, "Summit West", &groupID)
	mustCreateStore(t, svc, "Outsider Auto", nil)

	scope, err := svc.ResolveScope(context.Background(), &profiledomain.Profile{
		UserID:       snowflake.ID(101),
		Role:         profiledomain.RoleStoreGM,
		StoreGroupID: &groupID,
	})
	if err != nil {
		t.Fatalf("failed to resolve scope: %v", err)
	}
	if len(scope.Stores) != 2 {
		t.Fatalf("expected 2 group stores, got %d", len(scope.Stores))
	}
	for _, store := range scope.Stores {
		if store.GroupID == nil || *store.GroupID != groupID {
			t.Fatalf("store %q leaked into group scope", store.Name)
		}
	}
	if !scope.CanSwitch {
		t.Fatal("expected multi-store group scope to allow switching")
	}
}

func TestResolveScopeGrantsUnionHomeStore(t *testing.T) {
	svc := newTestService(t)

	home := mustCreateStore(t, svc, "Zenith Motors", nil)
	granted := mustCreateStore(t, svc, "Apex Auto", nil)

	userID := snowflake.ID(102)
	if err := svc.GrantAccess(context.Background(), userID, granted.ID); err != nil {
		t.Fatalf("failed to grant access: %v", err)
	}
	// A grant that duplicates the home store must not produce a double entry.
	if err := svc.GrantAccess(context.Background(), userID, home.ID); err != nil {
		t.Fatalf("failed to grant home store: %v", err)
	}

	homeID := home.ID
	scope, err := svc.ResolveScope(context.Background(), &profiledomain.Profile{
		UserID:  userID,
		Role:    profiledomain.RoleStoreGM,
		StoreID: &homeID,
	})
	if err != nil {
		t.Fatalf("failed to resolve scope: %v", err)
	}
	if len(scope.Stores) != 2 {
		t.Fatalf("expected 2 deduplicated stores, got %d", len(scope.Stores))
	}
	if scope.Stores[0].Name != "Apex Auto" || scope.Stores[1].Name != "Zenith Motors" {
		t.Fatalf("unexpected ordering: %q, %q", scope.Stores[0].Name, scope.Stores[1].Name)
	}
	if !scope.CanSwitch {
		t.Fatal("expected granted scope to allow switching")
	}
}

func TestResolveScopeHomeStoreOnly(t *testing.T) {
	svc := newTestService(t)

	home := mustCreateStore(t, svc, "Lone Star Auto", nil)
	mustCreateStore(t, svc, "Other Store", nil)

	homeID := home.ID
	scope, err := svc.ResolveScope(context.Background(), &profiledomain.Profile{
		UserID:  snowflake.ID(103),
		Role:    profiledomain.RoleDepartmentManager,
		StoreID: &homeID,
	})
	if err != nil {
		t.Fatalf("failed to resolve scope: %v", err)
	}
	if len(scope.Stores) != 1 || scope.Stores[0].ID != home.ID {
		t.Fatalf("expected single home store scope, got %+v", scope.Stores)
	}
	if scope.CanSwitch {
		t.Fatal("expected single-store scope to disallow switching")
	}
}

func TestResolveScopeNoAssignmentIsEmptyNotError(t *testing.T) {
	svc := newTestService(t)
	mustCreateStore(t, svc, "Unreachable Motors", nil)

	scope, err := svc.ResolveScope(context.Background(), &profiledomain.Profile{
		UserID: snowflake.ID(104),
		Role:   profiledomain.RoleOther,
	})
	if err != nil {
		t.Fatalf("expected empty scope, got error: %v", err)
	}
	if len(scope.Stores) != 0 {
		t.Fatalf("expected empty scope, got %d stores", len(scope.Stores))
	}
	if scope.CanSwitch {
		t.Fatal("expected empty scope to disallow switching")
	}
}

func TestResolveScopeMemoisedUntilGrantChange(t *testing.T) {
	svc := newTestService(t)

	home := mustCreateStore(t, svc, "Granite Garage", nil)
	granted := mustCreateStore(t, svc, "Pebble Pontiac", nil)

	userID := snowflake.ID(106)
	homeID := home.ID
	profile := &profiledomain.Profile{
		UserID:  userID,
		Role:    profiledomain.RoleStoreGM,
		StoreID: &homeID,
	}

	scope, err := svc.ResolveScope(context.Background(), profile)
	if err != nil {
		t.Fatalf("failed to resolve scope: %v", err)
	}
	if len(scope.Stores) != 1 {
		t.Fatalf("expected home-store-only scope, got %d stores", len(scope.Stores))
	}

	// Granting evicts the memoised scope, so the next resolve sees it.
	if err := svc.GrantAccess(context.Background(), userID, granted.ID); err != nil {
		t.Fatalf("failed to grant access: %v", err)
	}
	scope, err = svc.ResolveScope(context.Background(), profile)
	if err != nil {
		t.Fatalf("failed to resolve scope after grant: %v", err)
	}
	if len(scope.Stores) != 2 {
		t.Fatalf("expected grant to widen scope, got %d stores", len(scope.Stores))
	}
	if !scope.CanSwitch {
		t.Fatal("expected granted scope to allow switching")
	}

	if err := svc.RevokeAccess(context.Background(), userID, granted.ID); err != nil {
		t.Fatalf("failed to revoke access: %v", err)
	}
	scope, err = svc.ResolveScope(context.Background(), profile)
	if err != nil {
		t.Fatalf("failed to resolve scope after revoke: %v", err)
	}
	if len(scope.Stores) != 1 || scope.Stores[0].ID != home.ID {
		t.Fatalf("expected revoke to shrink scope, got %+v", scope.Stores)
	}
}

func TestRevokeAccessShrinksScope(t *testing.T) {
	svc := newTestService(t)

	home := mustCreateStore(t, svc, "Harbor Honda", nil)
	granted := mustCreateStore(t, svc, "Bayside Buick", nil)

	userID := snowflake.ID(105)
	if err := svc.GrantAccess(context.Background(), userID, granted.ID); err != nil {
		t.Fatalf("failed to grant access: %v", err)
	}
	if err := svc.RevokeAccess(context.Background(), userID, granted.ID); err != nil {
		t.Fatalf("failed to revoke access: %v", err)
	}

	homeID := home.ID
	scope, err := svc.ResolveScope(context.Background(), &profiledomain.Profile{
		UserID:  userID,
		Role:    profiledomain.RoleStoreGM,
		StoreID: &homeID,
	})
	if err != nil {
		t.Fatalf("failed to resolve scope: %v", err)
	}
	if len(scope.Stores) != 1 || scope.Stores[0].ID != home.ID {
		t.Fatalf("expected scope to shrink to home store, got %+v", scope.Stores)
	}
}
