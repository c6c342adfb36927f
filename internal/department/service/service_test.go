package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/clock"
	departmentdomain "github.com/pitlane-hq/pitlane/internal/department/domain"
	"github.com/pitlane-hq/pitlane/internal/department/repository"
	profiledomain "github.com/pitlane-hq/pitlane/internal/profile/domain"
	"github.com/pitlane-hq/pitlane/pkg/db"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) departmentdomain.Service {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(
		&departmentdomain.Department{},
		&departmentdomain.DepartmentAccessGrant{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	clk := clock.NewFakeClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	return New(zap.NewNop(), repository.New(dbConn), node, clk)
}

func mustCreateDepartment(t *testing.T, svc departmentdomain.Service, storeID snowflake.ID, name, depType string) *departmentdomain.Department {
	t.Helper()
	department, err := svc.Create(context.Background(), departmentdomain.CreateDepartmentRequest{
		StoreID: storeID,
		Name:    name,
		Type:    depType,
	})
	if err != nil {
		t.Fatalf("failed to create department %q: %v", name, err)
	}
	return department
}

func TestResolveScopeWholeStoreOrderedByName(t *testing.T) {
	svc := newTestService(t)
	storeID := snowflake.ID(1)

	mustCreateDepartment(t, svc, storeID, "Service Drive", departmentdomain.TypeService)
	mustCreateDepartment(t, svc, storeID, "New Car Sales", departmentdomain.TypeSales)
	mustCreateDepartment(t, svc, snowflake.ID(2), "Other Store Parts", departmentdomain.TypeParts)

	scope, err := svc.ResolveScope(context.Background(), &profiledomain.Profile{
		UserID: snowflake.ID(200),
		Role:   profiledomain.RoleStoreGM,
	}, storeID)
	if err != nil {
		t.Fatalf("failed to resolve scope: %v", err)
	}
	if len(scope) != 2 {
		t.Fatalf("expected 2 departments, got %d", len(scope))
	}
	if scope[0].Name != "New Car Sales" || scope[1].Name != "Service Drive" {
		t.Fatalf("unexpected ordering: %q, %q", scope[0].Name, scope[1].Name)
	}
}

func TestResolveScopeRequiresStoreForWholeStoreRoles(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ResolveScope(context.Background(), &profiledomain.Profile{
		UserID: snowflake.ID(201),
		Role:   profiledomain.RoleGlobalAdmin,
	}, 0)
	if !errors.Is(err, departmentdomain.ErrStoreNotSelected) {
		t.Fatalf("expected ErrStoreNotSelected, got %v", err)
	}
}

func TestResolveScopeGrantScopedUsesGrantsOnly(t *testing.T) {
	svc := newTestService(t)
	storeID := snowflake.ID(1)

	granted := mustCreateDepartment(t, svc, storeID, "Parts Counter", departmentdomain.TypeParts)
	mustCreateDepartment(t, svc, storeID, "Body Shop", departmentdomain.TypeBody)
	crossStore := mustCreateDepartment(t, svc, snowflake.ID(2), "Away Service", departmentdomain.TypeService)

	userID := snowflake.ID(202)
	if err := svc.GrantAccess(context.Background(), userID, granted.ID); err != nil {
		t.Fatalf("failed to grant access: %v", err)
	}
	if err := svc.GrantAccess(context.Background(), userID, crossStore.ID); err != nil {
		t.Fatalf("failed to grant access: %v", err)
	}

	scope, err := svc.ResolveScope(context.Background(), &profiledomain.Profile{
		UserID: userID,
		Role:   profiledomain.RoleDepartmentManager,
	}, storeID)
	if err != nil {
		t.Fatalf("failed to resolve scope: %v", err)
	}
	// Grant resolution does not filter by store; that re-check happens at
	// selection time. Both grants surface, the ungranted department never.
	if len(scope) != 2 {
		t.Fatalf("expected 2 granted departments, got %d", len(scope))
	}
	for _, department := range scope {
		if department.Name == "Body Shop" {
			t.Fatal("ungranted department leaked into grant-scoped resolution")
		}
	}
}

func TestResolveScopeEmptyGrantsStayEmpty(t *testing.T) {
	svc := newTestService(t)
	storeID := snowflake.ID(1)
	mustCreateDepartment(t, svc, storeID, "Service Drive", departmentdomain.TypeService)

	scope, err := svc.ResolveScope(context.Background(), &profiledomain.Profile{
		UserID: snowflake.ID(203),
		Role:   profiledomain.RoleDepartmentManager,
	}, storeID)
	if err != nil {
		t.Fatalf("failed to resolve scope: %v", err)
	}
	if len(scope) != 0 {
		t.Fatalf("expected empty scope for grantless department manager, got %d", len(scope))
	}
}

func TestRevokedGrantLeavesScope(t *testing.T) {
	svc := newTestService(t)
	storeID := snowflake.ID(1)

	granted := mustCreateDepartment(t, svc, storeID, "Parts Counter", departmentdomain.TypeParts)
	userID := snowflake.ID(204)
	if err := svc.GrantAccess(context.Background(), userID, granted.ID); err != nil {
		t.Fatalf("failed to grant access: %v", err)
	}
	if err := svc.RevokeAccess(context.Background(), userID, granted.ID); err != nil {
		t.Fatalf("failed to revoke access: %v", err)
	}

	scope, err := svc.ResolveScope(context.Background(), &profiledomain.Profile{
		UserID: userID,
		Role:   profiledomain.RoleDepartmentManager,
	}, storeID)
	if err != nil {
		t.Fatalf("failed to resolve scope: %v", err)
	}
	if len(scope) != 0 {
		t.Fatalf("expected empty scope after revoke, got %d", len(scope))
	}
}
