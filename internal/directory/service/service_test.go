package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/pitlane-hq/pitlane/internal/auth/domain"
	departmentdomain "github.com/pitlane-hq/pitlane/internal/department/domain"
	directorydomain "github.com/pitlane-hq/pitlane/internal/directory/domain"
	"github.com/pitlane-hq/pitlane/internal/directory/repository"
	profiledomain "github.com/pitlane-hq/pitlane/internal/profile/domain"
	"github.com/pitlane-hq/pitlane/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var storeID = snowflake.ID(1)

func newTestService(t *testing.T) (directorydomain.Service, *gorm.DB) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(
		&authdomain.User{},
		&profiledomain.Profile{},
		&departmentdomain.Department{},
		&departmentdomain.DepartmentAccessGrant{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return New(zap.NewNop(), repository.New(dbConn)), dbConn
}

func seedMember(t *testing.T, dbConn *gorm.DB, id int64, name, email, role string) snowflake.ID {
	t.Helper()
	userID := snowflake.ID(id)
	if err := dbConn.Create(&authdomain.User{
		ID:          userID,
		ExternalID:  name,
		Email:       email,
		DisplayName: name,
	}).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	sid := storeID
	if err := dbConn.Create(&profiledomain.Profile{
		UserID:  userID,
		Role:    role,
		StoreID: &sid,
		Title:   "Advisor",
	}).Error; err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
	return userID
}

func TestListMembersOrdersByName(t *testing.T) {
	svc, dbConn := newTestService(t)
	seedMember(t, dbConn, 2, "Zoe Park", "zoe@example.com", profiledomain.RoleStoreGM)
	seedMember(t, dbConn, 3, "Ana Reyes", "ana@example.com", profiledomain.RoleOther)

	members, err := svc.ListMembers(context.Background(), directorydomain.ListMembersRequest{StoreID: storeID})
	if err != nil {
		t.Fatalf("failed to list members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[0].DisplayName != "Ana Reyes" || members[1].DisplayName != "Zoe Park" {
		t.Fatalf("unexpected order: %q, %q", members[0].DisplayName, members[1].DisplayName)
	}
}

func TestListMembersFiltersByRole(t *testing.T) {
	svc, dbConn := newTestService(t)
	seedMember(t, dbConn, 2, "Zoe Park", "zoe@example.com", profiledomain.RoleStoreGM)
	seedMember(t, dbConn, 3, "Ana Reyes", "ana@example.com", profiledomain.RoleOther)

	members, err := svc.ListMembers(context.Background(), directorydomain.ListMembersRequest{
		StoreID: storeID,
		Role:    profiledomain.RoleStoreGM,
	})
	if err != nil {
		t.Fatalf("failed to list members: %v", err)
	}
	if len(members) != 1 || members[0].Role != profiledomain.RoleStoreGM {
		t.Fatalf("unexpected members: %+v", members)
	}

	if _, err := svc.ListMembers(context.Background(), directorydomain.ListMembersRequest{
		StoreID: storeID,
		Role:    "janitor",
	}); err != directorydomain.ErrInvalidRole {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestListMembersFiltersByDepartment(t *testing.T) {
	svc, dbConn := newTestService(t)
	granted := seedMember(t, dbConn, 2, "Ana Reyes", "ana@example.com", profiledomain.RoleDepartmentManager)
	manager := seedMember(t, dbConn, 3, "Ben Cole", "ben@example.com", profiledomain.RoleFixedOpsManager)
	seedMember(t, dbConn, 4, "Zoe Park", "zoe@example.com", profiledomain.RoleOther)

	departmentID := snowflake.ID(10)
	managerID := manager
	if err := dbConn.Create(&departmentdomain.Department{
		ID:            departmentID,
		StoreID:       storeID,
		Name:          "Service Drive",
		Slug:          "service-drive",
		Type:          departmentdomain.TypeService,
		ManagerUserID: &managerID,
	}).Error; err != nil {
		t.Fatalf("failed to seed department: %v", err)
	}
	if err := dbConn.Create(&departmentdomain.DepartmentAccessGrant{
		ID:           snowflake.ID(100),
		UserID:       granted,
		DepartmentID: departmentID,
	}).Error; err != nil {
		t.Fatalf("failed to seed grant: %v", err)
	}

	members, err := svc.ListMembers(context.Background(), directorydomain.ListMembersRequest{
		StoreID:      storeID,
		DepartmentID: departmentID,
	})
	if err != nil {
		t.Fatalf("failed to list members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected grantee and manager, got %d", len(members))
	}
	for _, member := range members {
		if member.DisplayName == "Zoe Park" {
			t.Fatal("unaffiliated member leaked into department filter")
		}
	}
}
