package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/changefeed"
	"github.com/pitlane-hq/pitlane/internal/clock"
	rocksdomain "github.com/pitlane-hq/pitlane/internal/rocks/domain"
	"github.com/pitlane-hq/pitlane/internal/rocks/repository"
	"github.com/pitlane-hq/pitlane/pkg/db"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) rocksdomain.Service {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&rocksdomain.Rock{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	clk := clock.NewFakeClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	return New(zap.NewNop(), repository.New(dbConn), changefeed.NewHub(), node, clk)
}

func mustCreateRock(t *testing.T, svc rocksdomain.Service, departmentID snowflake.ID, title string) *rocksdomain.Rock {
	t.Helper()
	rock, err := svc.Create(context.Background(), rocksdomain.CreateRockRequest{
		StoreID:      snowflake.ID(1),
		DepartmentID: departmentID,
		OwnerUserID:  snowflake.ID(7),
		Title:        title,
		Year:         2026,
		Quarter:      1,
	})
	if err != nil {
		t.Fatalf("failed to create rock: %v", err)
	}
	return rock
}

func TestCreateRockDefaultsOnTrack(t *testing.T) {
	svc := newTestService(t)
	rock := mustCreateRock(t, svc, snowflake.ID(10), "Launch express service lane")
	if rock.Status != rocksdomain.StatusOnTrack {
		t.Fatalf("expected on_track default, got %s", rock.Status)
	}
}

func TestCreateRockRejectsBadPeriod(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Create(context.Background(), rocksdomain.CreateRockRequest{
		DepartmentID: snowflake.ID(10),
		Title:        "Bad quarter",
		Year:         2026,
		Quarter:      5,
	})
	if err != rocksdomain.ErrInvalidPeriod {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestCountsByStatus(t *testing.T) {
	svc := newTestService(t)
	departmentID := snowflake.ID(10)

	mustCreateRock(t, svc, departmentID, "Rock one")
	offTrack := mustCreateRock(t, svc, departmentID, "Rock two")
	done := mustCreateRock(t, svc, departmentID, "Rock three")

	statusOff := rocksdomain.StatusOffTrack
	if _, err := svc.Update(context.Background(), offTrack.ID.String(), rocksdomain.UpdateRockRequest{Status: &statusOff}); err != nil {
		t.Fatalf("failed to update: %v", err)
	}
	statusDone := rocksdomain.StatusDone
	if _, err := svc.Update(context.Background(), done.ID.String(), rocksdomain.UpdateRockRequest{Status: &statusDone}); err != nil {
		t.Fatalf("failed to update: %v", err)
	}

	counts, err := svc.Counts(context.Background(), departmentID, 2026, 1)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if counts.OnTrack != 1 || counts.OffTrack != 1 || counts.Done != 1 || counts.Total != 3 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	svc := newTestService(t)
	rock := mustCreateRock(t, svc, snowflake.ID(10), "Rock")

	bad := "paused"
	_, err := svc.Update(context.Background(), rock.ID.String(), rocksdomain.UpdateRockRequest{Status: &bad})
	if err != rocksdomain.ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
