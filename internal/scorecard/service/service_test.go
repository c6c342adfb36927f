package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/changefeed"
	"github.com/pitlane-hq/pitlane/internal/clock"
	scorecarddomain "github.com/pitlane-hq/pitlane/internal/scorecard/domain"
	"github.com/pitlane-hq/pitlane/internal/scorecard/repository"
	"github.com/pitlane-hq/pitlane/pkg/db"
	"go.uber.org/zap"
)

var period = scorecarddomain.Period{Year: 2026, Quarter: 1}

func newTestService(t *testing.T) (scorecarddomain.Service, *changefeed.Hub) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(
		&scorecarddomain.KPIDefinition{},
		&scorecarddomain.KPIEntry{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	hub := changefeed.NewHub()
	clk := clock.NewFakeClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	return New(zap.NewNop(), repository.New(dbConn), hub, node, clk), hub
}

func mustCreateDefinition(t *testing.T, svc scorecarddomain.Service, departmentID snowflake.ID, name, direction string, target float64) *scorecarddomain.KPIDefinition {
	t.Helper()
	definition, err := svc.CreateDefinition(context.Background(), scorecarddomain.CreateDefinitionRequest{
		StoreID:         snowflake.ID(1),
		DepartmentID:    departmentID,
		Name:            name,
		TargetDirection: direction,
		TargetValue:     target,
	})
	if err != nil {
		t.Fatalf("failed to create definition %q: %v", name, err)
	}
	return definition
}

func mustRecord(t *testing.T, svc scorecarddomain.Service, definitionID snowflake.ID, slot int, value float64) {
	t.Helper()
	_, err := svc.RecordEntry(context.Background(), scorecarddomain.RecordEntryRequest{
		DefinitionID: definitionID.String(),
		Year:         period.Year,
		Quarter:      period.Quarter,
		Slot:         slot,
		Value:        value,
	})
	if err != nil {
		t.Fatalf("failed to record entry: %v", err)
	}
}

func TestScorecardBandsLatestSlot(t *testing.T) {
	svc, _ := newTestService(t)
	departmentID := snowflake.ID(10)

	definition := mustCreateDefinition(t, svc, departmentID, "CSI Score", scorecarddomain.DirectionAbove, 100)
	mustRecord(t, svc, definition.ID, 1, 50)
	mustRecord(t, svc, definition.ID, 2, 92)

	rows, err := svc.Scorecard(context.Background(), departmentID, period)
	if err != nil {
		t.Fatalf("failed to load scorecard: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if len(rows[0].Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(rows[0].Entries))
	}
	// The band follows the latest slot, not the worst one.
	if rows[0].Status != scorecarddomain.StatusAtRisk {
		t.Fatalf("expected at_risk, got %s", rows[0].Status)
	}
}

func TestRecordEntryOverwritesSlot(t *testing.T) {
	svc, _ := newTestService(t)
	departmentID := snowflake.ID(10)

	definition := mustCreateDefinition(t, svc, departmentID, "Cost Per RO", scorecarddomain.DirectionBelow, 50)
	mustRecord(t, svc, definition.ID, 1, 70)
	mustRecord(t, svc, definition.ID, 1, 40)

	rows, err := svc.Scorecard(context.Background(), departmentID, period)
	if err != nil {
		t.Fatalf("failed to load scorecard: %v", err)
	}
	if len(rows[0].Entries) != 1 {
		t.Fatalf("expected overwrite, got %d entries", len(rows[0].Entries))
	}
	if rows[0].Entries[0].Value != 40 {
		t.Fatalf("expected re-recorded value 40, got %v", rows[0].Entries[0].Value)
	}
	if rows[0].Status != scorecarddomain.StatusOnTarget {
		t.Fatalf("expected on_target, got %s", rows[0].Status)
	}
}

func TestStatusSummaryCountsMissingSeparately(t *testing.T) {
	svc, _ := newTestService(t)
	departmentID := snowflake.ID(10)

	hit := mustCreateDefinition(t, svc, departmentID, "Units Sold", scorecarddomain.DirectionAbove, 100)
	missed := mustCreateDefinition(t, svc, departmentID, "Gross Profit", scorecarddomain.DirectionAbove, 100)
	mustCreateDefinition(t, svc, departmentID, "Appointments", scorecarddomain.DirectionAbove, 100)

	mustRecord(t, svc, hit.ID, 1, 110)
	mustRecord(t, svc, missed.ID, 1, 30)

	summary, err := svc.StatusSummary(context.Background(), departmentID, period)
	if err != nil {
		t.Fatalf("failed to summarize: %v", err)
	}
	if summary[scorecarddomain.StatusOnTarget] != 1 ||
		summary[scorecarddomain.StatusOffTarget] != 1 ||
		summary[scorecarddomain.StatusMissing] != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestRecordEntryPublishesChange(t *testing.T) {
	svc, hub := newTestService(t)
	departmentID := snowflake.ID(10)
	definition := mustCreateDefinition(t, svc, departmentID, "CSI Score", scorecarddomain.DirectionAbove, 100)

	sub, _, err := hub.Subscribe(changefeed.RecordKPIEntry)
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}
	defer sub.Close()

	mustRecord(t, svc, definition.ID, 1, 95)

	select {
	case event := <-sub.Events():
		if event.DepartmentID != departmentID.String() || event.Action != "recorded" {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a kpi_entry change event")
	}
}

func TestDeleteDefinitionRemovesEntries(t *testing.T) {
	svc, _ := newTestService(t)
	departmentID := snowflake.ID(10)
	definition := mustCreateDefinition(t, svc, departmentID, "CSI Score", scorecarddomain.DirectionAbove, 100)
	mustRecord(t, svc, definition.ID, 1, 95)

	if err := svc.DeleteDefinition(context.Background(), definition.ID.String()); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	rows, err := svc.Scorecard(context.Background(), departmentID, period)
	if err != nil {
		t.Fatalf("failed to load scorecard: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty scorecard, got %d rows", len(rows))
	}
}
