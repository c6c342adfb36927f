package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/changefeed"
	"github.com/pitlane-hq/pitlane/internal/clock"
	meetingdomain "github.com/pitlane-hq/pitlane/internal/meeting/domain"
	meetingrepo "github.com/pitlane-hq/pitlane/internal/meeting/repository"
	todosdomain "github.com/pitlane-hq/pitlane/internal/todos/domain"
	todosrepo "github.com/pitlane-hq/pitlane/internal/todos/repository"
	"github.com/pitlane-hq/pitlane/pkg/db"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (meetingdomain.Service, todosdomain.Repository, *snowflake.Node) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(
		&meetingdomain.Meeting{},
		&meetingdomain.MeetingSegment{},
		&meetingdomain.MeetingRating{},
		&todosdomain.Todo{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	todos := todosrepo.New(dbConn)
	clk := clock.NewFakeClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	svc := New(zap.NewNop(), meetingrepo.New(dbConn), todos, changefeed.NewHub(), node, clk)
	return svc, todos, node
}

func mustSchedule(t *testing.T, svc meetingdomain.Service) *meetingdomain.MeetingDetail {
	t.Helper()
	detail, err := svc.Schedule(context.Background(), meetingdomain.ScheduleMeetingRequest{
		StoreID:      snowflake.ID(1),
		DepartmentID: snowflake.ID(10),
		Title:        "Service weekly pulse",
		ScheduledAt:  time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("failed to schedule: %v", err)
	}
	return detail
}

func TestScheduleBuildsDefaultAgenda(t *testing.T) {
	svc, _, _ := newTestService(t)
	detail := mustSchedule(t, svc)

	agenda := meetingdomain.DefaultAgenda()
	if len(detail.Segments) != len(agenda) {
		t.Fatalf("expected %d segments, got %d", len(agenda), len(detail.Segments))
	}
	for i, segment := range detail.Segments {
		if segment.Kind != agenda[i].Kind || segment.AllottedMinutes != agenda[i].Minutes {
			t.Fatalf("segment %d mismatch: %+v", i, segment)
		}
	}
}

func TestStartAndAdvanceWalksAgenda(t *testing.T) {
	svc, _, _ := newTestService(t)
	detail := mustSchedule(t, svc)
	id := detail.Meeting.ID.String()

	started, err := svc.Start(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	if started.Meeting.Status != meetingdomain.StatusInProgress || started.Meeting.CurrentSegment != 0 {
		t.Fatalf("unexpected state after start: %+v", started.Meeting)
	}
	if started.Segments[0].StartedAt == nil {
		t.Fatal("expected first segment marked started")
	}

	// Starting twice is rejected.
	if _, err := svc.Start(context.Background(), id); err != meetingdomain.ErrMeetingInProgress {
		t.Fatalf("expected ErrMeetingInProgress, got %v", err)
	}

	for i := 1; i < len(detail.Segments); i++ {
		advanced, err := svc.AdvanceSegment(context.Background(), id)
		if err != nil {
			t.Fatalf("failed to advance to segment %d: %v", i, err)
		}
		if advanced.Meeting.CurrentSegment != i {
			t.Fatalf("expected segment %d, got %d", i, advanced.Meeting.CurrentSegment)
		}
	}

	// The agenda ends at conclude; there is nothing after it.
	if _, err := svc.AdvanceSegment(context.Background(), id); err != meetingdomain.ErrEndOfAgenda {
		t.Fatalf("expected ErrEndOfAgenda, got %v", err)
	}
}

func TestConcludeAveragesRatingsAndClosesIssues(t *testing.T) {
	svc, todos, node := newTestService(t)
	detail := mustSchedule(t, svc)
	id := detail.Meeting.ID.String()

	issue := &todosdomain.Todo{
		ID:           node.Generate(),
		StoreID:      snowflake.ID(1),
		DepartmentID: snowflake.ID(10),
		Kind:         todosdomain.KindIssue,
		Title:        "Parts delivery late",
	}
	if err := todos.Create(context.Background(), issue); err != nil {
		t.Fatalf("failed to create issue: %v", err)
	}

	if _, err := svc.Start(context.Background(), id); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	if err := svc.Rate(context.Background(), id, snowflake.ID(7), 8); err != nil {
		t.Fatalf("failed to rate: %v", err)
	}
	if err := svc.Rate(context.Background(), id, snowflake.ID(8), 6); err != nil {
		t.Fatalf("failed to rate: %v", err)
	}

	concluded, err := svc.Conclude(context.Background(), id, []snowflake.ID{issue.ID})
	if err != nil {
		t.Fatalf("failed to conclude: %v", err)
	}
	if concluded.Meeting.Status != meetingdomain.StatusConcluded {
		t.Fatalf("expected concluded, got %s", concluded.Meeting.Status)
	}
	if concluded.Meeting.AverageRating != 7 {
		t.Fatalf("expected average 7, got %v", concluded.Meeting.AverageRating)
	}

	closed, err := todos.FindByID(context.Background(), issue.ID)
	if err != nil {
		t.Fatalf("failed to reload issue: %v", err)
	}
	if closed.CompletedAt == nil {
		t.Fatal("expected issue closed at conclusion")
	}

	// Concluding twice is rejected.
	if _, err := svc.Conclude(context.Background(), id, nil); err != meetingdomain.ErrMeetingNotStarted {
		t.Fatalf("expected ErrMeetingNotStarted, got %v", err)
	}
}

func TestRateRequiresStartedMeetingAndValidScore(t *testing.T) {
	svc, _, _ := newTestService(t)
	detail := mustSchedule(t, svc)
	id := detail.Meeting.ID.String()

	if err := svc.Rate(context.Background(), id, snowflake.ID(7), 8); err != meetingdomain.ErrMeetingNotStarted {
		t.Fatalf("expected ErrMeetingNotStarted, got %v", err)
	}
	if _, err := svc.Start(context.Background(), id); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	if err := svc.Rate(context.Background(), id, snowflake.ID(7), 11); err != meetingdomain.ErrInvalidRating {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}
}
