package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/clock"
	rocksdomain "github.com/pitlane-hq/pitlane/internal/rocks/domain"
	scorecarddomain "github.com/pitlane-hq/pitlane/internal/scorecard/domain"
	todosdomain "github.com/pitlane-hq/pitlane/internal/todos/domain"
	"go.uber.org/zap"
)

type stubScorecard struct {
	scorecarddomain.Service
	definitions int
	status      map[string]int
	gotPeriod   scorecarddomain.Period
}

func (s *stubScorecard) ListDefinitions(ctx context.Context, departmentID snowflake.ID) ([]scorecarddomain.KPIDefinition, error) {
	return make([]scorecarddomain.KPIDefinition, s.definitions), nil
}

func (s *stubScorecard) StatusSummary(ctx context.Context, departmentID snowflake.ID, period scorecarddomain.Period) (map[string]int, error) {
	s.gotPeriod = period
	return s.status, nil
}

type stubRocks struct {
	rocksdomain.Service
	counts rocksdomain.StatusCounts
}

func (s *stubRocks) Counts(ctx context.Context, departmentID snowflake.ID, year, quarter int) (rocksdomain.StatusCounts, error) {
	return s.counts, nil
}

type stubTodos struct {
	todosdomain.Service
	counts todosdomain.OpenCounts
}

func (s *stubTodos) Counts(ctx context.Context, departmentID snowflake.ID) (todosdomain.OpenCounts, error) {
	return s.counts, nil
}

func TestLoadAggregatesCurrentQuarter(t *testing.T) {
	scorecard := &stubScorecard{
		definitions: 4,
		status:      map[string]int{"on_target": 2, "at_risk": 1, "off_target": 1},
	}
	rocks := &stubRocks{counts: rocksdomain.StatusCounts{OnTrack: 2, OffTrack: 1, Done: 3, Total: 6}}
	todos := &stubTodos{counts: todosdomain.OpenCounts{Todos: 5, Issues: 2}}
	clk := clock.NewFakeClock(time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))

	loader := NewLoader(zap.NewNop(), scorecard, rocks, todos, clk)

	data, err := loader.Load(context.Background(), snowflake.ID(1), snowflake.ID(10))
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if data.KPIDefinitions != 4 {
		t.Fatalf("expected 4 definitions, got %d", data.KPIDefinitions)
	}
	if data.KPIStatus["on_target"] != 2 {
		t.Fatalf("unexpected status map: %v", data.KPIStatus)
	}
	// Open goals exclude done rocks.
	if data.OpenGoals != 3 {
		t.Fatalf("expected 3 open goals, got %d", data.OpenGoals)
	}
	if data.OpenTasks != 7 {
		t.Fatalf("expected 7 open tasks, got %d", data.OpenTasks)
	}
	if scorecard.gotPeriod != (scorecarddomain.Period{Year: 2026, Quarter: 3}) {
		t.Fatalf("expected Q3 2026, got %+v", scorecard.gotPeriod)
	}
}
