package dashboard

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/clock"
	rocksdomain "github.com/pitlane-hq/pitlane/internal/rocks/domain"
	scorecarddomain "github.com/pitlane-hq/pitlane/internal/scorecard/domain"
	selectiondomain "github.com/pitlane-hq/pitlane/internal/selection/domain"
	todosdomain "github.com/pitlane-hq/pitlane/internal/todos/domain"
	"go.uber.org/zap"
)

// Loader aggregates the reads behind the department dashboard: KPI
// definitions and status bands for the current quarter, open rocks and
// open todos/issues. It is the dependent-data source for selection.
type Loader struct {
	log       *zap.Logger
	scorecard scorecarddomain.Service
	rocks     rocksdomain.Service
	todos     todosdomain.Service
	clock     clock.Clock
}

func NewLoader(
	log *zap.Logger,
	scorecard scorecarddomain.Service,
	rocks rocksdomain.Service,
	todos todosdomain.Service,
	clk clock.Clock,
) selectiondomain.DependentLoader {
	return &Loader{
		log:       log.Named("dashboard"),
		scorecard: scorecard,
		rocks:     rocks,
		todos:     todos,
		clock:     clk,
	}
}

func (l *Loader) Load(ctx context.Context, storeID, departmentID snowflake.ID) (*selectiondomain.DependentData, error) {
	period := currentPeriod(l.clock.Now())

	definitions, err := l.scorecard.ListDefinitions(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	status, err := l.scorecard.StatusSummary(ctx, departmentID, period)
	if err != nil {
		return nil, err
	}
	rockCounts, err := l.rocks.Counts(ctx, departmentID, period.Year, period.Quarter)
	if err != nil {
		return nil, err
	}
	openCounts, err := l.todos.Counts(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	l.log.Debug("dashboard loaded",
		zap.Stringer("store_id", storeID),
		zap.Stringer("department_id", departmentID),
		zap.Int("kpi_definitions", len(definitions)),
	)

	return &selectiondomain.DependentData{
		KPIDefinitions: len(definitions),
		KPIStatus:      status,
		OpenGoals:      rockCounts.OnTrack + rockCounts.OffTrack,
		OpenTasks:      openCounts.Todos + openCounts.Issues,
	}, nil
}

func currentPeriod(now time.Time) scorecarddomain.Period {
	return scorecarddomain.Period{
		Year:    now.Year(),
		Quarter: int(now.Month()-1)/3 + 1,
	}
}
