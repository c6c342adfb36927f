package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// DependentData is the aggregate the dashboard renders for the active
// department: KPI definitions, KPI status counts for the current period,
// open goal and task counts. It is replaced wholesale on every reload; a
// load for a superseded selection is discarded, never merged.
type DependentData struct {
	KPIDefinitions int            `json:"kpi_definitions"`
	KPIStatus      map[string]int `json:"kpi_status"`
	OpenGoals      int            `json:"open_goals"`
	OpenTasks      int            `json:"open_tasks"`
}

// DependentLoader performs the dependent reads for one store/department
// pair. Implementations must be pure reads: a loader never touches
// selection state.
type DependentLoader interface {
	Load(ctx context.Context, storeID, departmentID snowflake.ID) (*DependentData, error)
}
