// Package domain contains the scorecard entities: KPI definitions and their
// recorded entries per reporting period.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	MetricPercentage = "percentage"
	MetricCurrency   = "currency"
	MetricCount      = "count"
)

const (
	DirectionAbove = "above"
	DirectionBelow = "below"
)

const (
	GranularityWeekly  = "weekly"
	GranularityMonthly = "monthly"
)

// KPIDefinition describes one tracked metric on a department's scorecard.
type KPIDefinition struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID         snowflake.ID `gorm:"column:store_id;not null;index" json:"store_id"`
	DepartmentID    snowflake.ID `gorm:"column:department_id;not null;index" json:"department_id"`
	Name            string       `gorm:"type:text;not null" json:"name"`
	MetricType      string       `gorm:"type:text;not null;default:count" json:"metric_type"`
	TargetValue     float64      `gorm:"not null" json:"target_value"`
	TargetDirection string       `gorm:"type:text;not null;default:above" json:"target_direction"`
	Granularity     string       `gorm:"type:text;not null;default:weekly" json:"granularity"`
	DisplayOrder    int          `gorm:"not null;default:0" json:"display_order"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (KPIDefinition) TableName() string { return "kpi_definitions" }

// KPIEntry is one recorded value for a definition in a period slot. Slot is
// the week-of-quarter for weekly KPIs and the month-of-quarter for monthly
// ones. One row per definition and slot; re-recording overwrites.
type KPIEntry struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	DefinitionID snowflake.ID `gorm:"column:definition_id;not null;index;uniqueIndex:ux_kpi_entries,priority:1" json:"definition_id"`
	Year         int          `gorm:"not null;uniqueIndex:ux_kpi_entries,priority:2" json:"year"`
	Quarter      int          `gorm:"not null;uniqueIndex:ux_kpi_entries,priority:3" json:"quarter"`
	Slot         int          `gorm:"not null;uniqueIndex:ux_kpi_entries,priority:4" json:"slot"`
	Value        float64      `gorm:"not null" json:"value"`
	Note         string       `gorm:"type:text" json:"note"`
	RecordedBy   snowflake.ID `gorm:"column:recorded_by" json:"recorded_by"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (KPIEntry) TableName() string { return "kpi_entries" }

func ValidMetricType(t string) bool {
	switch t {
	case MetricPercentage, MetricCurrency, MetricCount:
		return true
	}
	return false
}

func ValidDirection(d string) bool {
	return d == DirectionAbove || d == DirectionBelow
}

func ValidGranularity(g string) bool {
	return g == GranularityWeekly || g == GranularityMonthly
}
