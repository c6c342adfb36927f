// Package domain contains quarterly goal ("rock") entities.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusOnTrack  = "on_track"
	StatusOffTrack = "off_track"
	StatusDone     = "done"
)

// Rock is one quarterly goal owned by a person within a department.
type Rock struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID      snowflake.ID `gorm:"column:store_id;not null;index" json:"store_id"`
	DepartmentID snowflake.ID `gorm:"column:department_id;not null;index" json:"department_id"`
	OwnerUserID  snowflake.ID `gorm:"column:owner_user_id;not null;index" json:"owner_user_id"`
	Title        string       `gorm:"type:text;not null" json:"title"`
	Description  string       `gorm:"type:text" json:"description"`
	Year         int          `gorm:"not null;index:idx_rocks_period" json:"year"`
	Quarter      int          `gorm:"not null;index:idx_rocks_period" json:"quarter"`
	Status       string       `gorm:"type:text;not null;default:on_track" json:"status"`
	Milestones   int          `gorm:"not null;default:0" json:"milestones"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Rock) TableName() string { return "rocks" }

func ValidStatus(status string) bool {
	switch status {
	case StatusOnTrack, StatusOffTrack, StatusDone:
		return true
	}
	return false
}
