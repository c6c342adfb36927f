// Package domain contains the weekly pulse-meeting entities: a meeting per
// department with an ordered segment agenda, attendee ratings, and a
// conclude step that settles the issues worked during the meeting.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusConcluded  = "concluded"
)

// Segment kinds in default agenda order.
const (
	SegmentCheckIn    = "check_in"
	SegmentScorecard  = "scorecard_review"
	SegmentRockReview = "rock_review"
	SegmentHeadlines  = "headlines"
	SegmentTodoReview = "todo_review"
	SegmentIssues     = "issues"
	SegmentConclude   = "conclude"
)

// Meeting is one scheduled or held pulse meeting.
type Meeting struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID        snowflake.ID `gorm:"column:store_id;not null;index" json:"store_id"`
	DepartmentID   snowflake.ID `gorm:"column:department_id;not null;index" json:"department_id"`
	Title          string       `gorm:"type:text;not null" json:"title"`
	Status         string       `gorm:"type:text;not null;default:scheduled" json:"status"`
	ScheduledAt    time.Time    `gorm:"not null" json:"scheduled_at"`
	StartedAt      *time.Time   `gorm:"column:started_at" json:"started_at,omitempty"`
	ConcludedAt    *time.Time   `gorm:"column:concluded_at" json:"concluded_at,omitempty"`
	CurrentSegment int          `gorm:"not null;default:0" json:"current_segment"`
	AverageRating  float64      `gorm:"not null;default:0" json:"average_rating"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Meeting) TableName() string { return "meetings" }

// MeetingSegment is one agenda item with its allotted minutes. Position is
// the zero-based agenda order.
type MeetingSegment struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	MeetingID       snowflake.ID `gorm:"column:meeting_id;not null;index;uniqueIndex:ux_meeting_segments,priority:1" json:"meeting_id"`
	Position        int          `gorm:"not null;uniqueIndex:ux_meeting_segments,priority:2" json:"position"`
	Kind            string       `gorm:"type:text;not null" json:"kind"`
	AllottedMinutes int          `gorm:"not null" json:"allotted_minutes"`
	StartedAt       *time.Time   `gorm:"column:started_at" json:"started_at,omitempty"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (MeetingSegment) TableName() string { return "meeting_segments" }

// MeetingRating is one attendee's 1-10 score for a concluded meeting.
type MeetingRating struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	MeetingID snowflake.ID `gorm:"column:meeting_id;not null;index;uniqueIndex:ux_meeting_ratings,priority:1" json:"meeting_id"`
	UserID    snowflake.ID `gorm:"column:user_id;not null;uniqueIndex:ux_meeting_ratings,priority:2" json:"user_id"`
	Rating    int          `gorm:"not null" json:"rating"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (MeetingRating) TableName() string { return "meeting_ratings" }

// AgendaItem pairs a segment kind with its default minutes.
type AgendaItem struct {
	Kind    string
	Minutes int
}

// DefaultAgenda is the standard 90-minute pulse agenda.
func DefaultAgenda() []AgendaItem {
	return []AgendaItem{
		{SegmentCheckIn, 5},
		{SegmentScorecard, 5},
		{SegmentRockReview, 5},
		{SegmentHeadlines, 5},
		{SegmentTodoReview, 5},
		{SegmentIssues, 60},
		{SegmentConclude, 5},
	}
}
