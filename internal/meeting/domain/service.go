package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// MeetingDetail bundles a meeting with its agenda and ratings.
type MeetingDetail struct {
	Meeting  Meeting          `json:"meeting"`
	Segments []MeetingSegment `json:"segments"`
	Ratings  []MeetingRating  `json:"ratings"`
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, meeting *Meeting, segments []MeetingSegment) error
	FindByID(ctx context.Context, id snowflake.ID) (*Meeting, error)
	ListByDepartment(ctx context.Context, departmentID snowflake.ID) ([]Meeting, error)
	ListSegments(ctx context.Context, meetingID snowflake.ID) ([]MeetingSegment, error)
	Update(ctx context.Context, meeting *Meeting) error
	UpdateSegment(ctx context.Context, segment *MeetingSegment) error
	UpsertRating(ctx context.Context, rating *MeetingRating) error
	ListRatings(ctx context.Context, meetingID snowflake.ID) ([]MeetingRating, error)
}

type Service interface {
	Schedule(ctx context.Context, req ScheduleMeetingRequest) (*MeetingDetail, error)
	Get(ctx context.Context, id string) (*MeetingDetail, error)
	List(ctx context.Context, departmentID snowflake.ID) ([]Meeting, error)

	// Start moves a scheduled meeting to in_progress at the first segment.
	Start(ctx context.Context, id string) (*MeetingDetail, error)
	// AdvanceSegment moves to the next agenda item; advancing past the last
	// segment is rejected, Conclude is the only way out.
	AdvanceSegment(ctx context.Context, id string) (*MeetingDetail, error)
	// Rate records one attendee's score; re-rating overwrites.
	Rate(ctx context.Context, id string, userID snowflake.ID, rating int) error
	// Conclude closes the meeting, fixes the average rating, and settles
	// the issues resolved during the meeting.
	Conclude(ctx context.Context, id string, resolvedIssueIDs []snowflake.ID) (*MeetingDetail, error)
}

type ScheduleMeetingRequest struct {
	StoreID      snowflake.ID
	DepartmentID snowflake.ID
	Title        string
	ScheduledAt  time.Time
}

var (
	ErrInvalidTitle      = errors.New("invalid_title")
	ErrInvalidMeeting    = errors.New("invalid_meeting")
	ErrInvalidRating     = errors.New("invalid_rating")
	ErrMeetingNotFound   = errors.New("meeting_not_found")
	ErrMeetingNotStarted = errors.New("meeting_not_started")
	ErrMeetingConcluded  = errors.New("meeting_already_concluded")
	ErrMeetingInProgress = errors.New("meeting_already_in_progress")
	ErrEndOfAgenda       = errors.New("end_of_agenda")
)
