package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/changefeed"
	"github.com/pitlane-hq/pitlane/internal/clock"
	"github.com/pitlane-hq/pitlane/internal/meeting/domain"
	todosdomain "github.com/pitlane-hq/pitlane/internal/todos/domain"
	"go.uber.org/zap"
)

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	todos todosdomain.Repository
	hub   *changefeed.Hub
	genID *snowflake.Node
	clock clock.Clock
}

func New(log *zap.Logger, repo domain.Repository, todos todosdomain.Repository, hub *changefeed.Hub, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &Service{
		log:   log.Named("meeting.service"),
		repo:  repo,
		todos: todos,
		hub:   hub,
		genID: genID,
		clock: clk,
	}
}

func (s *Service) Schedule(ctx context.Context, req domain.ScheduleMeetingRequest) (*domain.MeetingDetail, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}

	now := s.clock.Now()
	meeting := &domain.Meeting{
		ID:           s.genID.Generate(),
		StoreID:      req.StoreID,
		DepartmentID: req.DepartmentID,
		Title:        title,
		Status:       domain.StatusScheduled,
		ScheduledAt:  req.ScheduledAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	agenda := domain.DefaultAgenda()
	segments := make([]domain.MeetingSegment, 0, len(agenda))
	for position, item := range agenda {
		segments = append(segments, domain.MeetingSegment{
			ID:              s.genID.Generate(),
			MeetingID:       meeting.ID,
			Position:        position,
			Kind:            item.Kind,
			AllottedMinutes: item.Minutes,
			CreatedAt:       now,
		})
	}
	if err := s.repo.Create(ctx, meeting, segments); err != nil {
		return nil, err
	}
	s.publish(meeting, "scheduled")
	return &domain.MeetingDetail{Meeting: *meeting, Segments: segments}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.MeetingDetail, error) {
	meeting, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, meeting)
}

func (s *Service) List(ctx context.Context, departmentID snowflake.ID) ([]domain.Meeting, error) {
	return s.repo.ListByDepartment(ctx, departmentID)
}

func (s *Service) Start(ctx context.Context, id string) (*domain.MeetingDetail, error) {
	meeting, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	switch meeting.Status {
	case domain.StatusInProgress:
		return nil, domain.ErrMeetingInProgress
	case domain.StatusConcluded:
		return nil, domain.ErrMeetingConcluded
	}

	now := s.clock.Now()
	meeting.Status = domain.StatusInProgress
	meeting.StartedAt = &now
	meeting.CurrentSegment = 0
	meeting.UpdatedAt = now
	if err := s.repo.Update(ctx, meeting); err != nil {
		return nil, err
	}
	if err := s.markSegmentStarted(ctx, meeting, 0, now); err != nil {
		return nil, err
	}
	s.publish(meeting, "started")
	return s.detail(ctx, meeting)
}

func (s *Service) AdvanceSegment(ctx context.Context, id string) (*domain.MeetingDetail, error) {
	meeting, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if meeting.Status != domain.StatusInProgress {
		return nil, domain.ErrMeetingNotStarted
	}
	segments, err := s.repo.ListSegments(ctx, meeting.ID)
	if err != nil {
		return nil, err
	}
	if meeting.CurrentSegment >= len(segments)-1 {
		return nil, domain.ErrEndOfAgenda
	}

	now := s.clock.Now()
	meeting.CurrentSegment++
	meeting.UpdatedAt = now
	if err := s.repo.Update(ctx, meeting); err != nil {
		return nil, err
	}
	if err := s.markSegmentStarted(ctx, meeting, meeting.CurrentSegment, now); err != nil {
		return nil, err
	}
	s.publish(meeting, "segment_advanced")
	return s.detail(ctx, meeting)
}

func (s *Service) Rate(ctx context.Context, id string, userID snowflake.ID, rating int) error {
	if rating < 1 || rating > 10 {
		return domain.ErrInvalidRating
	}
	meeting, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if meeting.Status == domain.StatusScheduled {
		return domain.ErrMeetingNotStarted
	}
	return s.repo.UpsertRating(ctx, &domain.MeetingRating{
		ID:        s.genID.Generate(),
		MeetingID: meeting.ID,
		UserID:    userID,
		Rating:    rating,
		CreatedAt: s.clock.Now(),
	})
}

func (s *Service) Conclude(ctx context.Context, id string, resolvedIssueIDs []snowflake.ID) (*domain.MeetingDetail, error) {
	meeting, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if meeting.Status != domain.StatusInProgress {
		return nil, domain.ErrMeetingNotStarted
	}

	ratings, err := s.repo.ListRatings(ctx, meeting.ID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	meeting.Status = domain.StatusConcluded
	meeting.ConcludedAt = &now
	meeting.AverageRating = averageRating(ratings)
	meeting.UpdatedAt = now
	if err := s.repo.Update(ctx, meeting); err != nil {
		return nil, err
	}
	if err := s.todos.CloseIssuesByIDs(ctx, resolvedIssueIDs, now); err != nil {
		// The meeting is concluded either way; the unclosed issues stay on
		// the list for next week.
		s.log.Error("close resolved issues", zap.Stringer("meeting_id", meeting.ID), zap.Error(err))
	}
	s.publish(meeting, "concluded")
	return s.detail(ctx, meeting)
}

func (s *Service) find(ctx context.Context, id string) (*domain.Meeting, error) {
	meetingID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, domain.ErrInvalidMeeting
	}
	return s.repo.FindByID(ctx, meetingID)
}

func (s *Service) detail(ctx context.Context, meeting *domain.Meeting) (*domain.MeetingDetail, error) {
	segments, err := s.repo.ListSegments(ctx, meeting.ID)
	if err != nil {
		return nil, err
	}
	ratings, err := s.repo.ListRatings(ctx, meeting.ID)
	if err != nil {
		return nil, err
	}
	return &domain.MeetingDetail{Meeting: *meeting, Segments: segments, Ratings: ratings}, nil
}

func (s *Service) markSegmentStarted(ctx context.Context, meeting *domain.Meeting, position int, at time.Time) error {
	segments, err := s.repo.ListSegments(ctx, meeting.ID)
	if err != nil {
		return err
	}
	for i := range segments {
		if segments[i].Position != position || segments[i].StartedAt != nil {
			continue
		}
		segments[i].StartedAt = &at
		return s.repo.UpdateSegment(ctx, &segments[i])
	}
	return nil
}

func (s *Service) publish(meeting *domain.Meeting, action string) {
	s.hub.Publish(changefeed.RecordMeeting, changefeed.Event{
		RecordID:     meeting.ID.String(),
		StoreID:      meeting.StoreID.String(),
		DepartmentID: meeting.DepartmentID.String(),
		Action:       action,
		OccurredAt:   s.clock.Now(),
	})
}

func averageRating(ratings []domain.MeetingRating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, rating := range ratings {
		sum += rating.Rating
	}
	return float64(sum) / float64(len(ratings))
}
