package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/pitlane-hq/pitlane/internal/authorization"
	meetingdomain "github.com/pitlane-hq/pitlane/internal/meeting/domain"
)

type ScheduleMeetingRequest struct {
	Title       string    `json:"title"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

type RateMeetingRequest struct {
	Rating int `json:"rating"`
}

type ConcludeMeetingRequest struct {
	ResolvedIssueIDs []string `json:"resolved_issue_ids"`
}

func (s *Server) ListMeetings(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	meetings, err := s.meetingSvc.List(c.Request.Context(), snapshot.State.ActiveDepartmentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"meetings": meetings})
}

func (s *Server) ScheduleMeeting(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req ScheduleMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectMeeting, authorization.ActionMeetingRun); err != nil {
		AbortWithError(c, err)
		return
	}

	detail, err := s.meetingSvc.Schedule(c.Request.Context(), meetingdomain.ScheduleMeetingRequest{
		StoreID:      snapshot.State.ActiveStoreID,
		DepartmentID: snapshot.State.ActiveDepartmentID,
		Title:        strings.TrimSpace(req.Title),
		ScheduledAt:  req.ScheduledAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, detail)
}

func (s *Server) GetMeeting(c *gin.Context) {
	if _, err := s.activeDepartmentScope(c); err != nil {
		AbortWithError(c, err)
		return
	}

	detail, err := s.meetingSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (s *Server) StartMeeting(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectMeeting, authorization.ActionMeetingRun); err != nil {
		AbortWithError(c, err)
		return
	}

	detail, err := s.meetingSvc.Start(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (s *Server) AdvanceMeeting(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectMeeting, authorization.ActionMeetingRun); err != nil {
		AbortWithError(c, err)
		return
	}

	detail, err := s.meetingSvc.AdvanceSegment(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (s *Server) RateMeeting(c *gin.Context) {
	if _, err := s.activeDepartmentScope(c); err != nil {
		AbortWithError(c, err)
		return
	}

	var req RateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	userID, ok := s.userID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.meetingSvc.Rate(c.Request.Context(), c.Param("id"), userID, req.Rating); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "rated"})
}

func (s *Server) ConcludeMeeting(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req ConcludeMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectMeeting, authorization.ActionMeetingConclude); err != nil {
		AbortWithError(c, err)
		return
	}

	resolved := make([]snowflake.ID, 0, len(req.ResolvedIssueIDs))
	for _, raw := range req.ResolvedIssueIDs {
		id, err := snowflake.ParseString(strings.TrimSpace(raw))
		if err != nil || id == 0 {
			AbortWithError(c, newValidationError("resolved_issue_ids", "invalid_id", "invalid issue id"))
			return
		}
		resolved = append(resolved, id)
	}

	detail, err := s.meetingSvc.Conclude(c.Request.Context(), c.Param("id"), resolved)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}
