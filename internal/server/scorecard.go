package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pitlane-hq/pitlane/internal/authorization"
	scorecarddomain "github.com/pitlane-hq/pitlane/internal/scorecard/domain"
)

type CreateKPIDefinitionRequest struct {
	Name            string  `json:"name"`
	MetricType      string  `json:"metric_type"`
	TargetValue     float64 `json:"target_value"`
	TargetDirection string  `json:"target_direction"`
	Granularity     string  `json:"granularity"`
	DisplayOrder    int     `json:"display_order"`
}

type UpdateKPIDefinitionRequest struct {
	Name            *string  `json:"name"`
	MetricType      *string  `json:"metric_type"`
	TargetValue     *float64 `json:"target_value"`
	TargetDirection *string  `json:"target_direction"`
	Granularity     *string  `json:"granularity"`
	DisplayOrder    *int     `json:"display_order"`
}

type RecordKPIEntryRequest struct {
	DefinitionID string  `json:"definition_id"`
	Year         int     `json:"year"`
	Quarter      int     `json:"quarter"`
	Slot         int     `json:"slot"`
	Value        float64 `json:"value"`
	Note         string  `json:"note"`
}

func (s *Server) GetScorecard(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	period := s.periodFromQuery(c)
	rows, err := s.scorecardSvc.Scorecard(c.Request.Context(), snapshot.State.ActiveDepartmentID, period)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"period": period,
		"rows":   rows,
	})
}

func (s *Server) CreateKPIDefinition(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req CreateKPIDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectScorecard, authorization.ActionScorecardManage); err != nil {
		AbortWithError(c, err)
		return
	}

	definition, err := s.scorecardSvc.CreateDefinition(c.Request.Context(), scorecarddomain.CreateDefinitionRequest{
		StoreID:         snapshot.State.ActiveStoreID,
		DepartmentID:    snapshot.State.ActiveDepartmentID,
		Name:            strings.TrimSpace(req.Name),
		MetricType:      req.MetricType,
		TargetValue:     req.TargetValue,
		TargetDirection: req.TargetDirection,
		Granularity:     req.Granularity,
		DisplayOrder:    req.DisplayOrder,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, definition)
}

func (s *Server) UpdateKPIDefinition(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req UpdateKPIDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectScorecard, authorization.ActionScorecardManage); err != nil {
		AbortWithError(c, err)
		return
	}

	definition, err := s.scorecardSvc.UpdateDefinition(c.Request.Context(), c.Param("id"), scorecarddomain.UpdateDefinitionRequest{
		Name:            req.Name,
		MetricType:      req.MetricType,
		TargetValue:     req.TargetValue,
		TargetDirection: req.TargetDirection,
		Granularity:     req.Granularity,
		DisplayOrder:    req.DisplayOrder,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, definition)
}

func (s *Server) DeleteKPIDefinition(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectScorecard, authorization.ActionScorecardManage); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.scorecardSvc.DeleteDefinition(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) RecordKPIEntry(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req RecordKPIEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectScorecard, authorization.ActionScorecardRecord); err != nil {
		AbortWithError(c, err)
		return
	}

	userID, _ := s.userID(c)
	entry, err := s.scorecardSvc.RecordEntry(c.Request.Context(), scorecarddomain.RecordEntryRequest{
		DefinitionID: strings.TrimSpace(req.DefinitionID),
		Year:         req.Year,
		Quarter:      req.Quarter,
		Slot:         req.Slot,
		Value:        req.Value,
		Note:         strings.TrimSpace(req.Note),
		RecordedBy:   userID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// periodFromQuery reads year/quarter query parameters, defaulting to the
// current quarter.
func (s *Server) periodFromQuery(c *gin.Context) scorecarddomain.Period {
	now := s.clock.Now()
	period := scorecarddomain.Period{
		Year:    now.Year(),
		Quarter: quarterOf(now),
	}
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		if year, err := strconv.Atoi(raw); err == nil && year > 0 {
			period.Year = year
		}
	}
	if raw := strings.TrimSpace(c.Query("quarter")); raw != "" {
		if quarter, err := strconv.Atoi(raw); err == nil && quarter >= 1 && quarter <= 4 {
			period.Quarter = quarter
		}
	}
	return period
}

func quarterOf(t time.Time) int {
	return int(t.Month()-1)/3 + 1
}
