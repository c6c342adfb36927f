package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pitlane-hq/pitlane/internal/authorization"
	rocksdomain "github.com/pitlane-hq/pitlane/internal/rocks/domain"
)

type CreateRockRequest struct {
	OwnerUserID string `json:"owner_user_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Year        int    `json:"year"`
	Quarter     int    `json:"quarter"`
}

type UpdateRockRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Milestones  *int    `json:"milestones"`
	OwnerUserID *string `json:"owner_user_id"`
}

func (s *Server) ListRocks(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	period := s.periodFromQuery(c)
	rocks, err := s.rocksSvc.List(c.Request.Context(), snapshot.State.ActiveDepartmentID, period.Year, period.Quarter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	counts, err := s.rocksSvc.Counts(c.Request.Context(), snapshot.State.ActiveDepartmentID, period.Year, period.Quarter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"period": period,
		"rocks":  rocks,
		"counts": counts,
	})
}

func (s *Server) CreateRock(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req CreateRockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectRock, authorization.ActionRockManage); err != nil {
		AbortWithError(c, err)
		return
	}

	ownerID, err := parseOptionalID(&req.OwnerUserID)
	if err != nil {
		AbortWithError(c, newValidationError("owner_user_id", "invalid_user", "invalid user id"))
		return
	}
	if ownerID == nil {
		if userID, ok := s.userID(c); ok {
			ownerID = &userID
		}
	}

	rock, err := s.rocksSvc.Create(c.Request.Context(), rocksdomain.CreateRockRequest{
		StoreID:      snapshot.State.ActiveStoreID,
		DepartmentID: snapshot.State.ActiveDepartmentID,
		OwnerUserID:  *ownerID,
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		Year:         req.Year,
		Quarter:      req.Quarter,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rock)
}

func (s *Server) UpdateRock(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req UpdateRockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectRock, authorization.ActionRockManage); err != nil {
		AbortWithError(c, err)
		return
	}

	ownerID, err := parseOptionalID(req.OwnerUserID)
	if err != nil {
		AbortWithError(c, newValidationError("owner_user_id", "invalid_user", "invalid user id"))
		return
	}

	rock, err := s.rocksSvc.Update(c.Request.Context(), c.Param("id"), rocksdomain.UpdateRockRequest{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Milestones:  req.Milestones,
		OwnerUserID: ownerID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rock)
}

func (s *Server) DeleteRock(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectRock, authorization.ActionRockManage); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.rocksSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
