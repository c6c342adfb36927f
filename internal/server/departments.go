package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pitlane-hq/pitlane/internal/authorization"
	departmentdomain "github.com/pitlane-hq/pitlane/internal/department/domain"
)

type CreateDepartmentRequest struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	ManagerUserID *string `json:"manager_user_id"`
}

type UpdateDepartmentRequest struct {
	Name          *string `json:"name"`
	Type          *string `json:"type"`
	ManagerUserID *string `json:"manager_user_id"`
}

// ListDepartments returns the caller's department candidates within the
// active store, which is the same set selection validates against.
func (s *Server) ListDepartments(c *gin.Context) {
	snapshot, err := s.activeScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": snapshot.State.CandidateDepartments})
}

func (s *Server) CreateDepartment(c *gin.Context) {
	snapshot, err := s.activeScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	managerID, err := parseOptionalID(req.ManagerUserID)
	if err != nil {
		AbortWithError(c, newValidationError("manager_user_id", "invalid_user", "invalid user id"))
		return
	}

	storeID := snapshot.State.ActiveStoreID
	if err := s.authorize(c, storeID, authorization.ObjectDepartment, authorization.ActionDepartmentManage); err != nil {
		AbortWithError(c, err)
		return
	}

	department, err := s.departmentSvc.Create(c.Request.Context(), departmentdomain.CreateDepartmentRequest{
		StoreID:       storeID,
		Name:          strings.TrimSpace(req.Name),
		Type:          strings.TrimSpace(req.Type),
		ManagerUserID: managerID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, department)
}

func (s *Server) UpdateDepartment(c *gin.Context) {
	snapshot, err := s.activeScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	managerID, err := parseOptionalID(req.ManagerUserID)
	if err != nil {
		AbortWithError(c, newValidationError("manager_user_id", "invalid_user", "invalid user id"))
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectDepartment, authorization.ActionDepartmentManage); err != nil {
		AbortWithError(c, err)
		return
	}

	update := departmentdomain.UpdateDepartmentRequest{
		Name: req.Name,
		Type: req.Type,
	}
	if managerID != nil {
		update.ManagerUserID = managerID
	}

	department, err := s.departmentSvc.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, department)
}

func (s *Server) GrantDepartmentAccess(c *gin.Context) {
	snapshot, err := s.activeScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	departmentID, targetUserID, err := grantParams(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectDepartment, authorization.ActionDepartmentManage); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.departmentSvc.GrantAccess(c.Request.Context(), targetUserID, departmentID); err != nil {
		AbortWithError(c, err)
		return
	}

	s.selections.Invalidate(targetUserID)
	c.JSON(http.StatusCreated, gin.H{"status": "granted"})
}

func (s *Server) RevokeDepartmentAccess(c *gin.Context) {
	snapshot, err := s.activeScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	departmentID, targetUserID, err := grantParams(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectDepartment, authorization.ActionDepartmentManage); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.departmentSvc.RevokeAccess(c.Request.Context(), targetUserID, departmentID); err != nil {
		AbortWithError(c, err)
		return
	}

	s.selections.Invalidate(targetUserID)
	c.JSON(http.StatusOK, gin.H{"status": "revoked"})
}
