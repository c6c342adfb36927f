package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/pitlane-hq/pitlane/internal/authorization"
	storedomain "github.com/pitlane-hq/pitlane/internal/store/domain"
)

type CreateStoreRequest struct {
	Name    string  `json:"name"`
	GroupID *string `json:"group_id"`
	City    string  `json:"city"`
	Region  string  `json:"region"`
}

type CreateStoreGroupRequest struct {
	Name string `json:"name"`
}

// ListStores returns the caller's resolved store scope, not the full store
// table: what you see is what you may select.
func (s *Server) ListStores(c *gin.Context) {
	userID, ok := s.userID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	profile, err := s.profileSvc.Load(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	scope, err := s.storeSvc.ResolveScope(c.Request.Context(), profile)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, scope)
}

func (s *Server) CreateStore(c *gin.Context) {
	var req CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	groupID, err := parseOptionalID(req.GroupID)
	if err != nil {
		AbortWithError(c, newValidationError("group_id", "invalid_group", "invalid group id"))
		return
	}

	if err := s.requireGlobalAdmin(c); err != nil {
		AbortWithError(c, err)
		return
	}

	store, err := s.storeSvc.CreateStore(c.Request.Context(), storedomain.CreateStoreRequest{
		Name:    strings.TrimSpace(req.Name),
		GroupID: groupID,
		City:    strings.TrimSpace(req.City),
		Region:  strings.TrimSpace(req.Region),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, store)
}

func (s *Server) ListStoreGroups(c *gin.Context) {
	groups, err := s.storeSvc.ListGroups(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (s *Server) CreateStoreGroup(c *gin.Context) {
	var req CreateStoreGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.requireGlobalAdmin(c); err != nil {
		AbortWithError(c, err)
		return
	}

	group, err := s.storeSvc.CreateGroup(c.Request.Context(), storedomain.CreateGroupRequest{
		Name: strings.TrimSpace(req.Name),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

func (s *Server) GrantStoreAccess(c *gin.Context) {
	storeID, targetUserID, err := grantParams(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authorize(c, storeID, authorization.ObjectStore, authorization.ActionStoreManage); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.storeSvc.GrantAccess(c.Request.Context(), targetUserID, storeID); err != nil {
		AbortWithError(c, err)
		return
	}

	// The target's candidate set changed; force a re-resolve on next use.
	s.selections.Invalidate(targetUserID)
	c.JSON(http.StatusCreated, gin.H{"status": "granted"})
}

func (s *Server) RevokeStoreAccess(c *gin.Context) {
	storeID, targetUserID, err := grantParams(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authorize(c, storeID, authorization.ObjectStore, authorization.ActionStoreManage); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.storeSvc.RevokeAccess(c.Request.Context(), targetUserID, storeID); err != nil {
		AbortWithError(c, err)
		return
	}

	s.selections.Invalidate(targetUserID)
	c.JSON(http.StatusOK, gin.H{"status": "revoked"})
}

// requireGlobalAdmin gates platform-level writes that have no store to
// anchor a policy check on.
func (s *Server) requireGlobalAdmin(c *gin.Context) error {
	userID, ok := s.userID(c)
	if !ok {
		return ErrUnauthorized
	}
	profile, err := s.profileSvc.Load(c.Request.Context(), userID)
	if err != nil {
		return err
	}
	if !profile.IsGlobalAdmin() {
		return ErrForbidden
	}
	return nil
}

func grantParams(c *gin.Context) (snowflake.ID, snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil || id == 0 {
		return 0, 0, newValidationError("id", "invalid_id", "invalid id")
	}
	userID, err := snowflake.ParseString(strings.TrimSpace(c.Param("userID")))
	if err != nil || userID == 0 {
		return 0, 0, newValidationError("user_id", "invalid_user", "invalid user id")
	}
	return id, userID, nil
}
