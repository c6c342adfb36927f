package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	directorydomain "github.com/pitlane-hq/pitlane/internal/directory/domain"
)

func (s *Server) ListDirectory(c *gin.Context) {
	snapshot, err := s.activeScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	req := directorydomain.ListMembersRequest{
		StoreID: snapshot.State.ActiveStoreID,
		Role:    strings.TrimSpace(c.Query("role")),
	}
	if raw := strings.TrimSpace(c.Query("department_id")); raw != "" {
		id, err := parseRequiredID(raw)
		if err != nil {
			AbortWithError(c, newValidationError("department_id", "invalid_id", "invalid department id"))
			return
		}
		req.DepartmentID = id
	}

	members, err := s.directorySvc.ListMembers(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}
