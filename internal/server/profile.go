package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/pitlane-hq/pitlane/internal/auth/domain"
	profiledomain "github.com/pitlane-hq/pitlane/internal/profile/domain"
)

type UpdateProfileRequest struct {
	Title     *string `json:"title"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatar_url"`
}

func (s *Server) Me(c *gin.Context) {
	userID, ok := s.userID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var user authdomain.User
	if err := s.db.WithContext(c.Request.Context()).First(&user, "id = ?", userID).Error; err != nil {
		AbortWithError(c, err)
		return
	}
	user.PasswordHash = nil

	profile, err := s.profileSvc.Load(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    user,
		"profile": profile,
	})
}

func (s *Server) UpdateMyProfile(c *gin.Context) {
	userID, ok := s.userID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	profile, err := s.profileSvc.Update(c.Request.Context(), userID, profiledomain.UpdateProfileRequest{
		Title:     req.Title,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
