package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/pitlane-hq/pitlane/internal/auth/domain"
	profiledomain "github.com/pitlane-hq/pitlane/internal/profile/domain"
	"go.uber.org/zap"
)

type SignupRequest struct {
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	DisplayName  string  `json:"display_name"`
	Role         string  `json:"role"`
	StoreID      *string `json:"store_id"`
	StoreGroupID *string `json:"store_group_id"`
	Title        string  `json:"title"`
	Phone        string  `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = profiledomain.RoleOther
	}
	if !profiledomain.ValidRole(role) {
		AbortWithError(c, profiledomain.ErrInvalidRole)
		return
	}

	storeID, err := parseOptionalID(req.StoreID)
	if err != nil {
		AbortWithError(c, newValidationError("store_id", "invalid_store", "invalid store id"))
		return
	}
	storeGroupID, err := parseOptionalID(req.StoreGroupID)
	if err != nil {
		AbortWithError(c, newValidationError("store_group_id", "invalid_store_group", "invalid store group id"))
		return
	}

	user, err := s.authSvc.CreateUser(c.Request.Context(), authdomain.CreateUserRequest{
		Email:       strings.TrimSpace(req.Email),
		Password:    req.Password,
		DisplayName: strings.TrimSpace(req.DisplayName),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	profile, err := s.profileSvc.Create(c.Request.Context(), profiledomain.CreateProfileRequest{
		UserID:       user.ID,
		Role:         role,
		StoreID:      storeID,
		StoreGroupID: storeGroupID,
		Title:        strings.TrimSpace(req.Title),
		Phone:        strings.TrimSpace(req.Phone),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":    user,
		"profile": profile,
	})
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	email := strings.TrimSpace(req.Email)
	if s.loginLimiter.Enabled() {
		allowed, err := s.loginLimiter.Allow(c.Request.Context(), email, c.ClientIP())
		if err != nil {
			s.log.Warn("login rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			AbortWithError(c, ErrTooManyRequests)
			return
		}
	}

	result, err := s.authSvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:     email,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.RawToken, result.ExpiresAt)

	c.JSON(http.StatusOK, gin.H{
		"user":       result.User,
		"expires_at": result.ExpiresAt,
	})
}

func (s *Server) Logout(c *gin.Context) {
	token, ok := s.sessions.ReadToken(c)
	if ok {
		if sess, err := s.authSvc.Authenticate(c.Request.Context(), token); err == nil {
			s.selections.Drop(c.Request.Context(), sess.UserID)
		}
		if err := s.authSvc.Logout(c.Request.Context(), token); err != nil {
			s.log.Warn("logout failed", zap.Error(err))
		}
	}
	s.sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseRequiredID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return id, nil
}

func parseOptionalID(raw *string) (*snowflake.ID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := snowflake.ParseString(strings.TrimSpace(*raw))
	if err != nil {
		return nil, err
	}
	return &id, nil
}
