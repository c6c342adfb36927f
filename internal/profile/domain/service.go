package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Load returns the scoping profile for the user. A failure here is
	// terminal for the request: callers must not fall through to tenant
	// data without a profile.
	Load(ctx context.Context, userID snowflake.ID) (*Profile, error)
	Create(ctx context.Context, req CreateProfileRequest) (*Profile, error)
	Update(ctx context.Context, userID snowflake.ID, req UpdateProfileRequest) (*Profile, error)
}

type CreateProfileRequest struct {
	UserID       snowflake.ID
	Role         string
	StoreID      *snowflake.ID
	StoreGroupID *snowflake.ID
	Title        string
	Phone        string
}

type UpdateProfileRequest struct {
	Title     *string
	Phone     *string
	AvatarURL *string
}

var (
	ErrProfileNotFound    = errors.New("profile_not_found")
	ErrProfileUnavailable = errors.New("profile_unavailable")
	ErrInvalidRole        = errors.New("invalid_role")
)
