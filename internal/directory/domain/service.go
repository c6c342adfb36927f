// Package domain contains the team-directory read model: the people of a
// store, joined from users and profiles.
package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Member is one directory row.
type Member struct {
	UserID      snowflake.ID `json:"user_id"`
	DisplayName string       `json:"display_name"`
	Email       string       `json:"email"`
	Role        string       `json:"role"`
	Title       string       `json:"title"`
	Phone       string       `json:"phone"`
	AvatarURL   string       `json:"avatar_url"`
}

type ListMembersRequest struct {
	StoreID      snowflake.ID
	Role         string
	DepartmentID snowflake.ID
}

type Repository interface {
	ListMembers(ctx context.Context, req ListMembersRequest) ([]Member, error)
}

// Service is read-only: directory rows are a projection of users and
// profiles, never written through here.
type Service interface {
	ListMembers(ctx context.Context, req ListMembersRequest) ([]Member, error)
}

var ErrInvalidRole = errors.New("invalid_role")
