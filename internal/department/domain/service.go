package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	profiledomain "github.com/pitlane-hq/pitlane/internal/profile/domain"
)

type Service interface {
	// ResolveScope computes the department candidate set for the profile
	// within the active store. Grant-scoped users get exactly their granted
	// departments; an empty grant list resolves to an empty scope, never to
	// the whole store. Everyone else gets every department of the active
	// store. Both paths order by name. Roles that are not grant-scoped must
	// have an active store first; ErrStoreNotSelected keeps that "pending"
	// case distinct from a legitimately empty scope.
	ResolveScope(ctx context.Context, profile *profiledomain.Profile, activeStoreID snowflake.ID) ([]Department, error)

	Create(ctx context.Context, req CreateDepartmentRequest) (*Department, error)
	Get(ctx context.Context, id string) (*Department, error)
	ListByStore(ctx context.Context, storeID snowflake.ID) ([]Department, error)
	Update(ctx context.Context, id string, req UpdateDepartmentRequest) (*Department, error)

	GrantAccess(ctx context.Context, userID, departmentID snowflake.ID) error
	RevokeAccess(ctx context.Context, userID, departmentID snowflake.ID) error
}

type CreateDepartmentRequest struct {
	StoreID       snowflake.ID
	Name          string
	Type          string
	ManagerUserID *snowflake.ID
}

type UpdateDepartmentRequest struct {
	Name          *string
	Type          *string
	ManagerUserID *snowflake.ID
}

var (
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidType        = errors.New("invalid_department_type")
	ErrInvalidDepartment  = errors.New("invalid_department")
	ErrDepartmentNotFound = errors.New("department_not_found")
	ErrGrantExists        = errors.New("grant_already_exists")
	ErrGrantNotFound      = errors.New("grant_not_found")
	ErrStoreNotSelected   = errors.New("store_not_selected")
	ErrScopeUnavailable   = errors.New("department_scope_unavailable")
)
