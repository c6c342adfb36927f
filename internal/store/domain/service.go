package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	profiledomain "github.com/pitlane-hq/pitlane/internal/profile/domain"
)

// StoreScope is the resolved set of stores a user may view. An empty Stores
// slice means the user legitimately has access to nothing; resolution
// failures are reported as errors, never as an empty scope.
type StoreScope struct {
	Stores    []Store `json:"stores"`
	CanSwitch bool    `json:"can_switch"`
}

// Contains reports whether the store id is part of the scope.
func (s StoreScope) Contains(id snowflake.ID) bool {
	for _, store := range s.Stores {
		if store.ID == id {
			return true
		}
	}
	return false
}

type Service interface {
	// ResolveScope computes the effective store candidate set for the
	// profile, in priority order: global admin sees everything; a group
	// reference without a home store grants the whole group; explicit
	// grants are unioned with the home store; a home store alone is a
	// single-entry scope.
	ResolveScope(ctx context.Context, profile *profiledomain.Profile) (*StoreScope, error)

	CreateStore(ctx context.Context, req CreateStoreRequest) (*Store, error)
	GetStore(ctx context.Context, id string) (*Store, error)
	ListStores(ctx context.Context) ([]Store, error)

	CreateGroup(ctx context.Context, req CreateGroupRequest) (*StoreGroup, error)
	ListGroups(ctx context.Context) ([]StoreGroup, error)

	GrantAccess(ctx context.Context, userID, storeID snowflake.ID) error
	RevokeAccess(ctx context.Context, userID, storeID snowflake.ID) error
}

type CreateStoreRequest struct {
	Name    string
	GroupID *snowflake.ID
	City    string
	Region  string
}

type CreateGroupRequest struct {
	Name string
}

var (
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidStore     = errors.New("invalid_store")
	ErrStoreNotFound    = errors.New("store_not_found")
	ErrGroupNotFound    = errors.New("store_group_not_found")
	ErrGroupExists      = errors.New("store_group_already_exists")
	ErrGrantExists      = errors.New("grant_already_exists")
	ErrGrantNotFound    = errors.New("grant_not_found")
	ErrScopeUnavailable = errors.New("store_scope_unavailable")
)
