// Package domain contains the tenant-scoping profile attached to each user.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Roles form a fixed set; a role change requires re-authentication.
const (
	RoleGlobalAdmin       = "global_admin"
	RoleStoreGM           = "store_gm"
	RoleDepartmentManager = "department_manager"
	RoleFixedOpsManager   = "fixed_ops_manager"
	RoleOther             = "other"
)

// Profile carries the attributes that scope a user to stores and departments.
// Loading it is a precondition for serving any tenant data.
type Profile struct {
	UserID       snowflake.ID  `gorm:"primaryKey" json:"user_id"`
	Role         string        `gorm:"type:text;not null" json:"role"`
	StoreID      *snowflake.ID `gorm:"column:store_id;index" json:"store_id,omitempty"`
	StoreGroupID *snowflake.ID `gorm:"column:store_group_id;index" json:"store_group_id,omitempty"`
	Title        string        `gorm:"type:text" json:"title"`
	Phone        string        `gorm:"type:text" json:"phone"`
	AvatarURL    string        `gorm:"column:avatar_url;type:text" json:"avatar_url"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Profile) TableName() string { return "profiles" }

func ValidRole(role string) bool {
	switch role {
	case RoleGlobalAdmin, RoleStoreGM, RoleDepartmentManager, RoleFixedOpsManager, RoleOther:
		return true
	}
	return false
}

// IsGlobalAdmin reports whether the profile carries the platform role.
func (p Profile) IsGlobalAdmin() bool {
	return p.Role == RoleGlobalAdmin
}

// GrantScopedDepartments reports whether department visibility comes from
// explicit grants instead of "all departments in the active store". Only the
// department-manager role is grant-scoped; store GMs, global admins, fixed-ops
// managers and other roles see the whole store.
func (p Profile) GrantScopedDepartments() bool {
	return p.Role == RoleDepartmentManager
}
