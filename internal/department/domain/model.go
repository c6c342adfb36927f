// Package domain contains the department entities. Departments belong to
// exactly one store and are the second half of the tenant scope.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Department types form a fixed set describing the line of business.
const (
	TypeService = "service"
	TypeSales   = "sales"
	TypeParts   = "parts"
	TypeBody    = "body"
	TypeOffice  = "office"
	TypeOther   = "other"
)

// Department is one operating unit inside a store.
type Department struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	StoreID       snowflake.ID  `gorm:"column:store_id;not null;index" json:"store_id"`
	Name          string        `gorm:"type:text;not null" json:"name"`
	Slug          string        `gorm:"type:text;not null;uniqueIndex:ux_departments_slug" json:"slug"`
	Type          string        `gorm:"type:text;not null;default:other" json:"type"`
	ManagerUserID *snowflake.ID `gorm:"column:manager_user_id;index" json:"manager_user_id,omitempty"`
	CreatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Department) TableName() string { return "departments" }

// DepartmentAccessGrant scopes a department-manager user to a specific
// department. Grants may reference departments in any store; resolution
// happens against the grant list, selection re-validates against the
// active store.
type DepartmentAccessGrant struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID       snowflake.ID `gorm:"column:user_id;not null;index;uniqueIndex:ux_department_grants,priority:1" json:"user_id"`
	DepartmentID snowflake.ID `gorm:"column:department_id;not null;index;uniqueIndex:ux_department_grants,priority:2" json:"department_id"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (DepartmentAccessGrant) TableName() string { return "department_access_grants" }

func ValidType(t string) bool {
	switch t {
	case TypeService, TypeSales, TypeParts, TypeBody, TypeOffice, TypeOther:
		return true
	}
	return false
}
