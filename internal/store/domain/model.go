// Package domain contains the store/group entities. A store is the primary
// tenant-isolation boundary; every scoped record carries its id.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Store represents one dealership location.
type Store struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name      string            `gorm:"type:text;not null" json:"name"`
	Slug      string            `gorm:"type:text;not null;uniqueIndex:ux_stores_slug" json:"slug"`
	GroupID   *snowflake.ID     `gorm:"column:group_id;index" json:"group_id,omitempty"`
	City      string            `gorm:"type:text" json:"city"`
	Region    string            `gorm:"type:text" json:"region"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Store) TableName() string { return "stores" }

// StoreGroup is a collection of stores under common ownership.
type StoreGroup struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Slug      string       `gorm:"type:text;not null;uniqueIndex:ux_store_groups_slug" json:"slug"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (StoreGroup) TableName() string { return "store_groups" }

// StoreAccessGrant gives a user explicit access to a store beyond their home
// store. Grants never duplicate the home store.
type StoreAccessGrant struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"column:user_id;not null;index;uniqueIndex:ux_store_grants,priority:1" json:"user_id"`
	StoreID   snowflake.ID `gorm:"column:store_id;not null;index;uniqueIndex:ux_store_grants,priority:2" json:"store_id"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (StoreAccessGrant) TableName() string { return "store_access_grants" }
