// Package domain contains to-do and issue entities. Both share one table;
// Kind separates the weekly to-do list from the issues list.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	KindTodo  = "todo"
	KindIssue = "issue"
)

// Todo is a to-do or an issue assigned within a department.
type Todo struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID        snowflake.ID `gorm:"column:store_id;not null;index" json:"store_id"`
	DepartmentID   snowflake.ID `gorm:"column:department_id;not null;index" json:"department_id"`
	AssigneeUserID snowflake.ID `gorm:"column:assignee_user_id;index" json:"assignee_user_id"`
	Kind           string       `gorm:"type:text;not null;default:todo;index" json:"kind"`
	Title          string       `gorm:"type:text;not null" json:"title"`
	Detail         string       `gorm:"type:text" json:"detail"`
	DueAt          *time.Time   `gorm:"column:due_at" json:"due_at,omitempty"`
	CompletedAt    *time.Time   `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Todo) TableName() string { return "todos" }

// Open reports whether the item still needs attention.
func (t Todo) Open() bool { return t.CompletedAt == nil }

func ValidKind(kind string) bool {
	return kind == KindTodo || kind == KindIssue
}
