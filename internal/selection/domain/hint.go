package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// SelectionHint remembers a user's last store and department across
// sessions. Values are stored as raw text and treated as untrusted input:
// they may reference rows that no longer exist or that the user has since
// lost access to, so every read goes through validation before use.
type SelectionHint struct {
	UserID       snowflake.ID `gorm:"primaryKey" json:"user_id"`
	StoreID      string       `gorm:"column:store_id;type:text" json:"store_id"`
	DepartmentID string       `gorm:"column:department_id;type:text" json:"department_id"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (SelectionHint) TableName() string { return "selection_hints" }

// HintStore persists selection hints. Implementations must tolerate absent
// rows: Get on an unknown user returns a zero hint, not an error.
type HintStore interface {
	Get(ctx context.Context, userID snowflake.ID) (SelectionHint, error)
	SetStore(ctx context.Context, userID snowflake.ID, value string) error
	SetDepartment(ctx context.Context, userID snowflake.ID, value string) error
	ClearStore(ctx context.Context, userID snowflake.ID) error
	ClearDepartment(ctx context.Context, userID snowflake.ID) error
}

var ErrHintUnavailable = errors.New("selection_hint_unavailable")
