// Package rls applies the per-request row-level-security context used by the
// postgres policies. Every tenant-scoped table carries a store_id column and
// a policy comparing it against app.current_store_id.
package rls

import (
	"fmt"

	"gorm.io/gorm"
)

// WithStore must run inside the transaction whose statements the policy
// should cover; SET LOCAL resets at commit. Non-postgres backends have no
// policies and take the no-op path.
func WithStore(tx *gorm.DB, storeID int64) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec(
		"SET LOCAL app.current_store_id = ?",
		fmt.Sprintf("%d", storeID),
	).Error
}
