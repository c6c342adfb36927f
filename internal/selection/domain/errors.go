package domain

import "errors"

var (
	ErrNotReady             = errors.New("selection_not_ready")
	ErrProfileUnavailable   = errors.New("profile_unavailable")
	ErrStoreNotInScope      = errors.New("store_not_in_scope")
	ErrDepartmentNotInScope = errors.New("department_not_in_scope")
	ErrSwitchNotAllowed     = errors.New("store_switch_not_allowed")
)
