// Package scopectx carries the validated store/department scope of a request
// through context. Handlers set it after selection validation; repositories
// read it to enforce tenant filtering.
package scopectx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// StoreContextKey is the request context key for the active store ID.
type StoreContextKey struct{}

// DepartmentContextKey is the request context key for the active department ID.
type DepartmentContextKey struct{}

// WithStoreID stores the active store ID in the context.
func WithStoreID(ctx context.Context, storeID snowflake.ID) context.Context {
	return context.WithValue(ctx, StoreContextKey{}, storeID)
}

// WithDepartmentID stores the active department ID in the context.
func WithDepartmentID(ctx context.Context, departmentID snowflake.ID) context.Context {
	return context.WithValue(ctx, DepartmentContextKey{}, departmentID)
}

// StoreIDFromContext returns the active store ID from context, if set.
func StoreIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	return idFromContext(ctx, StoreContextKey{})
}

// DepartmentIDFromContext returns the active department ID from context, if set.
func DepartmentIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	return idFromContext(ctx, DepartmentContextKey{})
}

func idFromContext(ctx context.Context, key any) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	switch typed := ctx.Value(key).(type) {
	case int64:
		return snowflake.ID(typed), true
	case snowflake.ID:
		return typed, true
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}
