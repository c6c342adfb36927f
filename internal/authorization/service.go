package authorization

import (
	"context"
	"errors"
)

type Service interface {
	// Authorize checks whether the actor may perform action on object
	// within the store named by storeID. Actors are "user:<id>" or
	// "system".
	Authorize(ctx context.Context, actor string, storeID string, object string, action string) error
}

var (
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidStore  = errors.New("invalid_store")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrForbidden     = errors.New("forbidden")
)
