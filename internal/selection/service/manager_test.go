package service

import (
	"context"
	"testing"

	"github.com/pitlane-hq/pitlane/internal/selection/domain"
	storedomain "github.com/pitlane-hq/pitlane/internal/store/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForUserReturnsSameCoordinator(t *testing.T) {
	f := gmFixture()
	ctx := context.Background()

	first, err := f.manager.ForUser(ctx, userID)
	require.NoError(t, err)

	second, err := f.manager.ForUser(ctx, userID)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, domain.PhaseReady, second.Snapshot().State.Phase)
}

func TestDropForgetsSession(t *testing.T) {
	f := gmFixture()
	ctx := context.Background()

	first, err := f.manager.ForUser(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, domain.PhaseReady, first.Snapshot().State.Phase)

	f.manager.Drop(ctx, userID)
	assert.Equal(t, domain.PhaseUnauthenticated, first.Snapshot().State.Phase)

	second, err := f.manager.ForUser(ctx, userID)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, domain.PhaseReady, second.Snapshot().State.Phase)
}

func TestInvalidateForcesFreshResolution(t *testing.T) {
	f := gmFixture()
	ctx := context.Background()

	first, err := f.manager.ForUser(ctx, userID)
	require.NoError(t, err)
	require.NoError(t, first.SelectStore(ctx, storeTwo.ID))
	require.Equal(t, storeTwo.ID, first.Snapshot().State.ActiveStoreID)

	// An admin revokes access to the second store, then invalidates.
	f.manager.stores = &stubStores{scope: &storedomain.StoreScope{Stores: []storedomain.Store{storeOne}, CanSwitch: false}}
	f.manager.Invalidate(userID)

	second, err := f.manager.ForUser(ctx, userID)
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	snapshot := second.Snapshot()
	assert.Equal(t, storeOne.ID, snapshot.State.ActiveStoreID)
	assert.False(t, snapshot.State.CanSwitchStores)
}

func TestDropUnknownUserIsHarmless(t *testing.T) {
	f := gmFixture()
	f.manager.Drop(context.Background(), userID)
}
