package service

import (
	"context"
	"testing"
	"time"

	"github.com/pitlane-hq/pitlane/internal/changefeed"
	"github.com/pitlane-hq/pitlane/internal/selection/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReloadForRefreshesMatchingSession(t *testing.T) {
	f := gmFixture()
	ctx := context.Background()

	coordinator, err := f.manager.ForUser(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 2, coordinator.Snapshot().Data.OpenTasks)

	f.loader.setData(&domain.DependentData{KPIDefinitions: 3, OpenGoals: 1, OpenTasks: 1})
	f.manager.ReloadFor(ctx, storeOne.ID, deptOneService.ID)

	assert.Equal(t, 1, coordinator.Snapshot().Data.OpenTasks)
}

func TestReloadForSkipsOtherScopes(t *testing.T) {
	f := gmFixture()
	ctx := context.Background()

	coordinator, err := f.manager.ForUser(ctx, userID)
	require.NoError(t, err)
	loads := len(f.loader.loaded())

	f.manager.ReloadFor(ctx, storeTwo.ID, deptTwoService.ID)
	f.manager.ReloadFor(ctx, storeOne.ID, deptOneSales.ID)

	assert.Len(t, f.loader.loaded(), loads)
	assert.Equal(t, 2, coordinator.Snapshot().Data.OpenTasks)
}

func TestReloadForStoreWideMatchesAnyDepartment(t *testing.T) {
	f := gmFixture()
	ctx := context.Background()

	coordinator, err := f.manager.ForUser(ctx, userID)
	require.NoError(t, err)

	f.loader.setData(&domain.DependentData{KPIDefinitions: 4, OpenGoals: 1, OpenTasks: 2})
	f.manager.ReloadFor(ctx, storeOne.ID, 0)

	assert.Equal(t, 4, coordinator.Snapshot().Data.KPIDefinitions)
}

func TestRelayReloadsOnPublishedChange(t *testing.T) {
	f := gmFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	coordinator, err := f.manager.ForUser(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 2, coordinator.Snapshot().Data.OpenTasks)

	hub := changefeed.NewHub()
	relay := NewRelay(zap.NewNop(), hub, f.manager)
	go relay.Run(ctx)

	f.loader.setData(&domain.DependentData{KPIDefinitions: 3, OpenGoals: 1, OpenTasks: 1})

	// Subscriptions register asynchronously; keep publishing until the
	// relayed reload lands.
	require.Eventually(t, func() bool {
		hub.Publish(changefeed.RecordTodo, changefeed.Event{
			RecordID:     "1",
			StoreID:      storeOne.ID.String(),
			DepartmentID: deptOneService.ID.String(),
			Action:       "completed",
			OccurredAt:   time.Now().UTC(),
		})
		return coordinator.Snapshot().Data.OpenTasks == 1
	}, 2*time.Second, 20*time.Millisecond)
}
