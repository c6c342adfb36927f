package service

import (
	"context"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/changefeed"
	"go.uber.org/zap"
)

// relayedRecordTypes are the record types the dashboard counts are computed
// from. A change to any of them invalidates the loaded dependent data.
var relayedRecordTypes = []string{
	changefeed.RecordKPIDefinition,
	changefeed.RecordKPIEntry,
	changefeed.RecordRock,
	changefeed.RecordTodo,
}

// Relay re-runs the dependent loaders when the changefeed reports a record
// change inside a session's active scope. It only refreshes data; selection
// state is never touched from here.
type Relay struct {
	log     *zap.Logger
	hub     *changefeed.Hub
	manager *Manager
}

func NewRelay(log *zap.Logger, hub *changefeed.Hub, manager *Manager) *Relay {
	return &Relay{
		log:     log.Named("selection.relay"),
		hub:     hub,
		manager: manager,
	}
}

// Run consumes change events until the context is cancelled. The backlog is
// skipped: sessions created after startup load fresh data anyway.
func (r *Relay) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, recordType := range relayedRecordTypes {
		sub, _, err := r.hub.Subscribe(recordType)
		if err != nil {
			r.log.Warn("subscribe record type", zap.String("record_type", recordType), zap.Error(err))
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sub.Close()
			r.consume(ctx, sub)
		}()
	}
	wg.Wait()
}

func (r *Relay) consume(ctx context.Context, sub *changefeed.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			r.apply(ctx, event)
		}
	}
}

func (r *Relay) apply(ctx context.Context, event changefeed.Event) {
	storeID, err := snowflake.ParseString(event.StoreID)
	if err != nil || storeID == 0 {
		return
	}
	var departmentID snowflake.ID
	if event.DepartmentID != "" {
		departmentID, err = snowflake.ParseString(event.DepartmentID)
		if err != nil {
			return
		}
	}
	r.manager.ReloadFor(ctx, storeID, departmentID)
}
