package selection

import (
	"context"

	"github.com/pitlane-hq/pitlane/internal/config"
	"github.com/pitlane-hq/pitlane/internal/selection/domain"
	"github.com/pitlane-hq/pitlane/internal/selection/repository"
	"github.com/pitlane-hq/pitlane/internal/selection/service"
	"go.uber.org/fx"
)

var Module = fx.Module("selection.service",
	fx.Provide(provideDefaultPolicy),
	fx.Provide(repository.NewHintStore),
	fx.Provide(service.NewManager),
	fx.Provide(service.NewRelay),
	fx.Invoke(runRelay),
)

func runRelay(lc fx.Lifecycle, relay *service.Relay) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go relay.Run(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}

func provideDefaultPolicy(holder *config.SelectionPolicyHolder) domain.DefaultPolicy {
	return domain.PriorityNamePolicy(func() []string {
		return holder.Get().DepartmentPriority
	})
}
