package store

import (
	"github.com/pitlane-hq/pitlane/internal/cache"
	"github.com/pitlane-hq/pitlane/internal/store/repository"
	"github.com/pitlane-hq/pitlane/internal/store/service"
	"go.uber.org/fx"
)

var Module = fx.Module("store.service",
	fx.Provide(cache.NewScopeResolverCache),
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
