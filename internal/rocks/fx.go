package rocks

import (
	"github.com/pitlane-hq/pitlane/internal/rocks/repository"
	"github.com/pitlane-hq/pitlane/internal/rocks/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rocks.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
