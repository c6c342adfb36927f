package directory

import (
	"github.com/pitlane-hq/pitlane/internal/directory/repository"
	"github.com/pitlane-hq/pitlane/internal/directory/service"
	"go.uber.org/fx"
)

var Module = fx.Module("directory.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
