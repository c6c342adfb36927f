package profile

import (
	"github.com/pitlane-hq/pitlane/internal/profile/repository"
	"github.com/pitlane-hq/pitlane/internal/profile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("profile.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
