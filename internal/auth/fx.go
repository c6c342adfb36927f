package auth

import (
	"github.com/pitlane-hq/pitlane/internal/auth/repository"
	"github.com/pitlane-hq/pitlane/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
