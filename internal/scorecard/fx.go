package scorecard

import (
	"github.com/pitlane-hq/pitlane/internal/scorecard/repository"
	"github.com/pitlane-hq/pitlane/internal/scorecard/service"
	"go.uber.org/fx"
)

var Module = fx.Module("scorecard.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
