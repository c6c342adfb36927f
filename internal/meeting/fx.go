package meeting

import (
	"github.com/pitlane-hq/pitlane/internal/meeting/repository"
	"github.com/pitlane-hq/pitlane/internal/meeting/service"
	"go.uber.org/fx"
)

var Module = fx.Module("meeting.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
