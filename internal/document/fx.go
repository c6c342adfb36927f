package document

import (
	"github.com/pitlane-hq/pitlane/internal/document/repository"
	"github.com/pitlane-hq/pitlane/internal/document/service"
	"go.uber.org/fx"
)

var Module = fx.Module("document.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
