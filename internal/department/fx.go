package department

import (
	"github.com/pitlane-hq/pitlane/internal/department/repository"
	"github.com/pitlane-hq/pitlane/internal/department/service"
	"go.uber.org/fx"
)

var Module = fx.Module("department.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
