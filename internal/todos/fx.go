package todos

import (
	"github.com/pitlane-hq/pitlane/internal/todos/repository"
	"github.com/pitlane-hq/pitlane/internal/todos/service"
	"go.uber.org/fx"
)

var Module = fx.Module("todos.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
