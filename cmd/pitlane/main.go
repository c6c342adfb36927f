package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/auth"
	"github.com/pitlane-hq/pitlane/internal/auth/session"
	"github.com/pitlane-hq/pitlane/internal/authorization"
	"github.com/pitlane-hq/pitlane/internal/changefeed"
	"github.com/pitlane-hq/pitlane/internal/clock"
	"github.com/pitlane-hq/pitlane/internal/config"
	"github.com/pitlane-hq/pitlane/internal/dashboard"
	"github.com/pitlane-hq/pitlane/internal/department"
	"github.com/pitlane-hq/pitlane/internal/directory"
	"github.com/pitlane-hq/pitlane/internal/document"
	"github.com/pitlane-hq/pitlane/internal/meeting"
	"github.com/pitlane-hq/pitlane/internal/migration"
	"github.com/pitlane-hq/pitlane/internal/observability"
	"github.com/pitlane-hq/pitlane/internal/profile"
	"github.com/pitlane-hq/pitlane/internal/ratelimit"
	"github.com/pitlane-hq/pitlane/internal/rocks"
	"github.com/pitlane-hq/pitlane/internal/scorecard"
	"github.com/pitlane-hq/pitlane/internal/selection"
	"github.com/pitlane-hq/pitlane/internal/server"
	"github.com/pitlane-hq/pitlane/internal/store"
	"github.com/pitlane-hq/pitlane/internal/todos"
	"github.com/pitlane-hq/pitlane/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		changefeed.Module,
		authorization.Module,
		ratelimit.Module,
		auth.Module,
		session.Module,
		profile.Module,
		store.Module,
		department.Module,
		selection.Module,
		dashboard.Module,
		scorecard.Module,
		rocks.Module,
		todos.Module,
		meeting.Module,
		directory.Module,
		document.Module,

		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Invoke(server.Run),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
