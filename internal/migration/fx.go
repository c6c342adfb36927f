package migration

import (
	"github.com/pitlane-hq/pitlane/internal/config"
	"github.com/pitlane-hq/pitlane/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		if cfg.SeedAdminUser != "" {
			if err := seed.EnsureAdminUser(conn, cfg.SeedAdminUser); err != nil {
				return err
			}
		}
		if cfg.SeedDemoData {
			return seed.SeedDemoData(conn)
		}
		return nil
	}),
)
