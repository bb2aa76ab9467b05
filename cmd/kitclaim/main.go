// @title           Starter Spark Kit Licensing API
// @version         1.0
// @description     Kit license claim and reconciliation engine

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/starter-spark/kitclaim/internal/achievement"
	"github.com/starter-spark/kitclaim/internal/clock"
	"github.com/starter-spark/kitclaim/internal/config"
	"github.com/starter-spark/kitclaim/internal/kit"
	"github.com/starter-spark/kitclaim/internal/license"
	"github.com/starter-spark/kitclaim/internal/migration"
	"github.com/starter-spark/kitclaim/internal/observability/logger"
	"github.com/starter-spark/kitclaim/internal/product"
	"github.com/starter-spark/kitclaim/internal/seed"
	"github.com/starter-spark/kitclaim/internal/server"
	"github.com/starter-spark/kitclaim/pkg/db"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			if cfg.SeedDemoData && !cfg.IsProduction() {
				return seed.EnsureDemoCatalog(conn)
			}
			return nil
		}),

		product.Module,
		license.Module,
		kit.Module,
		achievement.Module,

		server.Module,
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
