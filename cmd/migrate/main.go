package main

import (
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"funnelforge/pkg/config"
	"funnelforge/pkg/db"
	"funnelforge/pkg/logger"
	"funnelforge/services/affiliate"
	"funnelforge/services/commission"
	"funnelforge/services/domain"
	"funnelforge/services/funnel"
	"funnelforge/services/task"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		fx.Invoke(migrate),
		fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
			return fxevent.NopLogger
		}),
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

func migrate(gdb *gorm.DB, shutdowner fx.Shutdowner) error {
	if err := gdb.AutoMigrate(
		&affiliate.Account{},
		&affiliate.AffiliateLink{},
		&funnel.Funnel{},
		&funnel.Page{},
		&domain.Domain{},
		&commission.Payment{},
		&commission.BalanceTransaction{},
		&task.Job{},
	); err != nil {
		return err
	}

	zap.L().Info("database schema migrated")
	return shutdowner.Shutdown()
}
