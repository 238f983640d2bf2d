package main

import (
	"log"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	asynqfx "funnelforge/pkg/asynq"
	"funnelforge/pkg/config"
	"funnelforge/pkg/db"
	"funnelforge/pkg/health"
	"funnelforge/pkg/logger"
	"funnelforge/pkg/redis"
	"funnelforge/pkg/server"
	"funnelforge/services/affiliate"
	"funnelforge/services/checkout"
	"funnelforge/services/commission"
	"funnelforge/services/domain"
	"funnelforge/services/funnel"
	"funnelforge/services/notification"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		redis.Module,
		asynqfx.Client,
		health.Module,
		server.Module,
		fx.Provide(provideSnowflakeNode),
		notification.Module,
		affiliate.Module,
		funnel.Module,
		domain.Module,
		checkout.Module,
		commission.Module,
		fx.Invoke(registerHealthRoutes),
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func provideSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func registerHealthRoutes(router *gin.Engine, svc health.HealthService) {
	router.GET("/healthz", svc.Liveness)
	router.GET("/readyz", svc.Readiness)
}
