package main

import (
	"log"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	asynqfx "funnelforge/pkg/asynq"
	"funnelforge/pkg/config"
	"funnelforge/pkg/db"
	"funnelforge/pkg/logger"
	"funnelforge/pkg/redis"
	"funnelforge/pkg/taskname"
	"funnelforge/services/commission"
	"funnelforge/services/notification"
	"funnelforge/services/task"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		redis.Module,
		asynqfx.Client,
		asynqfx.Server,
		fx.Provide(
			provideSnowflakeNode,
			fx.Annotate(notification.NewQueueNotifier, fx.As(new(notification.Notifier))),
			commission.NewService,
		),
		task.Module,
		fx.Invoke(
			registerHandlers,
			task.StartScheduler,
		),
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
	return snowflake.NewNode(2)
}

func registerHandlers(mux *asynq.ServeMux, taskSvc *task.Service) {
	mux.HandleFunc(taskname.CommissionReleaseRun, taskSvc.HandleReleaseTask)
	mux.HandleFunc(taskname.NotificationCommissionReleased, notification.HandleCommissionReleasedTask)
}
