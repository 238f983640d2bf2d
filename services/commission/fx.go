package commission

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"funnelforge/pkg/config"
)

var Module = fx.Module("commission.service",
	fx.Provide(NewService),
	fx.Invoke(registerRoutes),
)

func registerRoutes(service *Service, router *gin.Engine, cfg *config.Config) {
	service.RegisterRoutes(router, cfg)
}
