package domain

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("domain.service",
	fx.Provide(NewService),
	fx.Invoke(registerRoutes),
)

func registerRoutes(service *Service, router *gin.Engine) {
	service.RegisterRoutes(router)
}
