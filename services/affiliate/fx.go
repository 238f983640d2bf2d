package affiliate

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("affiliate.service",
	fx.Provide(NewService),
	fx.Invoke(registerRoutes),
)

func registerRoutes(service *Service, router *gin.Engine) {
	service.RegisterRoutes(router)
}
