package commission

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"funnelforge/pkg/config"
	"funnelforge/pkg/middleware"
)

// RegisterRoutes mounts the manual trigger. The run itself is scheduled; the
// endpoint exists for operators and for replaying a failed window.
func (s *Service) RegisterRoutes(router *gin.Engine, cfg *config.Config) {
	internal := router.Group("/v1", middleware.InternalToken(cfg.InternalToken))

	internal.POST("/commissions/release", s.handleRelease)
}

func (s *Service) handleRelease(c *gin.Context) {
	summary, err := s.Run(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	// Partial failure is still a 200: the summary carries the failures and
	// the next scheduled run retries them.
	c.JSON(http.StatusOK, summary)
}
