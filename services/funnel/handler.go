package funnel

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type createFunnelRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
}

type publishRequest struct {
	Published bool `json:"published"`
}

type upsertPageRequest struct {
	Path     string         `json:"path" binding:"required"`
	Title    string         `json:"title"`
	Position int            `json:"position"`
	Content  datatypes.JSON `json:"content"`
}

func (s *Service) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/v1")

	v1.POST("/funnels", s.handleCreateFunnel)
	v1.GET("/funnels/:id", s.handleGetFunnel)
	v1.GET("/accounts/:id/funnels", s.handleListFunnels)
	v1.PUT("/funnels/:id/publish", s.handlePublishFunnel)
	v1.DELETE("/funnels/:id", s.handleDeleteFunnel)
	v1.PUT("/funnels/:id/pages", s.handleUpsertPage)
}

// accountID is resolved by the (out of scope) auth layer; the header stands
// in for the authenticated principal.
func accountID(c *gin.Context) string {
	return c.GetHeader("X-Account-ID")
}

func (s *Service) handleCreateFunnel(c *gin.Context) {
	var req createFunnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := s.CreateFunnel(c.Request.Context(), req.AccountID, req.Name)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, f)
}

func (s *Service) handleGetFunnel(c *gin.Context) {
	f, err := s.GetFunnel(c.Request.Context(), accountID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, f)
}

func (s *Service) handleListFunnels(c *gin.Context) {
	funnels, err := s.ListFunnels(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": funnels})
}

func (s *Service) handlePublishFunnel(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.PublishFunnel(c.Request.Context(), accountID(c), c.Param("id"), req.Published); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Service) handleDeleteFunnel(c *gin.Context) {
	if err := s.DeleteFunnel(c.Request.Context(), accountID(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Service) handleUpsertPage(c *gin.Context) {
	var req upsertPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := s.UpsertPage(c.Request.Context(), accountID(c), c.Param("id"), req.Path, req.Title, req.Position, req.Content)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, page)
}
