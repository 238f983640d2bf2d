package affiliate

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createAccountRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type createLinkRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	FunnelID  string `json:"funnel_id" binding:"required"`
}

func (s *Service) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/v1")

	v1.POST("/accounts", s.handleCreateAccount)
	v1.GET("/accounts/:id", s.handleGetAccount)
	v1.POST("/affiliate-links", s.handleCreateLink)
	v1.GET("/accounts/:id/affiliate-links", s.handleListLinks)
	v1.POST("/affiliate-links/:code/click", s.handleTrackClick)
}

func (s *Service) handleCreateAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := s.CreateAccount(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

func (s *Service) handleGetAccount(c *gin.Context) {
	account, err := s.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, account)
}

func (s *Service) handleCreateLink(c *gin.Context) {
	var req createLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, err := s.CreateLink(c.Request.Context(), req.AccountID, req.FunnelID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, link)
}

func (s *Service) handleListLinks(c *gin.Context) {
	links, err := s.ListLinks(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": links})
}

func (s *Service) handleTrackClick(c *gin.Context) {
	if err := s.TrackClick(c.Request.Context(), c.Param("code")); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
