package domain

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addDomainRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	FunnelID  string `json:"funnel_id" binding:"required"`
	Hostname  string `json:"hostname" binding:"required"`
}

func (s *Service) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/v1")

	v1.GET("/accounts/:id/domains", s.handleListDomains)
	v1.POST("/domains", s.handleAddDomain)
	v1.PUT("/domains/:hostname/verify", s.handleVerifyDomain)
	v1.DELETE("/domains/:hostname", s.handleRemoveDomain)
}

func (s *Service) handleListDomains(c *gin.Context) {
	domains, err := s.ListDomains(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": domains})
}

func (s *Service) handleAddDomain(c *gin.Context) {
	var req addDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := s.AddDomain(c.Request.Context(), req.AccountID, req.FunnelID, req.Hostname)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, d)
}

func (s *Service) handleVerifyDomain(c *gin.Context) {
	d, err := s.MarkVerified(c.Request.Context(), c.GetHeader("X-Account-ID"), c.Param("hostname"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, d)
}

func (s *Service) handleRemoveDomain(c *gin.Context) {
	if err := s.RemoveDomain(c.Request.Context(), c.GetHeader("X-Account-ID"), c.Param("hostname")); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
