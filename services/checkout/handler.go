package checkout

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type captureOrderRequest struct {
	AffiliateCode string          `json:"affiliate_code" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	CustomerEmail string          `json:"customer_email" binding:"omitempty,email"`
}

func (s *Service) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/v1")

	v1.POST("/orders", s.handleCapture)
	v1.GET("/orders/:transaction_id", s.handleGetOrder)
	v1.POST("/orders/:transaction_id/refund", s.handleRefund)
}

func (s *Service) handleCapture(c *gin.Context) {
	var req captureOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := s.CaptureOrder(c.Request.Context(), req.AffiliateCode, req.Amount, req.CustomerEmail)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

func (s *Service) handleGetOrder(c *gin.Context) {
	payment, err := s.GetOrder(c.Request.Context(), c.Param("transaction_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

func (s *Service) handleRefund(c *gin.Context) {
	payment, err := s.RefundOrder(c.Request.Context(), c.Param("transaction_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, payment)
}
