package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	subscriptiondomain "github.com/tillworks/tillpos/internal/subscription/domain"
)

func (s *Server) GetSubscription(c *gin.Context) {
	tenantID, err := requireTenant(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.subscriptionSvc.Current(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type upgradeSubscriptionRequest struct {
	Plan string `json:"plan"`
}

func (s *Server) UpgradeSubscription(c *gin.Context) {
	tenantID, err := requireTenant(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req upgradeSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	plan := subscriptiondomain.Plan(strings.TrimSpace(req.Plan))
	resp, err := s.subscriptionSvc.RequestUpgrade(c.Request.Context(), tenantID, plan)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelSubscription(c *gin.Context) {
	tenantID, err := requireTenant(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.subscriptionSvc.Cancel(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPayments(c *gin.Context) {
	tenantID, err := requireTenant(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.paymentSvc.ListPayments(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
