package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tillworks/tillpos/internal/payment/gateway/paystack"
)

// HandleGatewayWebhook ingests one gateway delivery. Every outcome the
// processor reports without error, duplicates included, is acknowledged with
// 200 so the gateway stops retrying.
func (s *Server) HandleGatewayWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	signature := c.GetHeader(paystack.SignatureHeader)
	outcome, err := s.paymentSvc.ProcessEvent(c.Request.Context(), signature, body)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "outcome": outcome})
}
