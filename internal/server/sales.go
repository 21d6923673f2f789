package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	saledomain "github.com/tillworks/tillpos/internal/sale/domain"
)

type createSaleItemRequest struct {
	ProductID snowflake.ID `json:"product_id"`
	Quantity  int          `json:"quantity"`
	UnitPrice *float64     `json:"unit_price"`
}

type createSaleRequest struct {
	Items          []createSaleItemRequest `json:"items"`
	DiscountAmount float64                 `json:"discount_amount"`
	PaymentMethod  string                  `json:"payment_method"`
	TaxRate        *float64                `json:"tax_rate"`
	CustomerID     *snowflake.ID           `json:"customer_id"`
	Notes          string                  `json:"notes"`
}

func (s *Server) CreateSale(c *gin.Context) {
	tenantID, err := requireTenant(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	identity, _ := identityFrom(c)

	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items := make([]saledomain.CreateSaleItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, saledomain.CreateSaleItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	resp, err := s.saleSvc.CreateSale(c.Request.Context(), tenantID, identity.UserID, saledomain.CreateSaleRequest{
		Items:          items,
		DiscountAmount: req.DiscountAmount,
		PaymentMethod:  strings.TrimSpace(req.PaymentMethod),
		TaxRate:        req.TaxRate,
		CustomerID:     req.CustomerID,
		Notes:          strings.TrimSpace(req.Notes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSales(c *gin.Context) {
	tenantID, err := requireTenant(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var query struct {
		Status string `form:"status"`
		Since  string `form:"since"`
		Until  string `form:"until"`
		Limit  int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	filter := saledomain.ListFilter{
		Status: saledomain.PaymentStatus(strings.TrimSpace(query.Status)),
		Limit:  query.Limit,
	}
	if query.Since != "" {
		since, err := time.Parse(time.RFC3339, query.Since)
		if err != nil {
			AbortWithError(c, newValidationError("since", "invalid_since", "invalid since"))
			return
		}
		filter.Since = since
	}
	if query.Until != "" {
		until, err := time.Parse(time.RFC3339, query.Until)
		if err != nil {
			AbortWithError(c, newValidationError("until", "invalid_until", "invalid until"))
			return
		}
		filter.Until = until
	}

	resp, err := s.saleSvc.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSale(c *gin.Context) {
	tenantID, err := requireTenant(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.saleSvc.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type refundSaleRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) RefundSale(c *gin.Context) {
	tenantID, err := requireTenant(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	identity, _ := identityFrom(c)

	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// The reason body is optional.
	var req refundSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.saleSvc.RefundSale(c.Request.Context(), tenantID, id, identity.UserID, strings.TrimSpace(req.Reason))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
