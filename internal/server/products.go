package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	productdomain "github.com/tillworks/tillpos/internal/product/domain"
)

type createProductRequest struct {
	SKU           string  `json:"sku"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	Cost          float64 `json:"cost"`
	StockQuantity int     `json:"stock_quantity"`
	MinStockLevel int     `json:"min_stock_level"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	tenantID, err := requireTenant(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), tenantID, productdomain.CreateProductRequest{
		SKU:           strings.TrimSpace(req.SKU),
		Name:          strings.TrimSpace(req.Name),
		Description:   strings.TrimSpace(req.Description),
		Price:         req.Price,
		Cost:          req.Cost,
		StockQuantity: req.StockQuantity,
		MinStockLevel: req.MinStockLevel,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	tenantID, err := requireTenant(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var query struct {
		Status   string `form:"status"`
		LowStock bool   `form:"low_stock"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.List(c.Request.Context(), tenantID, productdomain.ListFilter{
		Status:   productdomain.ProductStatus(strings.TrimSpace(query.Status)),
		LowStock: query.LowStock,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProduct(c *gin.Context) {
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

	resp, err := s.productSvc.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateProductRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	Cost          *float64 `json:"cost"`
	StockQuantity *int     `json:"stock_quantity"`
	MinStockLevel *int     `json:"min_stock_level"`
}

func (s *Server) UpdateProduct(c *gin.Context) {
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

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Update(c.Request.Context(), tenantID, id, productdomain.UpdateProductRequest{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Cost:          req.Cost,
		StockQuantity: req.StockQuantity,
		MinStockLevel: req.MinStockLevel,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ArchiveProduct(c *gin.Context) {
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

	if err := s.productSvc.Archive(c.Request.Context(), tenantID, id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status": "archived"}})
}
