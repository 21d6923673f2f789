package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tillworks/tillpos/internal/providers/pdf"
)

func (s *Server) GetSaleReceipt(c *gin.Context) {
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

	sale, err := s.saleSvc.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ten, err := s.tenantSvc.Get(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	reader, err := s.pdfProvider.GenerateReceipt(c.Request.Context(), pdf.ReceiptData{
		StoreName: ten.Name,
		Footer:    s.posConfig.Get().ReceiptFooter,
		Sale:      *sale,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=receipt-"+strconv.FormatInt(int64(sale.ID), 10)+".pdf")
	c.Data(http.StatusOK, "application/pdf", doc)
}
