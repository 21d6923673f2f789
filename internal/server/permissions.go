package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tillworks/tillpos/internal/authz"
)

func (s *Server) ListPermissions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": authz.Table()})
}
