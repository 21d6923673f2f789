package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/tillworks/tillpos/internal/auth/domain"
	"github.com/tillworks/tillpos/internal/authz"
)

func (s *Server) ListUsers(c *gin.Context) {
	tenantID, err := requireTenant(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.authSvc.ListUsers(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type createUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

func (s *Server) CreateUser(c *gin.Context) {
	tenantID, err := requireTenant(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	identity, _ := identityFrom(c)

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	role := authz.Role(strings.TrimSpace(req.Role))
	if !role.Valid() {
		AbortWithError(c, newValidationError("role", "invalid_role", "invalid role"))
		return
	}

	resp, err := s.authSvc.CreateUser(c.Request.Context(), tenantID, identity, authdomain.CreateUserRequest{
		Email:       strings.TrimSpace(req.Email),
		Password:    req.Password,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Role:        role,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

func (s *Server) ChangeUserRole(c *gin.Context) {
	tenantID, err := requireTenant(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	identity, _ := identityFrom(c)

	userID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	role := authz.Role(strings.TrimSpace(req.Role))
	if !role.Valid() {
		AbortWithError(c, newValidationError("role", "invalid_role", "invalid role"))
		return
	}

	resp, err := s.authSvc.ChangeRole(c.Request.Context(), tenantID, identity, userID, role)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeactivateUser(c *gin.Context) {
	tenantID, err := requireTenant(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	identity, _ := identityFrom(c)

	userID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authSvc.Deactivate(c.Request.Context(), tenantID, identity, userID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status": "deactivated"}})
}
