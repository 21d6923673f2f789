package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/tillworks/tillpos/internal/auth/domain"
)

// Failed and successful logins alike draw from the same per-caller bucket,
// so a credential-stuffing run cannot guess faster than the refill rate.
const (
	loginRate  = 0.5
	loginBurst = 5
)

type signupRequest struct {
	BusinessName string `json:"business_name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	DisplayName  string `json:"display_name"`
}

func (s *Server) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.authSvc.Signup(c.Request.Context(), authdomain.SignupRequest{
		BusinessName: strings.TrimSpace(req.BusinessName),
		Email:        strings.TrimSpace(req.Email),
		Password:     req.Password,
		DisplayName:  strings.TrimSpace(req.DisplayName),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type loginRequest struct {
	Tenant   string `json:"tenant"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	key := "login:" + c.ClientIP() + ":" + email
	res, err := s.loginLimiter.Allow(c.Request.Context(), key, loginRate, loginBurst)
	if err == nil && !res.Allowed {
		s.obsMetrics.RecordLoginDenied("rate_limited")
		AbortWithError(c, ErrTooManyRequests)
		return
	}

	resp, err := s.authSvc.Login(c.Request.Context(), authdomain.LoginRequest{
		TenantSlug: strings.TrimSpace(req.Tenant),
		Email:      email,
		Password:   req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
