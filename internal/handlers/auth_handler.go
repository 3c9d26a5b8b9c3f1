package handlers

import (
	"errors"
	"net/http"

	"github.com/ArowuTest/event-showcase-backend/internal/models"
	"github.com/ArowuTest/event-showcase-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminAuthenticator checks the admin password and issues a token
type AdminAuthenticator interface {
	Login(password string) (string, error)
}

// AuthHandler handles the admin login
type AuthHandler struct {
	authService AdminAuthenticator
	log         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService AdminAuthenticator, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log.With(zap.String("handler", "AuthHandler")),
	}
}

// Login handles POST /admin/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Password is required"})
		return
	}

	token, err := h.authService.Login(req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.log.Warn("admin login rejected", zap.String("client_ip", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid password"})
			return
		}
		h.log.Error("admin login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, models.AdminLoginResponse{Success: true, Token: token})
}
