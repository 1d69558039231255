package handlers

import (
	"net/http"

	"leadcrm-backend/auth"
	"leadcrm-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles login, logout and session lookups
type AuthHandler struct {
	authService  *service.AuthService
	cookieName   string
	cookieSecure bool
	maxAge       int
	log          *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, tokens *auth.TokenManager, cookieName string, cookieSecure bool, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieName:   cookieName,
		cookieSecure: cookieSecure,
		maxAge:       int(tokens.TTL().Seconds()),
		log:          log,
	}
}

// LoginRequest represents the login body. username may also carry an email.
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=2"`
	Password string `json:"password" binding:"required,min=4"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), service.LoginRequest{
		Identifier: req.Username,
		Password:   req.Password,
	})
	if err != nil {
		respondError(c, h.log, err, "Login failed")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, result.Token, h.maxAge, "/", "", h.cookieSecure, true)

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"user_id": result.User.UserID,
		"name":    result.User.Name,
		"email":   result.User.Email,
		"role":    result.User.Role,
		"token":   result.Token,
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// CheckUsername handles GET /check-username?username=
func (h *AuthHandler) CheckUsername(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username required"})
		return
	}

	exists, err := h.authService.UsernameExists(c.Request.Context(), username)
	if err != nil {
		respondError(c, h.log, err, "Failed to check username")
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}
