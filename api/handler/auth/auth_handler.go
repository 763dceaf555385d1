package auth

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/abofield/abofield/api/common"
	"github.com/abofield/abofield/api/middleware"
	"github.com/abofield/abofield/internal/auth"
	"github.com/abofield/abofield/utils"
	"github.com/gin-gonic/gin"
)

// Handler exposes login, registration and session management.
type Handler struct {
	loginService *auth.LoginService
}

// NewHandler creates a new auth handler.
func NewHandler(loginService *auth.LoginService) *Handler {
	return &Handler{loginService: loginService}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
	DeviceID     string `json:"device_id" binding:"required"`
}

type logoutRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
}

// Login verifies credentials and issues a token pair.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	result, err := h.loginService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			common.RespondError(c, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		log.Printf("Login failed for user %s: %v", utils.SanitizeLogUsername(req.Username), err)
		common.RespondError(c, http.StatusInternalServerError, "Login failed")
		return
	}

	common.RespondSuccess(c, gin.H{
		"access_token":         result.AccessToken,
		"access_token_expiry":  result.AccessTokenExpiry.Format(time.RFC3339),
		"refresh_token":        result.RefreshToken,
		"refresh_token_expiry": result.RefreshTokenExpiry.Format(time.RFC3339),
		"device_id":            result.DeviceID,
		"user": gin.H{
			"id":       result.User.ID,
			"username": result.User.Username,
			"email":    result.User.Email,
			"is_admin": result.User.IsAdmin,
		},
	})
}

// Register creates a new non-admin account.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	user, err := h.loginService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAccountExists) {
			common.RespondError(c, http.StatusConflict, "Username or email already registered")
			return
		}
		log.Printf("Registration failed for user %s: %v", utils.SanitizeLogUsername(req.Username), err)
		common.RespondError(c, http.StatusInternalServerError, "Registration failed")
		return
	}

	common.RespondSuccessMessage(c, "Account created", gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// Refresh rotates the refresh token and issues a new access token.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	result, err := h.loginService.RefreshToken(req.RefreshToken, req.DeviceID)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	common.RespondSuccess(c, gin.H{
		"access_token":         result.AccessToken,
		"access_token_expiry":  result.AccessTokenExpiry.Format(time.RFC3339),
		"refresh_token":        result.RefreshToken,
		"refresh_token_expiry": result.RefreshTokenExpiry.Format(time.RFC3339),
		"device_id":            result.DeviceID,
	})
}

// Logout revokes one device session.
func (h *Handler) Logout(c *gin.Context) {
	var req logoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	if err := h.loginService.Logout(req.DeviceID); err != nil {
		log.Printf("Logout failed for device %s: %v", utils.SanitizeLogMessage(req.DeviceID), err)
		common.RespondError(c, http.StatusInternalServerError, "Logout failed")
		return
	}

	common.RespondSuccessMessage(c, "Logged out", nil)
}

// Session returns the claims of the authenticated caller.
func (h *Handler) Session(c *gin.Context) {
	common.RespondSuccess(c, gin.H{
		"user_id":  c.GetUint(middleware.ContextUserIDKey),
		"username": c.GetString(middleware.ContextUsernameKey),
		"is_admin": c.GetBool(middleware.ContextIsAdminKey),
	})
}
