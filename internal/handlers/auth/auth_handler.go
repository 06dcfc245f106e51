// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	xerrors "license-service/internal/pkg/errors"
	"license-service/internal/pkg/response"
	"license-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *auth.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *auth.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin handles POST /api/login. The body is form-encoded with the email
// carried in the username field.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	email := c.PostForm("username")
	password := c.PostForm("password")
	if email == "" || password == "" {
		response.Error(c, http.StatusBadRequest, "username and password are required")
		return
	}

	result, err := h.authService.AdminLogin(c.Request.Context(), c.ClientIP(), email, password)
	if err != nil {
		h.loginError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"token":      result.Token,
		"email":      result.Email,
		"expires_in": result.ExpiresIn,
	})
}

// CustomerLogin handles POST /api/customer/login.
func (h *AuthHandler) CustomerLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.CustomerLogin(c.Request.Context(), c.ClientIP(), req.Email, req.Password)
	if err != nil {
		h.loginError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"token":      result.Token,
		"name":       result.Name,
		"phone":      result.Phone,
		"expires_in": result.ExpiresIn,
	})
}

// CustomerSignup handles POST /api/customer/signup.
func (h *AuthHandler) CustomerSignup(c *gin.Context) {
	var req auth.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrConflict) {
			response.Error(c, http.StatusConflict, "email already registered")
			return
		}
		response.FromError(c, err, "signup failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Account created successfully",
		"token":      result.Token,
		"name":       result.Name,
		"phone":      result.Phone,
		"expires_in": result.ExpiresIn,
	})
}

// SDKLogin handles POST /sdk/auth/login. An existing active API key is reused
// rather than minting a new one per login.
func (h *AuthHandler) SDKLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.SDKLogin(c.Request.Context(), c.ClientIP(), req.Email, req.Password)
	if err != nil {
		h.loginError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"api_key":    result.APIKey,
		"token":      result.Token,
		"name":       result.Name,
		"phone":      result.Phone,
		"expires_in": result.ExpiresIn,
	})
}

func (h *AuthHandler) loginError(c *gin.Context, err error) {
	switch {
	case xerrors.Is(err, xerrors.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "invalid credentials")
	case xerrors.Is(err, xerrors.ErrForbidden):
		response.Error(c, http.StatusForbidden, "user account is disabled")
	case xerrors.Is(err, xerrors.ErrRateLimited):
		response.Error(c, http.StatusTooManyRequests, "too many login attempts, try again later")
	case xerrors.Is(err, xerrors.ErrNotFound):
		response.Error(c, http.StatusNotFound, "customer profile not found")
	default:
		h.logger.Error("login failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "login failed")
	}
}
