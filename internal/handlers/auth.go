// internal/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/tailor-backend/internal/i18n"
	"github.com/javajoker/tailor-backend/internal/middleware"
	"github.com/javajoker/tailor-backend/internal/services"
	"github.com/javajoker/tailor-backend/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
	cookieDays  int
	secure      bool
}

func NewAuthHandler(authService *services.AuthService, cookieDays int, secure bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookieDays:  cookieDays,
		secure:      secure,
	}
}

// sendToken stores the token in the named cookie and echoes it in the body.
func (h *AuthHandler) sendToken(c *gin.Context, cookie string, auth *services.AuthResponse) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookie, auth.Token, h.cookieDays*24*60*60, "/", "", h.secure, true)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    auth.User,
		"token":   auth.Token,
	})
}

func (h *AuthHandler) clearToken(c *gin.Context, cookie string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookie, "", -1, "/", "", h.secure, true)
	messageResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthLogoutSuccess))
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	email, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthOTPSent),
		"email":   email,
	})
}

// POST /auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req services.VerifyOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	auth, err := h.authService.VerifyOTP(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	h.sendToken(c, middleware.UserCookie, auth)
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	auth, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	h.sendToken(c, middleware.UserCookie, auth)
}

// GET /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearToken(c, middleware.UserCookie)
}

// POST /password/forgot
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req services.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	email, err := h.authService.ForgotPassword(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	messageResponse(c, "OTP sent to "+email)
}

// POST /password/verify-otp
func (h *AuthHandler) VerifyResetOTP(c *gin.Context) {
	var req services.VerifyOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.VerifyResetOTP(c.Request.Context(), &req); err != nil {
		utils.HandleError(c, err)
		return
	}
	messageResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthOTPVerified))
}

// PATCH /password/reset
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req services.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	auth, err := h.authService.ResetPassword(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	h.sendToken(c, middleware.UserCookie, auth)
}

// POST /admin/auth
func (h *AuthHandler) AdminSignIn(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	auth, err := h.authService.AdminSignIn(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	h.sendToken(c, middleware.AdminCookie, auth)
}

// GET /admin/logout
func (h *AuthHandler) AdminLogout(c *gin.Context) {
	h.clearToken(c, middleware.AdminCookie)
}
