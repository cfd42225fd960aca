// internal/handlers/user.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/tailor-backend/internal/i18n"
	"github.com/javajoker/tailor-backend/internal/services"
	"github.com/javajoker/tailor-backend/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func userResponse(c *gin.Context, user interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// GET /me
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	userResponse(c, user)
}

// PUT /me/update
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.UpdateMeRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateMe(c.Request.Context(), userID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	userResponse(c, user)
}

// PUT /me/password
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.UpdatePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.UpdatePassword(c.Request.Context(), userID, &req); err != nil {
		utils.HandleError(c, err)
		return
	}
	messageResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthPasswordUpdated))
}

// PUT /me/push-token
func (h *UserHandler) UpdatePushToken(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.PushTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.UpdatePushToken(c.Request.Context(), userID, &req); err != nil {
		utils.HandleError(c, err)
		return
	}
	messageResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthPushTokenSaved))
}

// GET /admin/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(users),
		"users":   users,
	})
}

// PUT /admin/user/:id
func (h *UserHandler) AdminUpdateUser(c *gin.Context) {
	var req services.AdminUpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.AdminUpdateUser(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	userResponse(c, user)
}

// DELETE /admin/user/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		utils.HandleError(c, err)
		return
	}
	messageResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyUserDeleted))
}
