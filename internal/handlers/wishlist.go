// internal/handlers/wishlist.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/tailor-backend/internal/i18n"
	"github.com/javajoker/tailor-backend/internal/services"
	"github.com/javajoker/tailor-backend/internal/utils"
)

type WishlistHandler struct {
	wishlistService *services.WishlistService
}

func NewWishlistHandler(wishlistService *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

// POST /wishlist/toggle
func (h *WishlistHandler) Toggle(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.ToggleWishlistRequest
	if !bindJSON(c, &req) {
		return
	}

	action, err := h.wishlistService.Toggle(c.Request.Context(), userID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	status, key := http.StatusOK, i18n.KeyWishlistRemoved
	if action == services.WishlistAdded {
		status, key = http.StatusCreated, i18n.KeyWishlistAdded
	}
	c.JSON(status, gin.H{
		"success": true,
		"message": i18n.T(lang, key),
		"action":  action,
	})
}

// GET /wishlist/ids
func (h *WishlistHandler) ProductIDs(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ids, err := h.wishlistService.ProductIDs(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, ids)
}

// GET /wishlist/products
func (h *WishlistHandler) Products(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	result, err := h.wishlistService.Products(c.Request.Context(), userID, utils.PageFromQuery(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}
