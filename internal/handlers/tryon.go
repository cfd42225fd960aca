// internal/handlers/tryon.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/tailor-backend/internal/services"
	"github.com/javajoker/tailor-backend/internal/utils"
)

type TryOnHandler struct {
	tryOnService *services.TryOnService
}

func NewTryOnHandler(tryOnService *services.TryOnService) *TryOnHandler {
	return &TryOnHandler{tryOnService: tryOnService}
}

// POST /tryon
func (h *TryOnHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.CreateTryOnRequest
	if !bind(c, &req) {
		return
	}
	image, ok := imageUpload(c)
	if !ok {
		return
	}

	history, err := h.tryOnService.Create(c.Request.Context(), userID, &req, image)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":        true,
		"tryOnHistoryId": history.ID,
		"resultImageUrl": history.ResultImageURL,
	})
}

// GET /tryon/history
func (h *TryOnHandler) History(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	history, err := h.tryOnService.History(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.ListResponse(c, history, len(history))
}

// GET /tryon/:id
func (h *TryOnHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	result, err := h.tryOnService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, result)
}
