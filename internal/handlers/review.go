// internal/handlers/review.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/tailor-backend/internal/i18n"
	"github.com/javajoker/tailor-backend/internal/services"
	"github.com/javajoker/tailor-backend/internal/utils"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// GET /product/:id/reviews
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	result, err := h.reviewService.ListReviews(c.Request.Context(), c.Param("id"), c.Request.URL.Query())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}

// POST /product/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.CreatedResponse(c, review, "")
}

// PUT /reviews/:id
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.UpdateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, review)
}

// DELETE /reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.reviewService.DeleteReview(c.Request.Context(), userID, c.Param("id")); err != nil {
		utils.HandleError(c, err)
		return
	}
	messageResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyReviewDeleted))
}
