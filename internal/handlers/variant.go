// internal/handlers/variant.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/tailor-backend/internal/i18n"
	"github.com/javajoker/tailor-backend/internal/services"
	"github.com/javajoker/tailor-backend/internal/utils"
)

// VariantHandler serves the variants nested under a product.
type VariantHandler struct {
	variantService *services.VariantService
}

func NewVariantHandler(variantService *services.VariantService) *VariantHandler {
	return &VariantHandler{variantService: variantService}
}

// GET /products/:productId/variants
func (h *VariantHandler) ListVariants(c *gin.Context) {
	variants, err := h.variantService.ListVariants(c.Request.Context(), c.Param("productId"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.ListResponse(c, variants, len(variants))
}

// GET /products/:productId/variants/:id
func (h *VariantHandler) GetVariant(c *gin.Context) {
	variant, err := h.variantService.GetVariant(c.Request.Context(), c.Param("productId"), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, variant)
}

// POST /products/:productId/variants
func (h *VariantHandler) CreateVariant(c *gin.Context) {
	var req services.CreateVariantRequest
	if !bind(c, &req) {
		return
	}
	image, ok := imageUpload(c)
	if !ok {
		return
	}

	variant, err := h.variantService.CreateVariant(c.Request.Context(), c.Param("productId"), &req, image)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.CreatedResponse(c, variant, i18n.T(utils.GetLangFromContext(c), i18n.KeyVariantCreated))
}

// PATCH /products/:productId/variants/:id
func (h *VariantHandler) UpdateVariant(c *gin.Context) {
	var req services.UpdateVariantRequest
	if !bind(c, &req) {
		return
	}
	image, ok := imageUpload(c)
	if !ok {
		return
	}

	variant, err := h.variantService.UpdateVariant(c.Request.Context(), c.Param("productId"), c.Param("id"), &req, image)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, variant, i18n.T(utils.GetLangFromContext(c), i18n.KeyVariantUpdated))
}

// DELETE /products/:productId/variants/:id
func (h *VariantHandler) DeleteVariant(c *gin.Context) {
	if err := h.variantService.DeleteVariant(c.Request.Context(), c.Param("productId"), c.Param("id")); err != nil {
		utils.HandleError(c, err)
		return
	}
	messageResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyVariantDeleted))
}

// PUT /products/:productId/variants/:id/default
func (h *VariantHandler) SetDefaultVariant(c *gin.Context) {
	product, err := h.variantService.SetDefaultVariant(c.Request.Context(), c.Param("productId"), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessMessageResponse(c, product, i18n.T(utils.GetLangFromContext(c), i18n.KeyProductUpdated))
}
