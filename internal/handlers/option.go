// internal/handlers/option.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/tailor-backend/internal/i18n"
	"github.com/javajoker/tailor-backend/internal/services"
	"github.com/javajoker/tailor-backend/internal/utils"
)

// OptionHandler serves designs, fabrics and colors.
type OptionHandler struct {
	optionService *services.OptionService
}

func NewOptionHandler(optionService *services.OptionService) *OptionHandler {
	return &OptionHandler{optionService: optionService}
}

func listed[T any](c *gin.Context, rows []T, err error) {
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.ListResponse(c, rows, len(rows))
}

func optionSaved(c *gin.Context, entity string, created bool, data interface{}, err error) {
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	lang := utils.GetLangFromContext(c)
	if created {
		utils.CreatedResponse(c, data, i18n.T(lang, i18n.KeyOptionCreated, entity))
		return
	}
	utils.SuccessMessageResponse(c, data, i18n.T(lang, i18n.KeyOptionUpdated, entity))
}

func optionDeleted(c *gin.Context, entity string, err error) {
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	messageResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyOptionDeleted, entity))
}

// GET /designs
func (h *OptionHandler) ListDesigns(c *gin.Context) {
	designs, err := h.optionService.ListDesigns(c.Request.Context(), c.Request.URL.Query())
	listed(c, designs, err)
}

// POST /designs
func (h *OptionHandler) CreateDesign(c *gin.Context) {
	var req services.DesignRequest
	if !bind(c, &req) {
		return
	}
	image, ok := imageUpload(c)
	if !ok {
		return
	}
	design, err := h.optionService.CreateDesign(c.Request.Context(), &req, image)
	optionSaved(c, "Design", true, design, err)
}

// PATCH /designs/:id
func (h *OptionHandler) UpdateDesign(c *gin.Context) {
	var req services.DesignRequest
	if !bind(c, &req) {
		return
	}
	image, ok := imageUpload(c)
	if !ok {
		return
	}
	design, err := h.optionService.UpdateDesign(c.Request.Context(), c.Param("id"), &req, image)
	optionSaved(c, "Design", false, design, err)
}

// DELETE /designs/:id
func (h *OptionHandler) DeleteDesign(c *gin.Context) {
	optionDeleted(c, "Design", h.optionService.DeleteDesign(c.Request.Context(), c.Param("id")))
}

// GET /fabrics
func (h *OptionHandler) ListFabrics(c *gin.Context) {
	fabrics, err := h.optionService.ListFabrics(c.Request.Context(), c.Request.URL.Query())
	listed(c, fabrics, err)
}

// POST /fabrics
func (h *OptionHandler) CreateFabric(c *gin.Context) {
	var req services.FabricRequest
	if !bind(c, &req) {
		return
	}
	image, ok := imageUpload(c)
	if !ok {
		return
	}
	fabric, err := h.optionService.CreateFabric(c.Request.Context(), &req, image)
	optionSaved(c, "Fabric", true, fabric, err)
}

// PATCH /fabrics/:id
func (h *OptionHandler) UpdateFabric(c *gin.Context) {
	var req services.FabricRequest
	if !bind(c, &req) {
		return
	}
	image, ok := imageUpload(c)
	if !ok {
		return
	}
	fabric, err := h.optionService.UpdateFabric(c.Request.Context(), c.Param("id"), &req, image)
	optionSaved(c, "Fabric", false, fabric, err)
}

// DELETE /fabrics/:id
func (h *OptionHandler) DeleteFabric(c *gin.Context) {
	optionDeleted(c, "Fabric", h.optionService.DeleteFabric(c.Request.Context(), c.Param("id")))
}

// GET /colors
func (h *OptionHandler) ListColors(c *gin.Context) {
	colors, err := h.optionService.ListColors(c.Request.Context(), c.Request.URL.Query())
	listed(c, colors, err)
}

// POST /colors
func (h *OptionHandler) CreateColor(c *gin.Context) {
	var req services.ColorRequest
	if !bind(c, &req) {
		return
	}
	color, err := h.optionService.CreateColor(c.Request.Context(), &req)
	optionSaved(c, "Color", true, color, err)
}

// PATCH /colors/:id
func (h *OptionHandler) UpdateColor(c *gin.Context) {
	var req services.ColorRequest
	if !bind(c, &req) {
		return
	}
	color, err := h.optionService.UpdateColor(c.Request.Context(), c.Param("id"), &req)
	optionSaved(c, "Color", false, color, err)
}

// DELETE /colors/:id
func (h *OptionHandler) DeleteColor(c *gin.Context) {
	optionDeleted(c, "Color", h.optionService.DeleteColor(c.Request.Context(), c.Param("id")))
}
