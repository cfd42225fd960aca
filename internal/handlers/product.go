// internal/handlers/product.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/tailor-backend/internal/i18n"
	"github.com/javajoker/tailor-backend/internal/services"
	"github.com/javajoker/tailor-backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	result, err := h.productService.ListProducts(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}

// GET /product/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, product)
}

// GET /product-page/:id
func (h *ProductHandler) GetProductPage(c *gin.Context) {
	page, err := h.productService.GetProductPage(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, page)
}

// GET /homepage-sections
func (h *ProductHandler) GetHomepageSections(c *gin.Context) {
	sections, err := h.productService.HomepageSections(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, sections)
}

// POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if !bind(c, &req) {
		return
	}
	image, ok := imageUpload(c)
	if !ok {
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &req, image)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.CreatedResponse(c, product, i18n.T(lang, i18n.KeyProductCreated))
}

// PATCH /product/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req services.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessMessageResponse(c, product, i18n.T(lang, i18n.KeyProductUpdated))
}

// DELETE /product/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.productService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		utils.HandleError(c, err)
		return
	}
	messageResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyProductDeleted))
}

// GET /admin/products/integrity
func (h *ProductHandler) CheckIntegrity(c *gin.Context) {
	issues, err := h.productService.CheckIntegrity(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.ListResponse(c, issues, len(issues))
}

// POST /admin/products/:id/relink
func (h *ProductHandler) RelinkProduct(c *gin.Context) {
	product, err := h.productService.Relink(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessMessageResponse(c, product, i18n.T(lang, i18n.KeyProductRelinked))
}
