// internal/handlers/storefront.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/tailor-backend/internal/i18n"
	"github.com/javajoker/tailor-backend/internal/services"
	"github.com/javajoker/tailor-backend/internal/utils"
)

// StorefrontHandler serves homepage banners and physical store locations.
type StorefrontHandler struct {
	bannerService *services.BannerService
	storeService  *services.StoreService
}

func NewStorefrontHandler(bannerService *services.BannerService, storeService *services.StoreService) *StorefrontHandler {
	return &StorefrontHandler{bannerService: bannerService, storeService: storeService}
}

// GET /banners
func (h *StorefrontHandler) PublicBanners(c *gin.Context) {
	banners, err := h.bannerService.ListActive(c.Request.Context())
	listed(c, banners, err)
}

// GET /admin/banners
func (h *StorefrontHandler) AllBanners(c *gin.Context) {
	banners, err := h.bannerService.ListAll(c.Request.Context())
	listed(c, banners, err)
}

// GET /admin/banner/:id
func (h *StorefrontHandler) GetBanner(c *gin.Context) {
	banner, err := h.bannerService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, banner)
}

// POST /admin/banners
func (h *StorefrontHandler) CreateBanner(c *gin.Context) {
	var req services.BannerRequest
	if !bind(c, &req) {
		return
	}
	image, ok := imageUpload(c)
	if !ok {
		return
	}

	banner, err := h.bannerService.Create(c.Request.Context(), &req, image)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.CreatedResponse(c, banner, "")
}

// PUT /admin/banner/:id
func (h *StorefrontHandler) UpdateBanner(c *gin.Context) {
	var req services.BannerRequest
	if !bind(c, &req) {
		return
	}
	image, ok := imageUpload(c)
	if !ok {
		return
	}

	banner, err := h.bannerService.Update(c.Request.Context(), c.Param("id"), &req, image)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, banner)
}

// DELETE /admin/banner/:id
func (h *StorefrontHandler) DeleteBanner(c *gin.Context) {
	if err := h.bannerService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.HandleError(c, err)
		return
	}
	messageResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyBannerDeleted))
}

// GET /stores
func (h *StorefrontHandler) PublicStores(c *gin.Context) {
	stores, err := h.storeService.ListActive(c.Request.Context())
	listed(c, stores, err)
}

// GET /admin/stores
func (h *StorefrontHandler) AllStores(c *gin.Context) {
	stores, err := h.storeService.ListAll(c.Request.Context())
	listed(c, stores, err)
}

// GET /admin/store/:id
func (h *StorefrontHandler) GetStore(c *gin.Context) {
	store, err := h.storeService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, store)
}

// POST /admin/stores
func (h *StorefrontHandler) CreateStore(c *gin.Context) {
	var req services.StoreRequest
	if !bind(c, &req) {
		return
	}
	image, ok := imageUpload(c)
	if !ok {
		return
	}

	store, err := h.storeService.Create(c.Request.Context(), &req, image)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.CreatedResponse(c, store, "")
}

// PUT /admin/store/:id
func (h *StorefrontHandler) UpdateStore(c *gin.Context) {
	var req services.StoreRequest
	if !bind(c, &req) {
		return
	}
	image, ok := imageUpload(c)
	if !ok {
		return
	}

	store, err := h.storeService.Update(c.Request.Context(), c.Param("id"), &req, image)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessResponse(c, store)
}

// DELETE /admin/store/:id
func (h *StorefrontHandler) DeleteStore(c *gin.Context) {
	if err := h.storeService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.HandleError(c, err)
		return
	}
	messageResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyStoreDeleted))
}
