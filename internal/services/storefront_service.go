// internal/services/storefront_service.go
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/models"
	"github.com/javajoker/tailor-backend/internal/utils"
)

// sortedRows lists rows by sortOrder, optionally only the active ones.
func sortedRows[T any](ctx context.Context, db *gorm.DB, activeOnly bool) ([]T, error) {
	out := []T{}
	q := db.WithContext(ctx).Order("sort_order ASC").Order("created_at ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, utils.Unexpected(err)
	}
	return out, nil
}

// uploadOrURL stores image when present and otherwise keeps the given URL.
func uploadOrURL(ctx context.Context, store ImageStore, image *ImageUpload, folder, url string) (string, *UploadResult, error) {
	if image == nil {
		return url, nil, nil
	}
	uploaded, err := store.Upload(ctx, image.Data, folder, image.Filename)
	if err != nil {
		return "", nil, err
	}
	return uploaded.URL, uploaded, nil
}

// Banners

type BannerService struct {
	db    *gorm.DB
	store ImageStore
}

type BannerRequest struct {
	Title     *string `json:"title" form:"title" validate:"omitempty,max=255"`
	Subtitle  *string `json:"subtitle" form:"subtitle" validate:"omitempty,max=255"`
	ImageURL  *string `json:"imageUrl" form:"imageUrl" validate:"omitempty,url"`
	Link      *string `json:"link" form:"link" validate:"omitempty,min=1"`
	IsActive  *bool   `json:"isActive" form:"isActive"`
	SortOrder *int    `json:"sortOrder" form:"sortOrder"`
}

func NewBannerService(db *gorm.DB, store ImageStore) *BannerService {
	return &BannerService{db: db, store: store}
}

func (s *BannerService) ListActive(ctx context.Context) ([]models.Banner, error) {
	return sortedRows[models.Banner](ctx, s.db, true)
}

func (s *BannerService) ListAll(ctx context.Context) ([]models.Banner, error) {
	return sortedRows[models.Banner](ctx, s.db, false)
}

func (s *BannerService) Get(ctx context.Context, rawID string) (*models.Banner, error) {
	banner, _, err := findOption[models.Banner](ctx, s.db, "Banner", rawID)
	return banner, err
}

func (s *BannerService) Create(ctx context.Context, req *BannerRequest, image *ImageUpload) (*models.Banner, error) {
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}
	if req.Link == nil {
		return nil, utils.Validation("A banner must have a link/route.")
	}
	if image == nil && (req.ImageURL == nil || *req.ImageURL == "") {
		return nil, utils.Validation("A banner must have an image URL.")
	}
	imageURL, uploaded, err := uploadOrURL(ctx, s.store, image, FolderBanners, deref(req.ImageURL))
	if err != nil {
		return nil, err
	}

	banner := &models.Banner{
		Title:     deref(req.Title),
		Subtitle:  deref(req.Subtitle),
		ImageURL:  imageURL,
		Link:      *req.Link,
		IsActive:  req.IsActive == nil || *req.IsActive,
		SortOrder: derefInt(req.SortOrder),
	}
	err = s.db.WithContext(ctx).Create(banner).Error
	finishUpload(ctx, s.store, err, uploaded, "", imageURL)
	if err != nil {
		return nil, utils.StoreError(err, "Banner", banner.ID)
	}
	return banner, nil
}

func (s *BannerService) Update(ctx context.Context, rawID string, req *BannerRequest, image *ImageUpload) (*models.Banner, error) {
	banner, id, err := findOption[models.Banner](ctx, s.db, "Banner", rawID)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Subtitle != nil {
		updates["subtitle"] = *req.Subtitle
	}
	if req.Link != nil {
		updates["link"] = *req.Link
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	imageURL, uploaded, err := uploadOrURL(ctx, s.store, image, FolderBanners, deref(req.ImageURL))
	if err != nil {
		return nil, err
	}
	if imageURL != "" {
		updates["image_url"] = imageURL
	}

	if len(updates) > 0 {
		err = s.db.WithContext(ctx).Model(&models.Banner{}).Where("id = ?", id).Updates(updates).Error
		finishUpload(ctx, s.store, err, uploaded, banner.ImageURL, imageURL)
		if err != nil {
			return nil, utils.StoreError(err, "Banner", id)
		}
	}
	return s.Get(ctx, id.String())
}

func (s *BannerService) Delete(ctx context.Context, rawID string) error {
	banner, id, err := findOption[models.Banner](ctx, s.db, "Banner", rawID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Banner{}, "id = ?", id).Error; err != nil {
		return utils.Unexpected(err)
	}
	releaseImage(ctx, s.store, banner.ImageURL)
	return nil
}

// Stores

type StoreService struct {
	db    *gorm.DB
	store ImageStore
}

type StoreRequest struct {
	Name         *string  `json:"name" form:"name" validate:"omitempty,min=1,max=255"`
	Address      *string  `json:"address" form:"address" validate:"omitempty,min=1"`
	Phone        *string  `json:"phone" form:"phone" validate:"omitempty,min=1,max=50"`
	OpeningHours *string  `json:"openingHours" form:"openingHours" validate:"omitempty,max=255"`
	ImageURL     *string  `json:"imageUrl" form:"imageUrl" validate:"omitempty,url"`
	Latitude     *float64 `json:"latitude" form:"latitude" validate:"omitempty,latitude"`
	Longitude    *float64 `json:"longitude" form:"longitude" validate:"omitempty,longitude"`
	IsActive     *bool    `json:"isActive" form:"isActive"`
	SortOrder    *int     `json:"sortOrder" form:"sortOrder"`
}

const defaultOpeningHours = "11:00 AM - 8:00 PM, Mon-Sat"

func NewStoreService(db *gorm.DB, store ImageStore) *StoreService {
	return &StoreService{db: db, store: store}
}

func (s *StoreService) ListActive(ctx context.Context) ([]models.Store, error) {
	return sortedRows[models.Store](ctx, s.db, true)
}

func (s *StoreService) ListAll(ctx context.Context) ([]models.Store, error) {
	return sortedRows[models.Store](ctx, s.db, false)
}

func (s *StoreService) Get(ctx context.Context, rawID string) (*models.Store, error) {
	store, _, err := findOption[models.Store](ctx, s.db, "Store", rawID)
	return store, err
}

func (s *StoreService) Create(ctx context.Context, req *StoreRequest, image *ImageUpload) (*models.Store, error) {
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}
	switch {
	case req.Name == nil:
		return nil, utils.Validation("Store name is required")
	case req.Address == nil:
		return nil, utils.Validation("Store address is required")
	case req.Phone == nil:
		return nil, utils.Validation("Store phone is required")
	case req.Latitude == nil || req.Longitude == nil:
		return nil, utils.Validation("Store coordinates are required")
	case image == nil && deref(req.ImageURL) == "":
		return nil, utils.Validation("Store image is required")
	}
	imageURL, uploaded, err := uploadOrURL(ctx, s.store, image, FolderStores, deref(req.ImageURL))
	if err != nil {
		return nil, err
	}

	hours := deref(req.OpeningHours)
	if hours == "" {
		hours = defaultOpeningHours
	}
	row := &models.Store{
		Name:         *req.Name,
		Address:      *req.Address,
		Phone:        *req.Phone,
		OpeningHours: hours,
		ImageURL:     imageURL,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		IsActive:     req.IsActive == nil || *req.IsActive,
		SortOrder:    derefInt(req.SortOrder),
	}
	err = s.db.WithContext(ctx).Create(row).Error
	finishUpload(ctx, s.store, err, uploaded, "", imageURL)
	if err != nil {
		return nil, utils.StoreError(err, "Store", row.Name)
	}
	return row, nil
}

func (s *StoreService) Update(ctx context.Context, rawID string, req *StoreRequest, image *ImageUpload) (*models.Store, error) {
	existing, id, err := findOption[models.Store](ctx, s.db, "Store", rawID)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	set := func(column string, v interface{}, ok bool) {
		if ok {
			updates[column] = v
		}
	}
	set("name", deref(req.Name), req.Name != nil)
	set("address", deref(req.Address), req.Address != nil)
	set("phone", deref(req.Phone), req.Phone != nil)
	set("opening_hours", deref(req.OpeningHours), req.OpeningHours != nil)
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	set("sort_order", derefInt(req.SortOrder), req.SortOrder != nil)

	imageURL, uploaded, err := uploadOrURL(ctx, s.store, image, FolderStores, deref(req.ImageURL))
	if err != nil {
		return nil, err
	}
	if imageURL != "" {
		updates["image_url"] = imageURL
	}

	if len(updates) > 0 {
		err = s.db.WithContext(ctx).Model(&models.Store{}).Where("id = ?", id).Updates(updates).Error
		finishUpload(ctx, s.store, err, uploaded, existing.ImageURL, imageURL)
		if err != nil {
			return nil, utils.StoreError(err, "Store", id)
		}
	}
	return s.Get(ctx, id.String())
}

func (s *StoreService) Delete(ctx context.Context, rawID string) error {
	existing, id, err := findOption[models.Store](ctx, s.db, "Store", rawID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Store{}, "id = ?", id).Error; err != nil {
		return utils.Unexpected(err)
	}
	releaseImage(ctx, s.store, existing.ImageURL)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
