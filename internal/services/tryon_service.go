// internal/services/tryon_service.go
package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/models"
	"github.com/javajoker/tailor-backend/internal/utils"
)

type TryOnService struct {
	db      *gorm.DB
	store   ImageStore
	proxy   TryOnProxy
	fetcher ImageFetcher
}

type CreateTryOnRequest struct {
	VariantID    string `json:"variantId" form:"variantId" validate:"required"`
	UserImageURL string `json:"userImageUrl" form:"userImageUrl" validate:"omitempty,url"`
}

func NewTryOnService(db *gorm.DB, store ImageStore, proxy TryOnProxy, fetcher ImageFetcher) *TryOnService {
	return &TryOnService{db: db, store: store, proxy: proxy, fetcher: fetcher}
}

// Create runs a try-on for the variant's garment and records it. Nothing is
// written to history unless the proxy call and both uploads succeed.
func (s *TryOnService) Create(ctx context.Context, userID uuid.UUID, req *CreateTryOnRequest, image *ImageUpload) (*models.TryOnHistory, error) {
	if err := utils.ValidateRequest(req); err != nil {
		return nil, utils.Validation("Variant ID is required.")
	}
	if image == nil && req.UserImageURL == "" {
		return nil, utils.Validation("A user image is required.")
	}
	variantID, err := parseRefID("variantId", req.VariantID)
	if err != nil {
		return nil, err
	}

	var variant models.Variant
	if err := s.db.WithContext(ctx).Select("id", "combination_image").First(&variant, "id = ?", variantID).Error; err != nil {
		return nil, utils.StoreError(err, "Variant", variantID)
	}

	var avatar []byte
	if image != nil {
		avatar = image.Data
	} else if avatar, err = s.fetcher.Fetch(ctx, req.UserImageURL); err != nil {
		return nil, utils.External("user image download", err)
	}
	garment, err := s.fetcher.Fetch(ctx, variant.CombinationImage)
	if err != nil {
		return nil, utils.External("garment image download", err)
	}

	result, err := s.proxy.TryOn(ctx, avatar, garment)
	if err != nil {
		return nil, utils.External("try-on", err)
	}

	resultUpload, err := s.store.Upload(ctx, result, FolderTryOn, "result.png")
	if err != nil {
		return nil, err
	}
	uploaded := []string{resultUpload.URL}

	userImageURL := req.UserImageURL
	if image != nil {
		userUpload, err := s.store.Upload(ctx, image.Data, FolderTryOn, image.Filename)
		if err != nil {
			s.release(ctx, uploaded)
			return nil, err
		}
		userImageURL = userUpload.URL
		uploaded = append(uploaded, userUpload.URL)
	}

	history := &models.TryOnHistory{
		UserID:         userID,
		VariantID:      variantID,
		UserImageURL:   userImageURL,
		ResultImageURL: resultUpload.URL,
	}
	if err := s.db.WithContext(ctx).Create(history).Error; err != nil {
		s.release(ctx, uploaded)
		return nil, utils.Unexpected(err)
	}
	return history, nil
}

func (s *TryOnService) release(ctx context.Context, urls []string) {
	for _, u := range urls {
		releaseImage(ctx, s.store, u)
	}
}

func (s *TryOnService) History(ctx context.Context, userID uuid.UUID) ([]models.TryOnHistory, error) {
	history := []models.TryOnHistory{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Variant.Design").Preload("Variant.Fabric").Preload("Variant.Color").
		Order("created_at DESC").
		Find(&history).Error
	if err != nil {
		return nil, utils.Unexpected(err)
	}
	return history, nil
}

// Get returns one try-on result; only its owner may see it.
func (s *TryOnService) Get(ctx context.Context, userID uuid.UUID, rawID string) (*models.TryOnHistory, error) {
	id, err := parseID("Try-on result", rawID)
	if err != nil {
		return nil, err
	}

	var history models.TryOnHistory
	err = s.db.WithContext(ctx).
		Preload("Variant.Design").Preload("Variant.Fabric").Preload("Variant.Color").Preload("Variant.Product").
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email") }).
		First(&history, "id = ?", id).Error
	if err != nil {
		return nil, utils.StoreError(err, "Try-on result", id)
	}
	if history.UserID != userID {
		return nil, utils.Forbidden("Not authorized to view this result.")
	}
	return &history, nil
}
