// internal/services/variant_service.go
package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/models"
	"github.com/javajoker/tailor-backend/internal/utils"
)

type VariantService struct {
	db    *gorm.DB
	store ImageStore
}

type CreateVariantRequest struct {
	DesignID         string  `json:"designId" form:"designId" validate:"required"`
	FabricID         string  `json:"fabricId" form:"fabricId" validate:"required"`
	ColorID          string  `json:"colorId" form:"colorId" validate:"required"`
	Price            float64 `json:"price" form:"price" validate:"gt=0"`
	CombinationImage string  `json:"combinationImage" form:"combinationImage" validate:"omitempty,url"`
}

type UpdateVariantRequest struct {
	DesignID         *string  `json:"designId" form:"designId"`
	FabricID         *string  `json:"fabricId" form:"fabricId"`
	ColorID          *string  `json:"colorId" form:"colorId"`
	Price            *float64 `json:"price" form:"price" validate:"omitempty,gt=0"`
	CombinationImage *string  `json:"combinationImage" form:"combinationImage" validate:"omitempty,url"`
}

func NewVariantService(db *gorm.DB, store ImageStore) *VariantService {
	return &VariantService{db: db, store: store}
}

func (s *VariantService) findProduct(ctx context.Context, rawID string) (*models.Product, error) {
	id, err := parseID("Product", rawID)
	if err != nil {
		return nil, err
	}
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, utils.StoreError(err, "Product", id)
	}
	return &product, nil
}

// findVariant loads a variant of the product; a variant of another product
// is reported as missing.
func (s *VariantService) findVariant(ctx context.Context, productID uuid.UUID, rawID string) (*models.Variant, error) {
	id, err := parseID("Variant", rawID)
	if err != nil {
		return nil, err
	}
	var variant models.Variant
	if err := s.db.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		return nil, utils.StoreError(err, "Variant", id)
	}
	if !variant.BelongsTo(productID) {
		return nil, utils.NotFound("Variant", id)
	}
	return &variant, nil
}

// CreateVariant adds a variant to an existing product. Nothing is written
// unless the product and all three options exist.
func (s *VariantService) CreateVariant(ctx context.Context, rawProductID string, req *CreateVariantRequest, image *ImageUpload) (*models.Variant, error) {
	product, err := s.findProduct(ctx, rawProductID)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}
	refs, err := parseOptionRefs(req.DesignID, req.FabricID, req.ColorID)
	if err != nil {
		return nil, err
	}
	if image == nil && req.CombinationImage == "" {
		return nil, utils.Validation("Combination image is required")
	}
	if err := refs.verify(ctx, s.db); err != nil {
		return nil, err
	}

	imageURL := req.CombinationImage
	var uploaded *UploadResult
	if image != nil {
		if uploaded, err = s.store.Upload(ctx, image.Data, FolderVariants, image.Filename); err != nil {
			return nil, err
		}
		imageURL = uploaded.URL
	}

	variant := &models.Variant{
		ProductID:        &product.ID,
		DesignID:         refs.DesignID,
		FabricID:         refs.FabricID,
		ColorID:          refs.ColorID,
		CombinationImage: imageURL,
		Price:            req.Price,
	}
	if err := s.db.WithContext(ctx).Create(variant).Error; err != nil {
		if uploaded != nil {
			releaseImage(context.WithoutCancel(ctx), s.store, uploaded.URL)
		}
		return nil, utils.StoreError(err, "Variant", product.ID)
	}

	return s.load(ctx, variant.ID)
}

func (s *VariantService) ListVariants(ctx context.Context, rawProductID string) ([]models.Variant, error) {
	product, err := s.findProduct(ctx, rawProductID)
	if err != nil {
		return nil, err
	}

	variants := []models.Variant{}
	err = s.db.WithContext(ctx).
		Preload("Design").Preload("Fabric").Preload("Color").
		Where("product_id = ?", product.ID).
		Order("created_at ASC").
		Find(&variants).Error
	if err != nil {
		return nil, utils.StoreError(err, "Variant", product.ID)
	}
	return variants, nil
}

func (s *VariantService) GetVariant(ctx context.Context, rawProductID, rawID string) (*models.Variant, error) {
	product, err := s.findProduct(ctx, rawProductID)
	if err != nil {
		return nil, err
	}
	variant, err := s.findVariant(ctx, product.ID, rawID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, variant.ID)
}

func (s *VariantService) load(ctx context.Context, id uuid.UUID) (*models.Variant, error) {
	var variant models.Variant
	err := s.db.WithContext(ctx).
		Preload("Product").Preload("Design").Preload("Fabric").Preload("Color").
		First(&variant, "id = ?", id).Error
	if err != nil {
		return nil, utils.StoreError(err, "Variant", id)
	}
	return &variant, nil
}

// UpdateVariant applies the given fields. A new image replaces the old one,
// which is released once the row is saved.
func (s *VariantService) UpdateVariant(ctx context.Context, rawProductID, rawID string, req *UpdateVariantRequest, image *ImageUpload) (*models.Variant, error) {
	product, err := s.findProduct(ctx, rawProductID)
	if err != nil {
		return nil, err
	}
	variant, err := s.findVariant(ctx, product.ID, rawID)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}

	refs := optionRefs{DesignID: variant.DesignID, FabricID: variant.FabricID, ColorID: variant.ColorID}
	updates := make(map[string]interface{})
	for _, f := range []struct {
		raw    *string
		field  string
		column string
		dest   *uuid.UUID
	}{
		{req.DesignID, "designId", "design_id", &refs.DesignID},
		{req.FabricID, "fabricId", "fabric_id", &refs.FabricID},
		{req.ColorID, "colorId", "color_id", &refs.ColorID},
	} {
		if f.raw == nil {
			continue
		}
		id, err := parseRefID(f.field, *f.raw)
		if err != nil {
			return nil, err
		}
		*f.dest = id
		updates[f.column] = id
	}
	if len(updates) > 0 {
		if err := refs.verify(ctx, s.db); err != nil {
			return nil, err
		}
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.CombinationImage != nil && image == nil {
		updates["combination_image"] = *req.CombinationImage
	}

	var uploaded *UploadResult
	if image != nil {
		if uploaded, err = s.store.Upload(ctx, image.Data, FolderVariants, image.Filename); err != nil {
			return nil, err
		}
		updates["combination_image"] = uploaded.URL
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(variant).Updates(updates).Error; err != nil {
			if uploaded != nil {
				releaseImage(context.WithoutCancel(ctx), s.store, uploaded.URL)
			}
			return nil, utils.StoreError(err, "Variant", variant.ID)
		}
	}

	if newImage, ok := updates["combination_image"]; ok && newImage != variant.CombinationImage {
		releaseImage(ctx, s.store, variant.CombinationImage)
	}

	return s.load(ctx, variant.ID)
}

// DeleteVariant removes a non-default variant and releases its image.
func (s *VariantService) DeleteVariant(ctx context.Context, rawProductID, rawID string) error {
	product, err := s.findProduct(ctx, rawProductID)
	if err != nil {
		return err
	}
	variant, err := s.findVariant(ctx, product.ID, rawID)
	if err != nil {
		return err
	}
	if product.DefaultVariantID == variant.ID {
		return utils.Validation("Variant %s is the product's default variant; set another default first", variant.ID)
	}

	releaseImage(ctx, s.store, variant.CombinationImage)

	if err := s.db.WithContext(ctx).Delete(variant).Error; err != nil {
		return utils.StoreError(err, "Variant", variant.ID)
	}

	logrus.WithFields(logrus.Fields{
		"product_id": product.ID,
		"variant_id": variant.ID,
	}).Info("Variant deleted")
	return nil
}

// SetDefaultVariant makes one of the product's own variants its default.
func (s *VariantService) SetDefaultVariant(ctx context.Context, rawProductID, rawID string) (*models.Product, error) {
	product, err := s.findProduct(ctx, rawProductID)
	if err != nil {
		return nil, err
	}
	variant, err := s.findVariant(ctx, product.ID, rawID)
	if err != nil {
		return nil, err
	}

	if product.DefaultVariantID != variant.ID {
		if err := s.db.WithContext(ctx).Model(product).Update("default_variant_id", variant.ID).Error; err != nil {
			return nil, utils.StoreError(err, "Product", product.ID)
		}
	}

	var updated models.Product
	err = s.db.WithContext(ctx).
		Preload("DefaultVariant.Design").Preload("DefaultVariant.Fabric").Preload("DefaultVariant.Color").
		First(&updated, "id = ?", product.ID).Error
	if err != nil {
		return nil, utils.StoreError(err, "Product", product.ID)
	}
	return &updated, nil
}
