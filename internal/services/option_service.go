// internal/services/option_service.go
package services

import (
	"context"
	"net/url"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/models"
	"github.com/javajoker/tailor-backend/internal/query"
	"github.com/javajoker/tailor-backend/internal/utils"
)

// OptionService manages the design, fabric and color catalogs.
type OptionService struct {
	db    *gorm.DB
	store ImageStore
}

type DesignRequest struct {
	DesignName  string `json:"designName" form:"designName" validate:"omitempty,max=255"`
	DesignImage string `json:"designImage" form:"designImage" validate:"omitempty,url"`
}

type FabricRequest struct {
	FabricName        string `json:"fabricName" form:"fabricName" validate:"omitempty,max=255"`
	FabricSwatchImage string `json:"fabricSwatchImage" form:"fabricSwatchImage" validate:"omitempty,url"`
}

type ColorRequest struct {
	ColorName string `json:"colorName" form:"colorName" validate:"omitempty,max=255"`
	ColorHex  string `json:"colorHex" form:"colorHex" validate:"omitempty,hexcolor"`
}

func NewOptionService(db *gorm.DB, store ImageStore) *OptionService {
	return &OptionService{db: db, store: store}
}

// listOptions returns every row of the collection matching the name search
// and filters in values, in the requested order. Option lists are not paged.
func listOptions[T any](ctx context.Context, db *gorm.DB, c *query.Collection, values url.Values) ([]T, error) {
	params, err := query.Parse(values)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := query.New(db, c, params).Search().Filter(ctx).Sort().Find(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func findOption[T any](ctx context.Context, db *gorm.DB, entity, rawID string) (*T, uuid.UUID, error) {
	id, err := parseID(entity, rawID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	var row T
	if err := db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, id, utils.StoreError(err, entity, id)
	}
	return &row, id, nil
}

// ensureUnused refuses to remove an option that variants still reference.
func (s *OptionService) ensureUnused(ctx context.Context, entity, column string, id uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Variant{}).Where(column+" = ?", id).Count(&count).Error; err != nil {
		return utils.Unexpected(err)
	}
	if count > 0 {
		return utils.Validation("%s %s is used by %d variant(s)", entity, id, count)
	}
	return nil
}

// imageFor uploads image when present and otherwise returns fallback.
func (s *OptionService) imageFor(ctx context.Context, image *ImageUpload, folder, fallback string) (string, *UploadResult, error) {
	if image == nil {
		return fallback, nil, nil
	}
	uploaded, err := s.store.Upload(ctx, image.Data, folder, image.Filename)
	if err != nil {
		return "", nil, err
	}
	return uploaded.URL, uploaded, nil
}

// finishUpload completes a write that may have changed an image column from
// replaced to next: on failure a fresh upload is released, on success the
// replaced image is, whether next was uploaded or given as a URL.
func finishUpload(ctx context.Context, store ImageStore, err error, uploaded *UploadResult, replaced, next string) {
	if err != nil {
		if uploaded != nil {
			releaseImage(context.WithoutCancel(ctx), store, uploaded.URL)
		}
		return
	}
	if next != "" && replaced != next {
		releaseImage(ctx, store, replaced)
	}
}

// Designs

func (s *OptionService) ListDesigns(ctx context.Context, values url.Values) ([]models.Design, error) {
	return listOptions[models.Design](ctx, s.db, query.Designs, values)
}

func (s *OptionService) CreateDesign(ctx context.Context, req *DesignRequest, image *ImageUpload) (*models.Design, error) {
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}
	if req.DesignName == "" {
		return nil, utils.Validation("Design name is required")
	}
	if image == nil && req.DesignImage == "" {
		return nil, utils.Validation("Design image is required")
	}

	imageURL, uploaded, err := s.imageFor(ctx, image, FolderDesigns, req.DesignImage)
	if err != nil {
		return nil, err
	}
	design := &models.Design{DesignName: req.DesignName, DesignImage: imageURL}
	err = s.db.WithContext(ctx).Create(design).Error
	finishUpload(ctx, s.store, err, uploaded, "", imageURL)
	if err != nil {
		return nil, utils.StoreError(err, "Design", req.DesignName)
	}
	return design, nil
}

func (s *OptionService) UpdateDesign(ctx context.Context, rawID string, req *DesignRequest, image *ImageUpload) (*models.Design, error) {
	design, id, err := findOption[models.Design](ctx, s.db, "Design", rawID)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.DesignName != "" {
		updates["design_name"] = req.DesignName
	}
	imageURL, uploaded, err := s.imageFor(ctx, image, FolderDesigns, req.DesignImage)
	if err != nil {
		return nil, err
	}
	if imageURL != "" {
		updates["design_image"] = imageURL
	}

	old := design.DesignImage
	if len(updates) > 0 {
		err = s.db.WithContext(ctx).Model(design).Updates(updates).Error
		finishUpload(ctx, s.store, err, uploaded, old, imageURL)
		if err != nil {
			return nil, utils.StoreError(err, "Design", id)
		}
	}
	return s.reloadDesign(ctx, id)
}

func (s *OptionService) DeleteDesign(ctx context.Context, rawID string) error {
	design, id, err := findOption[models.Design](ctx, s.db, "Design", rawID)
	if err != nil {
		return err
	}
	if err := s.ensureUnused(ctx, "Design", "design_id", id); err != nil {
		return err
	}
	releaseImage(ctx, s.store, design.DesignImage)
	return utils.StoreError(s.db.WithContext(ctx).Delete(design).Error, "Design", id)
}

// Fabrics

func (s *OptionService) ListFabrics(ctx context.Context, values url.Values) ([]models.Fabric, error) {
	return listOptions[models.Fabric](ctx, s.db, query.Fabrics, values)
}

func (s *OptionService) CreateFabric(ctx context.Context, req *FabricRequest, image *ImageUpload) (*models.Fabric, error) {
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}
	if req.FabricName == "" {
		return nil, utils.Validation("Fabric name is required")
	}
	if image == nil && req.FabricSwatchImage == "" {
		return nil, utils.Validation("Fabric swatch image is required")
	}

	imageURL, uploaded, err := s.imageFor(ctx, image, FolderFabrics, req.FabricSwatchImage)
	if err != nil {
		return nil, err
	}
	fabric := &models.Fabric{FabricName: req.FabricName, FabricSwatchImage: imageURL}
	err = s.db.WithContext(ctx).Create(fabric).Error
	finishUpload(ctx, s.store, err, uploaded, "", imageURL)
	if err != nil {
		return nil, utils.StoreError(err, "Fabric", req.FabricName)
	}
	return fabric, nil
}

func (s *OptionService) UpdateFabric(ctx context.Context, rawID string, req *FabricRequest, image *ImageUpload) (*models.Fabric, error) {
	fabric, id, err := findOption[models.Fabric](ctx, s.db, "Fabric", rawID)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.FabricName != "" {
		updates["fabric_name"] = req.FabricName
	}
	imageURL, uploaded, err := s.imageFor(ctx, image, FolderFabrics, req.FabricSwatchImage)
	if err != nil {
		return nil, err
	}
	if imageURL != "" {
		updates["fabric_swatch_image"] = imageURL
	}

	old := fabric.FabricSwatchImage
	if len(updates) > 0 {
		err = s.db.WithContext(ctx).Model(fabric).Updates(updates).Error
		finishUpload(ctx, s.store, err, uploaded, old, imageURL)
		if err != nil {
			return nil, utils.StoreError(err, "Fabric", id)
		}
	}
	return s.reloadFabric(ctx, id)
}

func (s *OptionService) DeleteFabric(ctx context.Context, rawID string) error {
	fabric, id, err := findOption[models.Fabric](ctx, s.db, "Fabric", rawID)
	if err != nil {
		return err
	}
	if err := s.ensureUnused(ctx, "Fabric", "fabric_id", id); err != nil {
		return err
	}
	releaseImage(ctx, s.store, fabric.FabricSwatchImage)
	return utils.StoreError(s.db.WithContext(ctx).Delete(fabric).Error, "Fabric", id)
}

// Colors

func (s *OptionService) ListColors(ctx context.Context, values url.Values) ([]models.Color, error) {
	return listOptions[models.Color](ctx, s.db, query.Colors, values)
}

func (s *OptionService) CreateColor(ctx context.Context, req *ColorRequest) (*models.Color, error) {
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}
	if req.ColorName == "" || req.ColorHex == "" {
		return nil, utils.Validation("Color name and hex code are both required.")
	}

	color := &models.Color{ColorName: req.ColorName, ColorHex: req.ColorHex}
	if err := s.db.WithContext(ctx).Create(color).Error; err != nil {
		return nil, utils.StoreError(err, "Color", req.ColorName)
	}
	return color, nil
}

func (s *OptionService) UpdateColor(ctx context.Context, rawID string, req *ColorRequest) (*models.Color, error) {
	color, id, err := findOption[models.Color](ctx, s.db, "Color", rawID)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.ColorName != "" {
		updates["color_name"] = req.ColorName
	}
	if req.ColorHex != "" {
		updates["color_hex"] = req.ColorHex
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(color).Updates(updates).Error; err != nil {
			return nil, utils.StoreError(err, "Color", id)
		}
	}
	return s.reloadColor(ctx, id)
}

func (s *OptionService) DeleteColor(ctx context.Context, rawID string) error {
	color, id, err := findOption[models.Color](ctx, s.db, "Color", rawID)
	if err != nil {
		return err
	}
	if err := s.ensureUnused(ctx, "Color", "color_id", id); err != nil {
		return err
	}
	return utils.StoreError(s.db.WithContext(ctx).Delete(color).Error, "Color", id)
}

func (s *OptionService) reloadDesign(ctx context.Context, id uuid.UUID) (*models.Design, error) {
	row, _, err := findOption[models.Design](ctx, s.db, "Design", id.String())
	return row, err
}

func (s *OptionService) reloadFabric(ctx context.Context, id uuid.UUID) (*models.Fabric, error) {
	row, _, err := findOption[models.Fabric](ctx, s.db, "Fabric", id.String())
	return row, err
}

func (s *OptionService) reloadColor(ctx context.Context, id uuid.UUID) (*models.Color, error) {
	row, _, err := findOption[models.Color](ctx, s.db, "Color", id.String())
	return row, err
}
