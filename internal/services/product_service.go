// internal/services/product_service.go
package services

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/config"
	"github.com/javajoker/tailor-backend/internal/database"
	"github.com/javajoker/tailor-backend/internal/models"
	"github.com/javajoker/tailor-backend/internal/query"
	"github.com/javajoker/tailor-backend/internal/utils"
)

var variantOptions = []string{"DefaultVariant.Design", "DefaultVariant.Fabric", "DefaultVariant.Color"}

type ProductService struct {
	db          *gorm.DB
	store       ImageStore
	perPage     int
	sectionSize int
	viewTimeout time.Duration
}

type CreateProductRequest struct {
	ProductName      string  `json:"productName" form:"productName" validate:"required,min=2,max=255"`
	Description      string  `json:"description" form:"description" validate:"required"`
	DesignID         string  `json:"designId" form:"designId" validate:"required"`
	FabricID         string  `json:"fabricId" form:"fabricId" validate:"required"`
	ColorID          string  `json:"colorId" form:"colorId" validate:"required"`
	Price            float64 `json:"price" form:"price" validate:"gt=0"`
	CombinationImage string  `json:"combinationImage" form:"combinationImage" validate:"omitempty,url"`
	IsActive         *bool   `json:"isActive" form:"isActive"`
	IsNewArrival     bool    `json:"isNewArrival" form:"isNewArrival"`
	IsHotDeal        bool    `json:"isHotDeal" form:"isHotDeal"`
	IsTrending       bool    `json:"isTrending" form:"isTrending"`
}

type UpdateProductRequest struct {
	ProductName  *string `json:"productName" validate:"omitempty,min=2,max=255"`
	Description  *string `json:"description" validate:"omitempty,min=1"`
	IsActive     *bool   `json:"isActive"`
	IsNewArrival *bool   `json:"isNewArrival"`
	IsHotDeal    *bool   `json:"isHotDeal"`
	IsTrending   *bool   `json:"isTrending"`
}

// ProductPage is everything the product screen needs in one read.
type ProductPage struct {
	Product     *models.Product  `json:"product"`
	AllVariants []models.Variant `json:"allVariants"`
	Options     ProductOptions   `json:"options"`
}

type ProductOptions struct {
	Designs []models.Design `json:"designs"`
	Fabrics []models.Fabric `json:"fabrics"`
	Colors  []models.Color  `json:"colors"`
}

type HomepageSections struct {
	NewArrivals []models.Product `json:"newArrivals"`
	HotDeals    []models.Product `json:"hotDeals"`
	Trending    []models.Product `json:"trending"`
}

// IntegrityIssue is a product whose default variant does not point back at it.
type IntegrityIssue struct {
	ProductID        string `json:"productId"`
	ProductName      string `json:"productName"`
	DefaultVariantID string `json:"defaultVariantId"`
	Problem          string `json:"problem"`
}

func NewProductService(db *gorm.DB, store ImageStore, cfg config.CatalogConfig) *ProductService {
	return &ProductService{
		db:          db,
		store:       store,
		perPage:     cfg.ProductsPerPage,
		sectionSize: cfg.HomepageSectionSize,
		viewTimeout: 5 * time.Second,
	}
}

// CreateProduct stores the default variant, the product and the variant's
// back-link in one transaction. An uploaded image is released when the
// transaction fails.
func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest, image *ImageUpload) (*models.Product, error) {
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

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	product := &models.Product{
		ProductName:    req.ProductName,
		Slug:           slug.Make(req.ProductName),
		Description:    req.Description,
		RatingsAverage: models.DefaultRatingsAverage,
		IsActive:       isActive,
		IsNewArrival:   req.IsNewArrival,
		IsHotDeal:      req.IsHotDeal,
		IsTrending:     req.IsTrending,
	}

	err = database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		variant := &models.Variant{
			DesignID:         refs.DesignID,
			FabricID:         refs.FabricID,
			ColorID:          refs.ColorID,
			CombinationImage: imageURL,
			Price:            req.Price,
		}
		if err := tx.Create(variant).Error; err != nil {
			return err
		}

		product.DefaultVariantID = variant.ID
		if err := tx.Omit("DefaultVariant").Create(product).Error; err != nil {
			return err
		}

		return tx.Model(variant).Update("product_id", product.ID).Error
	})
	if err != nil {
		if uploaded != nil {
			releaseImage(context.WithoutCancel(ctx), s.store, uploaded.URL)
		}
		return nil, utils.StoreError(err, "Product", req.ProductName)
	}

	logrus.WithFields(logrus.Fields{
		"product_id": product.ID,
		"variant_id": product.DefaultVariantID,
	}).Info("Product created")

	return s.loadProduct(ctx, product.ID)
}

// GetProduct returns the product with its default variant and options. The
// view counter is bumped in the background.
func (s *ProductService) GetProduct(ctx context.Context, rawID string) (*models.Product, error) {
	id, err := parseID("Product", rawID)
	if err != nil {
		return nil, err
	}
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	go s.incrementViews(id)

	return product, nil
}

func (s *ProductService) incrementViews(id uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), s.viewTimeout)
	defer cancel()

	err := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
	if err != nil {
		logrus.WithError(err).WithField("product_id", id).Warn("Failed to increment product views")
	}
}

func (s *ProductService) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	db := s.db.WithContext(ctx)
	for _, p := range variantOptions {
		db = db.Preload(p)
	}
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		return nil, utils.StoreError(err, "Product", id)
	}
	return &product, nil
}

func (s *ProductService) GetProductPage(ctx context.Context, rawID string) (*ProductPage, error) {
	id, err := parseID("Product", rawID)
	if err != nil {
		return nil, err
	}
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, utils.NotFound("Product", id)
	}

	variants := []models.Variant{}
	err = s.db.WithContext(ctx).
		Preload("Design").Preload("Fabric").Preload("Color").
		Where("product_id = ?", id).
		Order("created_at ASC").
		Find(&variants).Error
	if err != nil {
		return nil, utils.StoreError(err, "Variant", id)
	}
	if len(variants) == 0 {
		return nil, utils.NotFound("Variants for product", id)
	}

	var designIDs, fabricIDs, colorIDs []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, v := range variants {
		for _, ref := range []struct {
			id   uuid.UUID
			dest *[]uuid.UUID
		}{{v.DesignID, &designIDs}, {v.FabricID, &fabricIDs}, {v.ColorID, &colorIDs}} {
			if !seen[ref.id] {
				seen[ref.id] = true
				*ref.dest = append(*ref.dest, ref.id)
			}
		}
	}

	page := &ProductPage{
		Product:     product,
		AllVariants: variants,
		Options: ProductOptions{
			Designs: []models.Design{},
			Fabrics: []models.Fabric{},
			Colors:  []models.Color{},
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(gctx).Where("id IN ?", designIDs).Order("created_at ASC").Find(&page.Options.Designs).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Where("id IN ?", fabricIDs).Order("created_at ASC").Find(&page.Options.Fabrics).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Where("id IN ?", colorIDs).Order("created_at ASC").Find(&page.Options.Colors).Error
	})
	if err := g.Wait(); err != nil {
		return nil, utils.Unexpected(err)
	}

	return page, nil
}

// ListProducts answers the storefront listing: active products only, with
// search, filters, sort and pagination read from the query string.
func (s *ProductService) ListProducts(ctx context.Context, values url.Values) (*utils.PageResult, error) {
	params, err := query.Parse(values)
	if err != nil {
		return nil, err
	}

	q := query.New(s.db, query.Products, params).
		Where("products.is_active = ?", true).
		Search().
		Filter(ctx).
		Sort()

	total, err := q.Count(ctx)
	if err != nil {
		return nil, err
	}

	products := []models.Product{}
	if err := q.Paginate(s.perPage).Find(ctx, &products, variantOptions...); err != nil {
		return nil, err
	}

	return &utils.PageResult{
		Data:       products,
		Count:      len(products),
		TotalCount: total,
		ResPerPage: q.PerPage(),
	}, nil
}

func (s *ProductService) HomepageSections(ctx context.Context) (*HomepageSections, error) {
	sections := &HomepageSections{
		NewArrivals: []models.Product{},
		HotDeals:    []models.Product{},
		Trending:    []models.Product{},
	}

	base := func(ctx context.Context) *gorm.DB {
		return s.db.WithContext(ctx).
			Preload("DefaultVariant").
			Where("is_active = ?", true).
			Limit(s.sectionSize)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return base(gctx).Order("created_at DESC").Find(&sections.NewArrivals).Error
	})
	g.Go(func() error {
		return base(gctx).Where("is_hot_deal = ?", true).Order("created_at DESC").Find(&sections.HotDeals).Error
	})
	g.Go(func() error {
		return base(gctx).Order("view_count DESC").Order("created_at DESC").Find(&sections.Trending).Error
	})
	if err := g.Wait(); err != nil {
		return nil, utils.Unexpected(err)
	}

	return sections, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, rawID string, req *UpdateProductRequest) (*models.Product, error) {
	id, err := parseID("Product", rawID)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, utils.StoreError(err, "Product", id)
	}

	updates := make(map[string]interface{})
	if req.ProductName != nil {
		updates["product_name"] = *req.ProductName
		updates["slug"] = slug.Make(*req.ProductName)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsNewArrival != nil {
		updates["is_new_arrival"] = *req.IsNewArrival
	}
	if req.IsHotDeal != nil {
		updates["is_hot_deal"] = *req.IsHotDeal
	}
	if req.IsTrending != nil {
		updates["is_trending"] = *req.IsTrending
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&product).Updates(updates).Error; err != nil {
			return nil, utils.StoreError(err, "Product", id)
		}
	}

	return s.loadProduct(ctx, id)
}

// DeleteProduct releases the images of every variant first, then removes
// the variants, the product's reviews and wishlist entries, and the product.
// Image failures never block the row deletes.
func (s *ProductService) DeleteProduct(ctx context.Context, rawID string) error {
	id, err := parseID("Product", rawID)
	if err != nil {
		return err
	}

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return utils.StoreError(err, "Product", id)
	}

	var variants []models.Variant
	err = s.db.WithContext(ctx).
		Where("product_id = ? OR id = ?", id, product.DefaultVariantID).
		Find(&variants).Error
	if err != nil {
		return utils.StoreError(err, "Variant", id)
	}

	for _, v := range variants {
		releaseImage(ctx, s.store, v.CombinationImage)
	}

	err = database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ? OR id = ?", id, product.DefaultVariantID).Delete(&models.Variant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.WishlistItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		return utils.StoreError(err, "Product", id)
	}

	logrus.WithFields(logrus.Fields{
		"product_id": id,
		"variants":   len(variants),
	}).Info("Product deleted")
	return nil
}

type integrityRow struct {
	ProductID        string
	ProductName      string
	DefaultVariantID string
	VariantID        *string
	VariantProductID *string
}

// CheckIntegrity lists products whose default variant is missing or does not
// reference them back.
func (s *ProductService) CheckIntegrity(ctx context.Context) ([]IntegrityIssue, error) {
	var rows []integrityRow
	err := s.db.WithContext(ctx).
		Table("products").
		Select("products.id AS product_id, products.product_name, products.default_variant_id, v.id AS variant_id, v.product_id AS variant_product_id").
		Joins("LEFT JOIN variants AS v ON v.id = products.default_variant_id").
		Where("v.id IS NULL OR v.product_id IS NULL OR v.product_id <> products.id").
		Order("products.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, utils.Unexpected(err)
	}

	issues := make([]IntegrityIssue, 0, len(rows))
	for _, r := range rows {
		problem := "default variant does not reference the product"
		switch {
		case r.VariantID == nil:
			problem = "default variant is missing"
		case r.VariantProductID == nil:
			problem = "default variant has no product"
		}
		issues = append(issues, IntegrityIssue{
			ProductID:        r.ProductID,
			ProductName:      r.ProductName,
			DefaultVariantID: r.DefaultVariantID,
			Problem:          problem,
		})
	}
	return issues, nil
}

// Relink points the default variant back at its product. Running it on a
// consistent product changes nothing.
func (s *ProductService) Relink(ctx context.Context, rawID string) (*models.Product, error) {
	id, err := parseID("Product", rawID)
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, utils.StoreError(err, "Product", id)
	}

	var variant models.Variant
	if err := s.db.WithContext(ctx).First(&variant, "id = ?", product.DefaultVariantID).Error; err != nil {
		return nil, utils.StoreError(err, "Variant", product.DefaultVariantID)
	}

	if !variant.BelongsTo(id) {
		if variant.ProductID != nil {
			return nil, utils.Validation("Variant %s belongs to product %s", variant.ID, *variant.ProductID)
		}
		if err := s.db.WithContext(ctx).Model(&variant).Update("product_id", id).Error; err != nil {
			return nil, utils.StoreError(err, "Variant", variant.ID)
		}
		logrus.WithField("product_id", id).Info("Default variant relinked")
	}

	return s.loadProduct(ctx, id)
}
