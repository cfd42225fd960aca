// internal/services/wishlist_service.go
package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/models"
	"github.com/javajoker/tailor-backend/internal/utils"
)

type WishlistAction string

const (
	WishlistAdded   WishlistAction = "added"
	WishlistRemoved WishlistAction = "removed"
)

type WishlistService struct {
	db      *gorm.DB
	perPage int
}

type ToggleWishlistRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

func NewWishlistService(db *gorm.DB, perPage int) *WishlistService {
	return &WishlistService{db: db, perPage: perPage}
}

// Toggle adds the product to the user's wishlist, or removes it when it is
// already there.
func (s *WishlistService) Toggle(ctx context.Context, userID uuid.UUID, req *ToggleWishlistRequest) (WishlistAction, error) {
	if err := utils.ValidateRequest(req); err != nil {
		return "", err
	}
	productID, err := parseID("Product", req.ProductID)
	if err != nil {
		return "", err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return "", utils.Unexpected(err)
	}
	if count == 0 {
		return "", utils.NotFound("Product", productID)
	}

	removed := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{})
	if removed.Error != nil {
		return "", utils.Unexpected(removed.Error)
	}
	if removed.RowsAffected > 0 {
		return WishlistRemoved, nil
	}

	item := &models.WishlistItem{UserID: userID, ProductID: productID}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		// a concurrent toggle added it first
		if utils.IsDuplicateKey(err) {
			return WishlistAdded, nil
		}
		return "", utils.Unexpected(err)
	}
	return WishlistAdded, nil
}

func (s *WishlistService) ProductIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	ids := []string{}
	err := s.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, utils.Unexpected(err)
	}
	return ids, nil
}

// Products pages through the user's wishlisted active products, most
// recently added first.
func (s *WishlistService) Products(ctx context.Context, userID uuid.UUID, page int) (*utils.PageResult, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN wishlist_items AS w ON w.product_id = products.id").
			Where("w.user_id = ? AND products.is_active = ?", userID, true)
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, utils.Unexpected(err)
	}

	products := []models.Product{}
	err := s.db.WithContext(ctx).
		Scopes(scope).
		Select("products.*").
		Preload("DefaultVariant.Design").Preload("DefaultVariant.Fabric").Preload("DefaultVariant.Color").
		Order("w.created_at DESC").
		Offset(utils.Offset(page, s.perPage)).
		Limit(s.perPage).
		Find(&products).Error
	if err != nil {
		return nil, utils.Unexpected(err)
	}

	return &utils.PageResult{
		Data:       products,
		Count:      len(products),
		TotalCount: total,
		ResPerPage: s.perPage,
	}, nil
}
