// internal/services/wishlist_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/tailor-backend/internal/models"
	"github.com/javajoker/tailor-backend/internal/utils"
)

func TestWishlistToggle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fixture := seedCatalog(t, db)
	products := NewProductService(db, newMemoryStore(), testCatalogConfig())
	wishlist := NewWishlistService(db, 10)

	product, err := products.CreateProduct(ctx, fixture.productRequest("Waistcoat", 150), pngUpload("waistcoat"))
	require.NoError(t, err)
	user := createUser(t, db, "wish@example.com")
	req := &ToggleWishlistRequest{ProductID: product.ID.String()}

	action, err := wishlist.Toggle(ctx, user.ID, req)
	require.NoError(t, err)
	assert.Equal(t, WishlistAdded, action)

	ids, err := wishlist.ProductIDs(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{product.ID.String()}, ids)

	page, err := wishlist.Products(ctx, user.ID, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalCount)
	listed := page.Data.([]models.Product)
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].DefaultVariant)
	assert.NotNil(t, listed[0].DefaultVariant.Color)

	action, err = wishlist.Toggle(ctx, user.ID, req)
	require.NoError(t, err)
	assert.Equal(t, WishlistRemoved, action)

	ids, err = wishlist.ProductIDs(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestWishlistSkipsInactiveProducts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fixture := seedCatalog(t, db)
	products := NewProductService(db, newMemoryStore(), testCatalogConfig())
	wishlist := NewWishlistService(db, 10)
	user := createUser(t, db, "inactive@example.com")

	product, err := products.CreateProduct(ctx, fixture.productRequest("Cape", 90), pngUpload("cape"))
	require.NoError(t, err)
	_, err = wishlist.Toggle(ctx, user.ID, &ToggleWishlistRequest{ProductID: product.ID.String()})
	require.NoError(t, err)

	off := false
	_, err = products.UpdateProduct(ctx, product.ID.String(), &UpdateProductRequest{IsActive: &off})
	require.NoError(t, err)

	page, err := wishlist.Products(ctx, user.ID, 1)
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)
	assert.Empty(t, page.Data)
}

func TestWishlistUnknownProduct(t *testing.T) {
	db := openTestDB(t)
	user := createUser(t, db, "nobody@example.com")
	wishlist := NewWishlistService(db, 10)

	_, err := wishlist.Toggle(context.Background(), user.ID, &ToggleWishlistRequest{ProductID: randomID()})
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	_, err = wishlist.Toggle(context.Background(), user.ID, &ToggleWishlistRequest{})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}
