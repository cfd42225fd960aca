// internal/services/admin_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/tailor-backend/internal/models"
)

func TestDashboardStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fx := seedCatalog(t, db)

	products := NewProductService(db, newMemoryStore(), testCatalogConfig())
	shirt, err := products.CreateProduct(ctx, fx.productRequest("Oxford Shirt", 80), pngUpload("oxford"))
	require.NoError(t, err)
	_, err = products.CreateProduct(ctx, fx.productRequest("Chinos", 60), pngUpload("chinos"))
	require.NoError(t, err)

	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")

	reviews := NewReviewService(db, NewRatingAggregator(db), 10)
	_, err = reviews.CreateReview(ctx, alice.ID, shirt.ID.String(), &CreateReviewRequest{Rating: 5, Comment: "Great"})
	require.NoError(t, err)
	_, err = reviews.CreateReview(ctx, bob.ID, shirt.ID.String(), &CreateReviewRequest{Rating: 2, Comment: "Tight"})
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.Notification{UserID: alice.ID, Message: "Hi", Link: "/"}).Error)

	admin := NewAdminService(db)
	admin.now = func() time.Time { return time.Now().Add(time.Minute) }

	stats, err := admin.GetDashboardStats(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.TotalUsers)
	assert.EqualValues(t, 2, stats.VerifiedUsers)
	assert.EqualValues(t, 2, stats.NewUsersThisMonth)
	assert.EqualValues(t, 2, stats.TotalProducts)
	assert.EqualValues(t, 2, stats.ActiveProducts)
	assert.EqualValues(t, 2, stats.TotalVariants)
	assert.EqualValues(t, 2, stats.TotalReviews)
	assert.Equal(t, 3.5, stats.AverageRating)
	assert.EqualValues(t, 1, stats.UnreadNotifications)
	require.NotEmpty(t, stats.TopRated)
	assert.Equal(t, "Chinos", stats.TopRated[0].ProductName)
}
