// internal/services/review_service.go
package services

import (
	"context"
	"net/url"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/models"
	"github.com/javajoker/tailor-backend/internal/query"
	"github.com/javajoker/tailor-backend/internal/utils"
)

// RatingAggregator keeps Product.RatingsAverage and RatingsQuantity equal to
// the mean and count of the product's reviews.
type RatingAggregator struct {
	db *gorm.DB
}

func NewRatingAggregator(db *gorm.DB) *RatingAggregator {
	return &RatingAggregator{db: db}
}

type ratingStats struct {
	Quantity int64
	Average  *float64
}

// Recalculate recomputes the aggregate of one product from its reviews. With
// no reviews left the product goes back to the default rating.
func (a *RatingAggregator) Recalculate(ctx context.Context, productID uuid.UUID) error {
	var stats ratingStats
	err := a.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COUNT(*) AS quantity, AVG(rating) AS average").
		Where("product_id = ?", productID).
		Scan(&stats).Error
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"ratings_quantity": int64(0),
		"ratings_average":  models.DefaultRatingsAverage,
	}
	if stats.Quantity > 0 && stats.Average != nil {
		updates["ratings_quantity"] = stats.Quantity
		updates["ratings_average"] = models.RoundRating(*stats.Average)
	}

	return a.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumns(updates).Error
}

type ReviewService struct {
	db         *gorm.DB
	aggregator *RatingAggregator
	perPage    int
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,min=1"`
}

func NewReviewService(db *gorm.DB, aggregator *RatingAggregator, perPage int) *ReviewService {
	return &ReviewService{db: db, aggregator: aggregator, perPage: perPage}
}

func (s *ReviewService) refresh(ctx context.Context, productID uuid.UUID) {
	refreshRating(ctx, s.aggregator, productID)
}

// refreshRating runs the aggregator after a review write. A failure leaves
// the product's rating stale and is only logged.
func refreshRating(ctx context.Context, aggregator *RatingAggregator, productID uuid.UUID) {
	if err := aggregator.Recalculate(context.WithoutCancel(ctx), productID); err != nil {
		logrus.WithError(err).WithField("product_id", productID).Error("Failed to recalculate product rating")
	}
}

func (s *ReviewService) productExists(ctx context.Context, rawID string) (uuid.UUID, error) {
	id, err := parseID("Product", rawID)
	if err != nil {
		return uuid.Nil, err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return uuid.Nil, utils.Unexpected(err)
	}
	if count == 0 {
		return uuid.Nil, utils.NotFound("Product", id)
	}
	return id, nil
}

func (s *ReviewService) ListReviews(ctx context.Context, rawProductID string, values url.Values) (*utils.PageResult, error) {
	productID, err := s.productExists(ctx, rawProductID)
	if err != nil {
		return nil, err
	}
	params, err := query.Parse(values)
	if err != nil {
		return nil, err
	}

	q := query.New(s.db, query.Reviews, params).
		Where("reviews.product_id = ?", productID).
		Filter(ctx).
		Sort().
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		})

	total, err := q.Count(ctx)
	if err != nil {
		return nil, err
	}

	reviews := []models.Review{}
	if err := q.Paginate(s.perPage).Find(ctx, &reviews); err != nil {
		return nil, err
	}

	return &utils.PageResult{
		Data:       reviews,
		Count:      len(reviews),
		TotalCount: total,
		ResPerPage: s.perPage,
	}, nil
}

// CreateReview adds the user's review of a product. The lookup for an
// existing review is a fast path; the unique index decides.
func (s *ReviewService) CreateReview(ctx context.Context, userID uuid.UUID, rawProductID string, req *CreateReviewRequest) (*models.Review, error) {
	productID, err := s.productExists(ctx, rawProductID)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}

	var existing int64
	err = s.db.WithContext(ctx).Model(&models.Review{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&existing).Error
	if err != nil {
		return nil, utils.Unexpected(err)
	}
	if existing > 0 {
		return nil, utils.Validation("You have already submitted a review for this product.")
	}

	review := &models.Review{
		Rating:    req.Rating,
		Comment:   req.Comment,
		ProductID: productID,
		UserID:    userID,
	}
	if err := s.db.WithContext(ctx).Create(review).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, utils.Validation("You have already submitted a review for this product.")
		}
		return nil, utils.Unexpected(err)
	}

	s.refresh(ctx, productID)
	return review, nil
}

func (s *ReviewService) ownedReview(ctx context.Context, userID uuid.UUID, rawID, action string) (*models.Review, error) {
	id, err := parseID("Review", rawID)
	if err != nil {
		return nil, err
	}
	var review models.Review
	if err := s.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, utils.StoreError(err, "Review", id)
	}
	if review.UserID != userID {
		return nil, utils.Forbidden("You are not authorized to " + action + " this review.")
	}
	return &review, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, userID uuid.UUID, rawID string, req *UpdateReviewRequest) (*models.Review, error) {
	review, err := s.ownedReview(ctx, userID, rawID, "update")
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}
	if err := s.db.WithContext(ctx).Save(review).Error; err != nil {
		return nil, utils.StoreError(err, "Review", review.ID)
	}

	s.refresh(ctx, review.ProductID)
	return review, nil
}

// DeleteReview removes the user's review; the product id is read from the
// row before it is gone.
func (s *ReviewService) DeleteReview(ctx context.Context, userID uuid.UUID, rawID string) error {
	review, err := s.ownedReview(ctx, userID, rawID, "delete")
	if err != nil {
		return err
	}
	productID := review.ProductID

	if err := s.db.WithContext(ctx).Delete(review).Error; err != nil {
		return utils.StoreError(err, "Review", review.ID)
	}

	s.refresh(ctx, productID)
	return nil
}
