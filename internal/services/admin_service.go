// internal/services/admin_service.go
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/models"
	"github.com/javajoker/tailor-backend/internal/utils"
)

const dashboardTopProducts = 5

type AdminService struct {
	db  *gorm.DB
	now func() time.Time
}

type AdminDashboardStats struct {
	TotalUsers          int64            `json:"totalUsers"`
	VerifiedUsers       int64            `json:"verifiedUsers"`
	NewUsersThisMonth   int64            `json:"newUsersThisMonth"`
	UserGrowth          float64          `json:"userGrowth"`
	TotalProducts       int64            `json:"totalProducts"`
	ActiveProducts      int64            `json:"activeProducts"`
	TotalVariants       int64            `json:"totalVariants"`
	TotalReviews        int64            `json:"totalReviews"`
	AverageRating       float64          `json:"averageRating"`
	WishlistItems       int64            `json:"wishlistItems"`
	TryOnsThisMonth     int64            `json:"tryOnsThisMonth"`
	UnreadNotifications int64            `json:"unreadNotifications"`
	MostViewed          []models.Product `json:"mostViewed"`
	TopRated            []models.Product `json:"topRated"`
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db, now: time.Now}
}

// counter is one COUNT(*) feeding a dashboard field.
type counter struct {
	model interface{}
	where string
	args  []interface{}
	dest  *int64
}

// Dashboard Statistics
func (s *AdminService) GetDashboardStats(ctx context.Context) (*AdminDashboardStats, error) {
	stats := &AdminDashboardStats{}
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	var lastMonthUsers int64
	counters := []counter{
		{&models.User{}, "", nil, &stats.TotalUsers},
		{&models.User{}, "is_verified = ?", []interface{}{true}, &stats.VerifiedUsers},
		{&models.User{}, "created_at >= ?", []interface{}{monthStart}, &stats.NewUsersThisMonth},
		{&models.User{}, "created_at >= ? AND created_at < ?", []interface{}{lastMonthStart, monthStart}, &lastMonthUsers},
		{&models.Product{}, "", nil, &stats.TotalProducts},
		{&models.Product{}, "is_active = ?", []interface{}{true}, &stats.ActiveProducts},
		{&models.Variant{}, "", nil, &stats.TotalVariants},
		{&models.Review{}, "", nil, &stats.TotalReviews},
		{&models.WishlistItem{}, "", nil, &stats.WishlistItems},
		{&models.TryOnHistory{}, "created_at >= ?", []interface{}{monthStart}, &stats.TryOnsThisMonth},
		{&models.Notification{}, "is_read = ?", []interface{}{false}, &stats.UnreadNotifications},
	}
	for _, c := range counters {
		q := s.db.WithContext(ctx).Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, utils.Unexpected(err)
		}
	}

	if stats.TotalReviews > 0 {
		var avg float64
		if err := s.db.WithContext(ctx).Model(&models.Review{}).
			Select("COALESCE(AVG(rating), 0)").Scan(&avg).Error; err != nil {
			return nil, utils.Unexpected(err)
		}
		stats.AverageRating = models.RoundRating(avg)
	}

	// Growth calculations
	if lastMonthUsers > 0 {
		stats.UserGrowth = float64(stats.NewUsersThisMonth-lastMonthUsers) / float64(lastMonthUsers) * 100
	}

	var err error
	if stats.MostViewed, err = s.topProducts(ctx, "view_count DESC"); err != nil {
		return nil, err
	}
	if stats.TopRated, err = s.topProducts(ctx, "ratings_average DESC, ratings_quantity DESC"); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *AdminService) topProducts(ctx context.Context, order string) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order(order).
		Limit(dashboardTopProducts).
		Find(&products).Error
	if err != nil {
		return nil, utils.Unexpected(err)
	}
	return products, nil
}
