// internal/models/product.go
package models

import (
	"math"

	"github.com/google/uuid"
)

type Product struct {
	BaseModel
	ProductName      string    `json:"productName" gorm:"size:255;not null;uniqueIndex"`
	Slug             string    `json:"slug" gorm:"size:255;index"`
	Description      string    `json:"description" gorm:"type:text;not null"`
	DefaultVariantID uuid.UUID `json:"defaultVariantId" gorm:"type:uuid;index"`
	RatingsAverage   float64   `json:"ratingsAverage" gorm:"default:4.5;not null"`
	RatingsQuantity  int64     `json:"ratingsQuantity" gorm:"default:0;not null"`
	IsActive         bool      `json:"isActive" gorm:"not null;index"`
	IsNewArrival     bool      `json:"isNewArrival" gorm:"default:false;not null"`
	IsHotDeal        bool      `json:"isHotDeal" gorm:"default:false;not null"`
	IsTrending       bool      `json:"isTrending" gorm:"default:false;not null"`
	ViewCount        int64     `json:"viewCount" gorm:"default:0;not null"`

	// Relationships
	DefaultVariant *Variant `json:"defaultVariant,omitempty" gorm:"foreignKey:DefaultVariantID"`
}

// RoundRating keeps an aggregate inside [1,5] with one decimal place.
func RoundRating(avg float64) float64 {
	rounded := math.Round(avg*10) / 10
	if rounded < MinRating {
		return MinRating
	}
	if rounded > MaxRating {
		return MaxRating
	}
	return rounded
}
