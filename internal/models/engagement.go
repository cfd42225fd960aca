// internal/models/engagement.go
package models

import (
	"github.com/google/uuid"
)

type WishlistItem struct {
	BaseModel
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_product;index"`
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_product"`
}

type Notification struct {
	BaseModel
	UserID  uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	Message string    `json:"message" gorm:"type:text;not null"`
	Link    string    `json:"link" gorm:"size:1024;not null"`
	IsRead  bool      `json:"isRead" gorm:"default:false;not null;index"`
}

// TryOnHistory rows are append-only.
type TryOnHistory struct {
	BaseModel
	UserID         uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	VariantID      uuid.UUID `json:"variantId" gorm:"type:uuid;not null"`
	UserImageURL   string    `json:"userImageUrl" gorm:"size:1024;not null"`
	ResultImageURL string    `json:"resultImageUrl" gorm:"size:1024;not null"`

	// Relationships
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Variant *Variant `json:"variant,omitempty" gorm:"foreignKey:VariantID"`
}

func (TryOnHistory) TableName() string {
	return "try_on_histories"
}
