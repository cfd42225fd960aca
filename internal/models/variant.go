// internal/models/variant.go
package models

import (
	"github.com/google/uuid"
)

// Variant is one Design+Fabric+Color combination of a product. ProductID is
// empty only between the first two steps of product creation.
type Variant struct {
	BaseModel
	ProductID        *uuid.UUID `json:"productId" gorm:"type:uuid;index"`
	DesignID         uuid.UUID  `json:"designId" gorm:"type:uuid;not null;index"`
	FabricID         uuid.UUID  `json:"fabricId" gorm:"type:uuid;not null;index"`
	ColorID          uuid.UUID  `json:"colorId" gorm:"type:uuid;not null;index"`
	CombinationImage string     `json:"combinationImage" gorm:"size:1024;not null"`
	Price            float64    `json:"price" gorm:"type:decimal(10,2);not null;index"`

	// Relationships
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Design  *Design  `json:"design,omitempty" gorm:"foreignKey:DesignID"`
	Fabric  *Fabric  `json:"fabric,omitempty" gorm:"foreignKey:FabricID"`
	Color   *Color   `json:"color,omitempty" gorm:"foreignKey:ColorID"`
}

// BelongsTo reports whether the variant's back-reference points at productID.
func (v *Variant) BelongsTo(productID uuid.UUID) bool {
	return v.ProductID != nil && *v.ProductID == productID
}
