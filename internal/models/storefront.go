// internal/models/storefront.go
package models

type Banner struct {
	BaseModel
	Title     string `json:"title" gorm:"size:255"`
	Subtitle  string `json:"subtitle" gorm:"size:255"`
	ImageURL  string `json:"imageUrl" gorm:"size:1024;not null"`
	Link      string `json:"link" gorm:"size:1024;not null"`
	IsActive  bool   `json:"isActive" gorm:"not null;index"`
	SortOrder int    `json:"sortOrder" gorm:"default:0;not null"`
}

type Store struct {
	BaseModel
	Name         string  `json:"name" gorm:"size:255;not null;uniqueIndex"`
	Address      string  `json:"address" gorm:"type:text;not null"`
	Phone        string  `json:"phone" gorm:"size:50;not null"`
	OpeningHours string  `json:"openingHours" gorm:"size:255;default:'11:00 AM - 8:00 PM, Mon-Sat'"`
	ImageURL     string  `json:"imageUrl" gorm:"size:1024;not null"`
	Latitude     float64 `json:"latitude" gorm:"not null"`
	Longitude    float64 `json:"longitude" gorm:"not null"`
	IsActive     bool    `json:"isActive" gorm:"not null;index"`
	SortOrder    int     `json:"sortOrder" gorm:"default:0;not null"`
}
