// internal/models/option.go
package models

type Design struct {
	BaseModel
	DesignName  string `json:"designName" gorm:"size:255;not null;uniqueIndex"`
	DesignImage string `json:"designImage" gorm:"size:1024;not null"`
}

type Fabric struct {
	BaseModel
	FabricName        string `json:"fabricName" gorm:"size:255;not null;uniqueIndex"`
	FabricSwatchImage string `json:"fabricSwatchImage" gorm:"size:1024;not null"`
}

type Color struct {
	BaseModel
	ColorName string `json:"colorName" gorm:"size:255;not null;uniqueIndex"`
	ColorHex  string `json:"colorHex" gorm:"size:16;not null"`
}
