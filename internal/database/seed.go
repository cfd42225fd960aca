// internal/database/seed.go
package database

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/models"
)

// SeedData is the layout of the YAML seed file.
type SeedData struct {
	Admin *struct {
		Name     string `yaml:"name"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"admin"`
	Designs []struct {
		Name  string `yaml:"name"`
		Image string `yaml:"image"`
	} `yaml:"designs"`
	Fabrics []struct {
		Name  string `yaml:"name"`
		Image string `yaml:"image"`
	} `yaml:"fabrics"`
	Colors []struct {
		Name string `yaml:"name"`
		Hex  string `yaml:"hex"`
	} `yaml:"colors"`
	Banners []struct {
		Title     string `yaml:"title"`
		Subtitle  string `yaml:"subtitle"`
		Image     string `yaml:"image"`
		Link      string `yaml:"link"`
		SortOrder int    `yaml:"sortOrder"`
	} `yaml:"banners"`
	Stores []struct {
		Name         string  `yaml:"name"`
		Address      string  `yaml:"address"`
		Phone        string  `yaml:"phone"`
		OpeningHours string  `yaml:"openingHours"`
		Image        string  `yaml:"image"`
		Latitude     float64 `yaml:"latitude"`
		Longitude    float64 `yaml:"longitude"`
		SortOrder    int     `yaml:"sortOrder"`
	} `yaml:"stores"`
}

func SeedFromFile(db *gorm.DB, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}
	return Seed(db, &data)
}

// Seed inserts rows that are not present yet; matching is by unique name, so
// running it twice is harmless.
func Seed(db *gorm.DB, data *SeedData) error {
	logrus.Info("Seeding initial data...")

	return WithTransaction(db, func(tx *gorm.DB) error {
		if data.Admin != nil {
			var count int64
			if err := tx.Model(&models.User{}).Where("email = ?", data.Admin.Email).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				admin := &models.User{
					Name:       data.Admin.Name,
					Email:      data.Admin.Email,
					Role:       models.UserRoleAdmin,
					IsVerified: true,
				}
				if err := admin.SetPassword(data.Admin.Password); err != nil {
					return fmt.Errorf("failed to set admin password: %w", err)
				}
				if err := tx.Create(admin).Error; err != nil {
					return fmt.Errorf("failed to create admin user: %w", err)
				}
				logrus.WithField("email", admin.Email).Info("Default admin user created")
			}
		}

		for _, d := range data.Designs {
			row := models.Design{DesignName: d.Name, DesignImage: d.Image}
			if err := tx.Where(models.Design{DesignName: d.Name}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("failed to seed design %s: %w", d.Name, err)
			}
		}
		for _, f := range data.Fabrics {
			row := models.Fabric{FabricName: f.Name, FabricSwatchImage: f.Image}
			if err := tx.Where(models.Fabric{FabricName: f.Name}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("failed to seed fabric %s: %w", f.Name, err)
			}
		}
		for _, c := range data.Colors {
			row := models.Color{ColorName: c.Name, ColorHex: c.Hex}
			if err := tx.Where(models.Color{ColorName: c.Name}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("failed to seed color %s: %w", c.Name, err)
			}
		}
		for _, b := range data.Banners {
			row := models.Banner{Title: b.Title, Subtitle: b.Subtitle, ImageURL: b.Image, Link: b.Link, IsActive: true, SortOrder: b.SortOrder}
			if err := tx.Where(models.Banner{ImageURL: b.Image}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("failed to seed banner %s: %w", b.Title, err)
			}
		}
		for _, s := range data.Stores {
			row := models.Store{
				Name:         s.Name,
				Address:      s.Address,
				Phone:        s.Phone,
				OpeningHours: s.OpeningHours,
				ImageURL:     s.Image,
				Latitude:     s.Latitude,
				Longitude:    s.Longitude,
				IsActive:     true,
				SortOrder:    s.SortOrder,
			}
			if err := tx.Where(models.Store{Name: s.Name}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("failed to seed store %s: %w", s.Name, err)
			}
		}

		logrus.Info("Initial data seeding completed")
		return nil
	})
}
