// Package seed loads the default catalog rows shipped with the binary.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"backend/internal/logger"
	"backend/internal/models"
)

//go:embed amenities.yaml
var amenitiesYAML []byte

type amenityFile struct {
	Amenities []models.Amenity `yaml:"amenities"`
}

// DefaultAmenities parses the embedded amenity list. Rows without an explicit
// order keep their position in the file.
func DefaultAmenities() ([]models.Amenity, error) {
	return parseAmenities(amenitiesYAML)
}

func parseAmenities(data []byte) ([]models.Amenity, error) {
	var f amenityFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse amenities: %w", err)
	}
	for i := range f.Amenities {
		a := &f.Amenities[i]
		if a.Order == 0 {
			a.Order = i + 1
		}
		a.IsActive = true
	}
	return f.Amenities, nil
}

// Amenities inserts every default amenity whose name is not taken yet and
// returns how many rows were created.
func Amenities(ctx context.Context, db *gorm.DB) (int, error) {
	log := logger.FromContext(ctx)

	defaults, err := DefaultAmenities()
	if err != nil {
		return 0, err
	}

	created := 0
	for _, a := range defaults {
		var existing int64
		if err := db.WithContext(ctx).Model(&models.Amenity{}).Where("name = ?", a.Name).Count(&existing).Error; err != nil {
			return created, fmt.Errorf("failed to look up amenity %q: %w", a.Name, err)
		}
		if existing > 0 {
			log.Debug("amenity already exists", zap.String("name", a.Name))
			continue
		}

		row := a
		if err := db.WithContext(ctx).Create(&row).Error; err != nil {
			return created, fmt.Errorf("failed to seed amenity %q: %w", a.Name, err)
		}
		created++
		log.Info("created amenity", zap.String("name", a.Name))
	}
	return created, nil
}
