// internal/services/common.go
package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/models"
	"github.com/javajoker/tailor-backend/internal/utils"
)

// ImageUpload is a file received with a multipart request.
type ImageUpload struct {
	Data     []byte
	Filename string
}

// parseID reads a path identifier. A malformed id names no entity, so it is
// reported the same way as a missing one.
func parseID(entity, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, utils.NotFound(entity, raw)
	}
	return id, nil
}

// parseRefID reads an identifier supplied in a request body.
func parseRefID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, utils.Validation("Invalid %s: %s", field, raw)
	}
	return id, nil
}

// optionRefs are the three option ids every variant points at.
type optionRefs struct {
	DesignID uuid.UUID
	FabricID uuid.UUID
	ColorID  uuid.UUID
}

func parseOptionRefs(designID, fabricID, colorID string) (optionRefs, error) {
	var refs optionRefs
	var err error
	if refs.DesignID, err = parseRefID("designId", designID); err != nil {
		return refs, err
	}
	if refs.FabricID, err = parseRefID("fabricId", fabricID); err != nil {
		return refs, err
	}
	if refs.ColorID, err = parseRefID("colorId", colorID); err != nil {
		return refs, err
	}
	return refs, nil
}

// verify fails with NotFound naming the first option that does not exist.
func (r optionRefs) verify(ctx context.Context, db *gorm.DB) error {
	checks := []struct {
		entity string
		model  interface{}
		id     uuid.UUID
	}{
		{"Design", &models.Design{}, r.DesignID},
		{"Fabric", &models.Fabric{}, r.FabricID},
		{"Color", &models.Color{}, r.ColorID},
	}
	for _, c := range checks {
		var count int64
		if err := db.WithContext(ctx).Model(c.model).Where("id = ?", c.id).Count(&count).Error; err != nil {
			return utils.StoreError(err, c.entity, c.id)
		}
		if count == 0 {
			return utils.NotFound(c.entity, c.id)
		}
	}
	return nil
}
