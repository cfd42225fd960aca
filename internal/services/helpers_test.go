// internal/services/helpers_test.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/config"
	"github.com/javajoker/tailor-backend/internal/database"
	"github.com/javajoker/tailor-backend/internal/models"
)

const fakeStoreURL = "https://cdn.test/"

// memoryStore is an ImageStore that keeps uploads in a map.
type memoryStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	failWrite bool
	seq       int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (m *memoryStore) Upload(_ context.Context, data []byte, folder, filename string) (*UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return nil, errors.New("store unavailable")
	}
	m.seq++
	id := fmt.Sprintf("%s/%d-%s", folder, m.seq, strings.TrimSuffix(filename, ".png"))
	m.objects[id] = data
	return &UploadResult{URL: fakeStoreURL + id + ".png", PublicID: id, ResourceType: models.ResourceTypeImage, Size: int64(len(data))}, nil
}

func (m *memoryStore) Delete(_ context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, publicID)
	delete(m.objects, publicID)
	return nil
}

func (m *memoryStore) PublicID(rawURL string) string {
	return ExtractPublicID(strings.Replace(rawURL, fakeStoreURL, "https://cdn.test/upload/", 1))
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func (m *memoryStore) deletedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

type recordingMailer struct {
	sent chan [2]string
	err  error
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{sent: make(chan [2]string, 8)}
}

func (r *recordingMailer) SendOTP(_ context.Context, to, code string) error {
	r.sent <- [2]string{to, code}
	return r.err
}

type recordingPusher struct {
	calls chan []string
}

func newRecordingPusher() *recordingPusher {
	return &recordingPusher{calls: make(chan []string, 8)}
}

func (r *recordingPusher) Push(_ context.Context, tokens []string, _, _ string, _ map[string]string) error {
	r.calls <- tokens
	return nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type catalogFixture struct {
	design models.Design
	fabric models.Fabric
	color  models.Color
}

func seedCatalog(t *testing.T, db *gorm.DB) catalogFixture {
	t.Helper()
	f := catalogFixture{
		design: models.Design{DesignName: "Classic", DesignImage: fakeStoreURL + "designs/classic.png"},
		fabric: models.Fabric{FabricName: "Linen", FabricSwatchImage: fakeStoreURL + "fabrics/linen.png"},
		color:  models.Color{ColorName: "Navy", ColorHex: "#1B2A49"},
	}
	require.NoError(t, db.Create(&f.design).Error)
	require.NoError(t, db.Create(&f.fabric).Error)
	require.NoError(t, db.Create(&f.color).Error)
	return f
}

func (f catalogFixture) productRequest(name string, price float64) *CreateProductRequest {
	return &CreateProductRequest{
		ProductName: name,
		Description: name + " description",
		DesignID:    f.design.ID.String(),
		FabricID:    f.fabric.ID.String(),
		ColorID:     f.color.ID.String(),
		Price:       price,
	}
}

func testCatalogConfig() config.CatalogConfig {
	return config.CatalogConfig{
		ProductsPerPage:      10,
		ReviewsPerPage:       10,
		WishlistPerPage:      10,
		NotificationsPerPage: 15,
		HomepageSectionSize:  4,
	}
}

func createUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Name: "Tester", Email: email, IsVerified: true, Role: models.UserRoleUser}
	require.NoError(t, user.SetPassword("Secret1"))
	require.NoError(t, db.Create(&user).Error)
	return user
}

func pngUpload(name string) *ImageUpload {
	return &ImageUpload{Data: []byte("\x89PNG\r\n\x1a\n" + name), Filename: name + ".png"}
}

func randomID() string {
	return uuid.NewString()
}

func ptr[T any](v T) *T {
	return &v
}
