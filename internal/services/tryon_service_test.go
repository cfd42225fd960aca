// internal/services/tryon_service_test.go
package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/tailor-backend/internal/models"
	"github.com/javajoker/tailor-backend/internal/utils"
)

type stubProxy struct {
	result []byte
	err    error
}

func (p stubProxy) TryOn(context.Context, []byte, []byte) ([]byte, error) {
	return p.result, p.err
}

type stubFetcher map[string][]byte

func (f stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if data, ok := f[url]; ok {
		return data, nil
	}
	return nil, errors.New("404 " + url)
}

func TestTryOnRecordsHistory(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	store := newMemoryStore()
	fixture := seedCatalog(t, db)
	product, err := NewProductService(db, store, testCatalogConfig()).
		CreateProduct(ctx, fixture.productRequest("Sherwani", 500), pngUpload("sherwani"))
	require.NoError(t, err)
	user := createUser(t, db, "tryon@example.com")
	other := createUser(t, db, "peek@example.com")

	fetcher := stubFetcher{product.DefaultVariant.CombinationImage: []byte("garment")}
	svc := NewTryOnService(db, store, stubProxy{result: []byte("rendered")}, fetcher)

	history, err := svc.Create(ctx, user.ID, &CreateTryOnRequest{VariantID: product.DefaultVariantID.String()}, pngUpload("me"))
	require.NoError(t, err)
	assert.NotEqual(t, history.UserImageURL, history.ResultImageURL)

	list, err := svc.History(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Variant)
	assert.NotNil(t, list[0].Variant.Design)

	got, err := svc.Get(ctx, user.ID, history.ID.String())
	require.NoError(t, err)
	assert.Equal(t, history.ID, got.ID)

	_, err = svc.Get(ctx, other.ID, history.ID.String())
	assert.True(t, utils.IsKind(err, utils.KindForbidden))
}

func TestTryOnProxyFailureWritesNothing(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	store := newMemoryStore()
	fixture := seedCatalog(t, db)
	product, err := NewProductService(db, store, testCatalogConfig()).
		CreateProduct(ctx, fixture.productRequest("Achkan", 400), pngUpload("achkan"))
	require.NoError(t, err)
	user := createUser(t, db, "fail@example.com")
	uploadsBefore := store.count()

	fetcher := stubFetcher{
		product.DefaultVariant.CombinationImage: []byte("garment"),
		"https://example.com/me.png":            []byte("me"),
	}
	svc := NewTryOnService(db, store, stubProxy{err: errors.New("quota exceeded")}, fetcher)

	_, err = svc.Create(ctx, user.ID, &CreateTryOnRequest{
		VariantID:    product.DefaultVariantID.String(),
		UserImageURL: "https://example.com/me.png",
	}, nil)
	assert.True(t, utils.IsKind(err, utils.KindExternal))

	var n int64
	db.Model(&models.TryOnHistory{}).Count(&n)
	assert.Zero(t, n)
	assert.Equal(t, uploadsBefore, store.count())
}

func TestTryOnValidation(t *testing.T) {
	db := openTestDB(t)
	svc := NewTryOnService(db, newMemoryStore(), stubProxy{}, stubFetcher{})
	user := createUser(t, db, "v@example.com")
	ctx := context.Background()

	_, err := svc.Create(ctx, user.ID, &CreateTryOnRequest{}, pngUpload("me"))
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = svc.Create(ctx, user.ID, &CreateTryOnRequest{VariantID: randomID()}, nil)
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = svc.Create(ctx, user.ID, &CreateTryOnRequest{VariantID: randomID()}, pngUpload("me"))
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}
