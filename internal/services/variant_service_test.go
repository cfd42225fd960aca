// internal/services/variant_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/models"
	"github.com/javajoker/tailor-backend/internal/utils"
)

type VariantServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	ctx      context.Context
	store    *memoryStore
	fixture  catalogFixture
	products *ProductService
	variants *VariantService
	product  *models.Product
}

func TestVariantServiceTestSuite(t *testing.T) {
	suite.Run(t, new(VariantServiceTestSuite))
}

func (s *VariantServiceTestSuite) SetupTest() {
	s.db = openTestDB(s.T())
	s.ctx = context.Background()
	s.store = newMemoryStore()
	s.fixture = seedCatalog(s.T(), s.db)
	s.products = NewProductService(s.db, s.store, testCatalogConfig())
	s.variants = NewVariantService(s.db, s.store)

	product, err := s.products.CreateProduct(s.ctx, s.fixture.productRequest("Oxford Shirt", 120), pngUpload("oxford"))
	s.Require().NoError(err)
	s.product = product
}

func (s *VariantServiceTestSuite) variantRequest(price float64) *CreateVariantRequest {
	return &CreateVariantRequest{
		DesignID: s.fixture.design.ID.String(),
		FabricID: s.fixture.fabric.ID.String(),
		ColorID:  s.fixture.color.ID.String(),
		Price:    price,
	}
}

func (s *VariantServiceTestSuite) variantCount() int64 {
	var n int64
	s.Require().NoError(s.db.Model(&models.Variant{}).Count(&n).Error)
	return n
}

func (s *VariantServiceTestSuite) TestCreateAddsVariantToProduct() {
	variant, err := s.variants.CreateVariant(s.ctx, s.product.ID.String(), s.variantRequest(140), pngUpload("oxford-alt"))
	s.Require().NoError(err)

	s.True(variant.BelongsTo(s.product.ID))
	s.Equal(140.0, variant.Price)
	s.Require().NotNil(variant.Design)
	s.Equal("Classic", variant.Design.DesignName)
	s.Require().NotNil(variant.Color)
	s.Equal("Navy", variant.Color.ColorName)
	s.Equal(2, s.store.count())

	variants, err := s.variants.ListVariants(s.ctx, s.product.ID.String())
	s.Require().NoError(err)
	s.Len(variants, 2)
}

func (s *VariantServiceTestSuite) TestCreateWithMissingDesignWritesNothing() {
	before := s.variantCount()
	req := s.variantRequest(90)
	req.DesignID = randomID()

	_, err := s.variants.CreateVariant(s.ctx, s.product.ID.String(), req, pngUpload("ghost"))
	s.Require().Error(err)
	s.True(utils.IsKind(err, utils.KindNotFound))
	s.Contains(err.Error(), "Design not found with id: "+req.DesignID)

	s.Equal(before, s.variantCount())
	s.Equal(1, s.store.count())
}

func (s *VariantServiceTestSuite) TestCreateRequiresImage() {
	_, err := s.variants.CreateVariant(s.ctx, s.product.ID.String(), s.variantRequest(90), nil)
	s.True(utils.IsKind(err, utils.KindValidation))
	s.EqualValues(1, s.variantCount())
}

func (s *VariantServiceTestSuite) TestCreateOnMissingProduct() {
	_, err := s.variants.CreateVariant(s.ctx, randomID(), s.variantRequest(90), pngUpload("orphan"))
	s.True(utils.IsKind(err, utils.KindNotFound))
	s.Equal(1, s.store.count())
}

func (s *VariantServiceTestSuite) TestUpdateWithUploadReleasesOldImage() {
	old := s.product.DefaultVariant.CombinationImage

	updated, err := s.variants.UpdateVariant(s.ctx, s.product.ID.String(), s.product.DefaultVariantID.String(),
		&UpdateVariantRequest{Price: ptr(150.0)}, pngUpload("oxford-new"))
	s.Require().NoError(err)

	s.Equal(150.0, updated.Price)
	s.NotEqual(old, updated.CombinationImage)
	s.Equal([]string{s.store.PublicID(old)}, s.store.deletedIDs())
	s.Equal(1, s.store.count())
}

func (s *VariantServiceTestSuite) TestUpdateWithURLReleasesOldImage() {
	old := s.product.DefaultVariant.CombinationImage
	next := "https://images.example.com/oxford.png"

	updated, err := s.variants.UpdateVariant(s.ctx, s.product.ID.String(), s.product.DefaultVariantID.String(),
		&UpdateVariantRequest{CombinationImage: ptr(next)}, nil)
	s.Require().NoError(err)

	s.Equal(next, updated.CombinationImage)
	s.Equal([]string{s.store.PublicID(old)}, s.store.deletedIDs())
}

func (s *VariantServiceTestSuite) TestUpdateWithMissingColorChangesNothing() {
	missing := randomID()

	_, err := s.variants.UpdateVariant(s.ctx, s.product.ID.String(), s.product.DefaultVariantID.String(),
		&UpdateVariantRequest{ColorID: ptr(missing), Price: ptr(10.0)}, pngUpload("never"))
	s.Require().Error(err)
	s.True(utils.IsKind(err, utils.KindNotFound))
	s.Contains(err.Error(), "Color not found")

	variant, err := s.variants.GetVariant(s.ctx, s.product.ID.String(), s.product.DefaultVariantID.String())
	s.Require().NoError(err)
	s.Equal(s.fixture.color.ID, variant.ColorID)
	s.Equal(120.0, variant.Price)
	s.Equal(1, s.store.count())
	s.Empty(s.store.deletedIDs())
}

func (s *VariantServiceTestSuite) TestSetDefaultVariant() {
	alt, err := s.variants.CreateVariant(s.ctx, s.product.ID.String(), s.variantRequest(99), pngUpload("oxford-alt"))
	s.Require().NoError(err)

	product, err := s.variants.SetDefaultVariant(s.ctx, s.product.ID.String(), alt.ID.String())
	s.Require().NoError(err)
	s.Equal(alt.ID, product.DefaultVariantID)
	s.Require().NotNil(product.DefaultVariant)
	s.Equal(99.0, product.DefaultVariant.Price)

	// the former default is now an ordinary variant and may be removed
	s.Require().NoError(s.variants.DeleteVariant(s.ctx, s.product.ID.String(), s.product.DefaultVariantID.String()))
	s.EqualValues(1, s.variantCount())
}

func (s *VariantServiceTestSuite) TestSetDefaultRejectsForeignVariant() {
	other, err := s.products.CreateProduct(s.ctx, s.fixture.productRequest("Chinos", 80), pngUpload("chinos"))
	s.Require().NoError(err)

	_, err = s.variants.SetDefaultVariant(s.ctx, s.product.ID.String(), other.DefaultVariantID.String())
	s.Require().Error(err)
	s.True(utils.IsKind(err, utils.KindNotFound))

	var reloaded models.Product
	s.Require().NoError(s.db.First(&reloaded, "id = ?", s.product.ID).Error)
	s.Equal(s.product.DefaultVariantID, reloaded.DefaultVariantID)
}

func (s *VariantServiceTestSuite) TestDeleteProtectsDefault() {
	err := s.variants.DeleteVariant(s.ctx, s.product.ID.String(), s.product.DefaultVariantID.String())
	s.True(utils.IsKind(err, utils.KindValidation))
	s.EqualValues(1, s.variantCount())
	s.Empty(s.store.deletedIDs())
}

func (s *VariantServiceTestSuite) TestDeleteReleasesImage() {
	alt, err := s.variants.CreateVariant(s.ctx, s.product.ID.String(), s.variantRequest(99), pngUpload("oxford-alt"))
	s.Require().NoError(err)

	s.Require().NoError(s.variants.DeleteVariant(s.ctx, s.product.ID.String(), alt.ID.String()))
	s.Equal([]string{s.store.PublicID(alt.CombinationImage)}, s.store.deletedIDs())

	_, err = s.variants.GetVariant(s.ctx, s.product.ID.String(), alt.ID.String())
	s.True(utils.IsKind(err, utils.KindNotFound))
}
