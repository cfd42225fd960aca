// internal/services/product_service_test.go
package services

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/models"
	"github.com/javajoker/tailor-backend/internal/utils"
)

type ProductServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	ctx      context.Context
	store    *memoryStore
	fixture  catalogFixture
	products *ProductService
	variants *VariantService
}

func TestProductServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}

func (s *ProductServiceTestSuite) SetupTest() {
	s.db = openTestDB(s.T())
	s.ctx = context.Background()
	s.store = newMemoryStore()
	s.fixture = seedCatalog(s.T(), s.db)
	s.products = NewProductService(s.db, s.store, testCatalogConfig())
	s.variants = NewVariantService(s.db, s.store)
}

func (s *ProductServiceTestSuite) TestCreateLinksDefaultVariant() {
	product, err := s.products.CreateProduct(s.ctx, s.fixture.productRequest("Oxford Shirt", 120), pngUpload("oxford"))
	s.Require().NoError(err)

	s.Equal("oxford-shirt", product.Slug)
	s.True(product.IsActive)
	s.Equal(models.DefaultRatingsAverage, product.RatingsAverage)
	s.Require().NotNil(product.DefaultVariant)
	s.True(product.DefaultVariant.BelongsTo(product.ID))
	s.Equal(120.0, product.DefaultVariant.Price)
	s.Require().NotNil(product.DefaultVariant.Design)
	s.Equal("Classic", product.DefaultVariant.Design.DesignName)
	s.Equal(1, s.store.count())

	issues, err := s.products.CheckIntegrity(s.ctx)
	s.Require().NoError(err)
	s.Empty(issues)
}

func (s *ProductServiceTestSuite) TestCreateWithMissingDesignWritesNothing() {
	req := s.fixture.productRequest("Ghost", 50)
	req.DesignID = randomID()

	_, err := s.products.CreateProduct(s.ctx, req, pngUpload("ghost"))
	s.Require().Error(err)
	s.True(utils.IsKind(err, utils.KindNotFound))
	s.Contains(err.Error(), "Design not found")

	var variants, products int64
	s.db.Model(&models.Variant{}).Count(&variants)
	s.db.Model(&models.Product{}).Count(&products)
	s.Zero(variants)
	s.Zero(products)
	s.Zero(s.store.count())
}

func (s *ProductServiceTestSuite) TestCreateRejectsMalformedReference() {
	req := s.fixture.productRequest("Broken", 50)
	req.FabricID = "not-an-id"

	_, err := s.products.CreateProduct(s.ctx, req, pngUpload("broken"))
	s.True(utils.IsKind(err, utils.KindValidation))
	s.Contains(err.Error(), "Invalid fabricId: not-an-id")
}

func (s *ProductServiceTestSuite) TestDuplicateNameReleasesUpload() {
	_, err := s.products.CreateProduct(s.ctx, s.fixture.productRequest("Twin", 80), pngUpload("first"))
	s.Require().NoError(err)

	_, err = s.products.CreateProduct(s.ctx, s.fixture.productRequest("Twin", 90), pngUpload("second"))
	s.True(utils.IsKind(err, utils.KindValidation))

	var variants int64
	s.db.Model(&models.Variant{}).Count(&variants)
	s.EqualValues(1, variants)
	s.Equal(1, s.store.count())
}

func (s *ProductServiceTestSuite) TestDeleteCascades() {
	product, err := s.products.CreateProduct(s.ctx, s.fixture.productRequest("Blazer", 300), pngUpload("blazer"))
	s.Require().NoError(err)
	_, err = s.variants.CreateVariant(s.ctx, product.ID.String(), &CreateVariantRequest{
		DesignID: s.fixture.design.ID.String(),
		FabricID: s.fixture.fabric.ID.String(),
		ColorID:  s.fixture.color.ID.String(),
		Price:    320,
	}, pngUpload("blazer-alt"))
	s.Require().NoError(err)

	user := createUser(s.T(), s.db, "buyer@example.com")
	s.Require().NoError(s.db.Create(&models.WishlistItem{UserID: user.ID, ProductID: product.ID}).Error)
	s.Require().NoError(s.db.Create(&models.Review{UserID: user.ID, ProductID: product.ID, Rating: 4, Comment: "ok"}).Error)

	s.Require().NoError(s.products.DeleteProduct(s.ctx, product.ID.String()))

	for _, model := range []interface{}{&models.Product{}, &models.Variant{}, &models.WishlistItem{}, &models.Review{}} {
		var n int64
		s.db.Model(model).Count(&n)
		s.Zero(n)
	}
	s.Len(s.store.deletedIDs(), 2)

	_, err = s.products.GetProduct(s.ctx, product.ID.String())
	s.True(utils.IsKind(err, utils.KindNotFound))
}

func (s *ProductServiceTestSuite) TestMalformedPathIDIsNotFound() {
	_, err := s.products.GetProduct(s.ctx, "xyz")
	s.True(utils.IsKind(err, utils.KindNotFound))
	s.Contains(err.Error(), "xyz")
}

func (s *ProductServiceTestSuite) TestRelinkRepairsBrokenBackReference() {
	product, err := s.products.CreateProduct(s.ctx, s.fixture.productRequest("Vest", 60), pngUpload("vest"))
	s.Require().NoError(err)
	s.Require().NoError(s.db.Model(&models.Variant{}).Where("id = ?", product.DefaultVariantID).Update("product_id", nil).Error)

	issues, err := s.products.CheckIntegrity(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(issues, 1)
	s.Equal(product.ID.String(), issues[0].ProductID)

	_, err = s.products.Relink(s.ctx, product.ID.String())
	s.Require().NoError(err)
	_, err = s.products.Relink(s.ctx, product.ID.String())
	s.Require().NoError(err)

	issues, err = s.products.CheckIntegrity(s.ctx)
	s.Require().NoError(err)
	s.Empty(issues)
}

func (s *ProductServiceTestSuite) TestListProductsHidesInactive() {
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		_, err := s.products.CreateProduct(s.ctx, s.fixture.productRequest(name, 100), pngUpload(name))
		s.Require().NoError(err)
	}
	inactive := false
	req := s.fixture.productRequest("Hidden", 100)
	req.IsActive = &inactive
	_, err := s.products.CreateProduct(s.ctx, req, pngUpload("hidden"))
	s.Require().NoError(err)

	page, err := s.products.ListProducts(s.ctx, url.Values{"sort_by": {"title-ascending"}})
	s.Require().NoError(err)
	s.EqualValues(3, page.TotalCount)
	products := page.Data.([]models.Product)
	s.Require().Len(products, 3)
	s.Equal("Alpha", products[0].ProductName)
	s.NotNil(products[0].DefaultVariant)
}

func (s *ProductServiceTestSuite) TestProductPageCollectsOptions() {
	product, err := s.products.CreateProduct(s.ctx, s.fixture.productRequest("Chinos", 90), pngUpload("chinos"))
	s.Require().NoError(err)

	page, err := s.products.GetProductPage(s.ctx, product.ID.String())
	s.Require().NoError(err)
	s.Len(page.AllVariants, 1)
	s.Len(page.Options.Designs, 1)
	s.Len(page.Options.Fabrics, 1)
	s.Len(page.Options.Colors, 1)

	off := false
	_, err = s.products.UpdateProduct(s.ctx, product.ID.String(), &UpdateProductRequest{IsActive: &off})
	s.Require().NoError(err)
	_, err = s.products.GetProductPage(s.ctx, product.ID.String())
	s.True(utils.IsKind(err, utils.KindNotFound))
}

func (s *ProductServiceTestSuite) TestDefaultVariantCannotBeDeleted() {
	product, err := s.products.CreateProduct(s.ctx, s.fixture.productRequest("Polo", 40), pngUpload("polo"))
	s.Require().NoError(err)

	err = s.variants.DeleteVariant(s.ctx, product.ID.String(), product.DefaultVariantID.String())
	s.True(utils.IsKind(err, utils.KindValidation))
}
