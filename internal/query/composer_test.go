// internal/query/composer_test.go
package query

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/database"
	"github.com/javajoker/tailor-backend/internal/models"
	"github.com/javajoker/tailor-backend/internal/utils"
)

type ComposerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	ctx    context.Context
	design models.Design
	fabric models.Fabric
	color  models.Color
	clock  time.Time
}

func TestComposerTestSuite(t *testing.T) {
	suite.Run(t, new(ComposerTestSuite))
}

func (s *ComposerTestSuite) SetupTest() {
	db, err := database.OpenMemory()
	s.Require().NoError(err)
	s.db = db
	s.ctx = context.Background()
	s.clock = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s.design = models.Design{DesignName: "Classic", DesignImage: "designs/classic.png"}
	s.fabric = models.Fabric{FabricName: "Linen", FabricSwatchImage: "fabrics/linen.png"}
	s.color = models.Color{ColorName: "Navy", ColorHex: "#1B2A49"}
	s.Require().NoError(db.Create(&s.design).Error)
	s.Require().NoError(db.Create(&s.fabric).Error)
	s.Require().NoError(db.Create(&s.color).Error)
}

func (s *ComposerTestSuite) product(name string, price float64, active bool) models.Product {
	s.clock = s.clock.Add(time.Minute)
	variant := models.Variant{
		DesignID:         s.design.ID,
		FabricID:         s.fabric.ID,
		ColorID:          s.color.ID,
		CombinationImage: "variants/" + name + ".png",
		Price:            price,
	}
	s.Require().NoError(s.db.Create(&variant).Error)

	product := models.Product{
		BaseModel:        models.BaseModel{CreatedAt: s.clock},
		ProductName:      name,
		Description:      name + " description",
		DefaultVariantID: variant.ID,
		RatingsAverage:   models.DefaultRatingsAverage,
		IsActive:         active,
	}
	s.Require().NoError(s.db.Create(&product).Error)
	s.Require().NoError(s.db.Model(&variant).Update("product_id", product.ID).Error)
	return product
}

func (s *ComposerTestSuite) params(raw string) *Params {
	values, err := url.ParseQuery(raw)
	s.Require().NoError(err)
	p, err := Parse(values)
	s.Require().NoError(err)
	return p
}

func (s *ComposerTestSuite) TestPriceRangePageTwo() {
	for i := 0; i < 25; i++ {
		s.product(fmt.Sprintf("In range %02d", i), float64(196-4*i), true)
	}
	for i, price := range []float64{10, 99.99, 200.01, 250, 400} {
		s.product(fmt.Sprintf("Out of range %d", i), price, true)
	}

	q := New(s.db, Products, s.params("filter.defaultVariant.price[gte]=100&filter.defaultVariant.price[lte]=200&sort_by=price-ascending&page=2")).
		Search().Filter(s.ctx).Sort().Paginate(10)

	total, err := q.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(25), total)

	var products []models.Product
	s.Require().NoError(q.Find(s.ctx, &products, "DefaultVariant"))
	s.Require().Len(products, 10)

	for i, p := range products {
		s.Require().NotNil(p.DefaultVariant)
		// page two of ascending prices 100, 104, ... starts at the 11th
		s.Equal(float64(100+4*(10+i)), p.DefaultVariant.Price)
	}
}

func (s *ComposerTestSuite) TestEmptyResolutionMatchesNothing() {
	s.product("Shirt", 120, true)
	s.product("Trouser", 180, true)

	q := New(s.db, Products, s.params("filter.defaultVariant.price[gt]=5000")).Filter(s.ctx).Paginate(10)

	total, err := q.Count(s.ctx)
	s.Require().NoError(err)
	s.Zero(total)

	var products []models.Product
	s.Require().NoError(q.Find(s.ctx, &products))
	s.Empty(products)
}

func (s *ComposerTestSuite) TestStageOrderDoesNotChangeResults() {
	for i := 0; i < 12; i++ {
		s.product(fmt.Sprintf("Kurta %02d", i), float64(100+i), true)
	}
	s.product("Blazer", 300, true)

	p := s.params("name=KURTA&sort_by=title-descending&page=2")
	a := New(s.db, Products, p).Search().Filter(s.ctx).Sort().Paginate(5)
	b := New(s.db, Products, p).Paginate(5).Sort().Filter(s.ctx).Search()

	var first, second []models.Product
	s.Require().NoError(a.Find(s.ctx, &first))
	s.Require().NoError(b.Find(s.ctx, &second))
	s.Require().Len(first, 5)
	s.Equal(names(first), names(second))
	s.Equal("Kurta 06", first[0].ProductName)

	total, err := b.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(12), total)
}

func (s *ComposerTestSuite) TestBasePredicateAndBoolFilter() {
	s.product("Active", 100, true)
	s.product("Hidden", 100, false)
	hot := s.product("Hot", 100, true)
	s.Require().NoError(s.db.Model(&hot).Update("is_hot_deal", true).Error)

	q := New(s.db, Products, s.params("filter.isHotDeal=true")).
		Where("products.is_active = ?", true).
		Filter(s.ctx).Sort().Paginate(10)

	var products []models.Product
	s.Require().NoError(q.Find(s.ctx, &products))
	s.Equal([]string{"Hot"}, names(products))
}

func (s *ComposerTestSuite) TestNestedRelationFilter() {
	other := models.Design{DesignName: "Mandarin", DesignImage: "designs/mandarin.png"}
	s.Require().NoError(s.db.Create(&other).Error)

	s.product("Classic shirt", 100, true)
	mandarin := s.product("Mandarin shirt", 100, true)
	s.Require().NoError(s.db.Model(&models.Variant{}).
		Where("id = ?", mandarin.DefaultVariantID).
		Update("design_id", other.ID).Error)

	q := New(s.db, Products, s.params("filter.defaultVariant.design.designName=Mandarin")).Filter(s.ctx).Sort()

	var products []models.Product
	s.Require().NoError(q.Find(s.ctx, &products))
	s.Equal([]string{"Mandarin shirt"}, names(products))
}

func (s *ComposerTestSuite) TestSearchEscapesWildcards() {
	s.product("100% Cotton", 100, true)
	s.product("1000 Threads", 100, true)

	q := New(s.db, Products, s.params(url.Values{"name": {"100%"}}.Encode())).Search().Sort()

	var products []models.Product
	s.Require().NoError(q.Find(s.ctx, &products))
	s.Equal([]string{"100% Cotton"}, names(products))
}

func (s *ComposerTestSuite) TestUnknownSortFallsBackToNewest() {
	s.product("Older", 100, true)
	s.product("Newer", 100, true)

	q := New(s.db, Products, s.params("sort_by=cheapest-first")).Sort()

	var products []models.Product
	s.Require().NoError(q.Find(s.ctx, &products))
	s.Equal([]string{"Newer", "Older"}, names(products))
}

func (s *ComposerTestSuite) TestHugePageIsEmpty() {
	s.product("Only", 100, true)

	for _, page := range []string{"2", "922337203685477582", strconv.Itoa(math.MaxInt)} {
		q := New(s.db, Products, s.params("page="+page)).Sort().Paginate(10)

		total, err := q.Count(s.ctx)
		s.Require().NoError(err, page)
		s.Equal(int64(1), total, page)

		var products []models.Product
		s.Require().NoError(q.Find(s.ctx, &products), page)
		s.Empty(products, page)
	}
}

func (s *ComposerTestSuite) TestFilterErrorsSurfaceOnFind() {
	cases := []string{
		"filter.unknownField=1",
		"filter.productName[gte]=a",
		"filter.defaultVariant.price=cheap",
		"filter.defaultVariantId=not-a-uuid",
		"filter.nothing.price=1",
	}
	for _, raw := range cases {
		q := New(s.db, Products, s.params(raw)).Filter(s.ctx).Sort().Paginate(10)

		var products []models.Product
		err := q.Find(s.ctx, &products)
		s.Require().Error(err, raw)
		s.True(utils.IsKind(err, utils.KindValidation), raw)

		_, err = q.Count(s.ctx)
		s.Error(err, raw)
	}
}

func TestOffset(t *testing.T) {
	tests := []struct {
		name    string
		page    int
		perPage int
		want    int
	}{
		{name: "first page", page: 1, perPage: 10, want: 0},
		{name: "third page", page: 3, perPage: 10, want: 20},
		{name: "zero page", page: 0, perPage: 10, want: 0},
		{name: "negative page", page: -4, perPage: 10, want: 0},
		{name: "zero page size", page: 5, perPage: 0, want: 0},
		{name: "largest page", page: math.MaxInt, perPage: 10, want: (math.MaxInt - 10) / 10 * 10},
		{name: "page that would overflow", page: math.MaxInt/10 + 2, perPage: 10, want: (math.MaxInt - 10) / 10 * 10},
		{name: "page size of one", page: math.MaxInt, perPage: 1, want: math.MaxInt - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := utils.Offset(tt.page, tt.perPage)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, math.MaxInt-tt.perPage)
		})
	}
}

func TestResolveRewritesToMembership(t *testing.T) {
	db, err := database.OpenMemory()
	require.NoError(t, err)

	doc := NewFilterDocument()
	require.NoError(t, doc.AddBound("defaultVariant.price", OpGTE, "10"))
	require.NoError(t, doc.AddEquality("productName", "Shirt"))

	resolved, err := Resolve(context.Background(), db, Products, doc)
	require.NoError(t, err)
	require.Equal(t, 2, resolved.Len())

	name, ok := resolved.Get("productName")
	require.True(t, ok)
	assert.Equal(t, Equality, name.Kind)

	membership, ok := resolved.Get("defaultVariant")
	require.True(t, ok)
	assert.Equal(t, Membership, membership.Kind)
	assert.Empty(t, membership.IDs)

	_, ok = resolved.Get("defaultVariant.price")
	assert.False(t, ok)
}

func TestResolveUUIDField(t *testing.T) {
	db, err := database.OpenMemory()
	require.NoError(t, err)

	id := uuid.New()
	doc := NewFilterDocument()
	require.NoError(t, doc.AddEquality("defaultVariantId", id.String()))

	resolved, err := Resolve(context.Background(), db, Products, doc)
	require.NoError(t, err)
	cond, _ := resolved.Get("defaultVariantId")
	assert.Equal(t, id.String(), cond.Value)
}

func names(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ProductName
	}
	return out
}
