// internal/router/router_test.go
package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/config"
	"github.com/javajoker/tailor-backend/internal/database"
	"github.com/javajoker/tailor-backend/internal/i18n"
	"github.com/javajoker/tailor-backend/internal/models"
	"github.com/javajoker/tailor-backend/internal/router"
	"github.com/javajoker/tailor-backend/internal/services"
	"github.com/javajoker/tailor-backend/internal/utils"
)

type otpMailer struct {
	codes chan string
}

func (m *otpMailer) SendOTP(_ context.Context, _, code string) error {
	m.codes <- code
	return nil
}

type silentPusher struct{}

func (silentPusher) Push(context.Context, []string, string, string, map[string]string) error {
	return nil
}

type echoTryOn struct{}

func (echoTryOn) TryOn(_ context.Context, avatar, _ []byte) ([]byte, error) { return avatar, nil }

func (echoTryOn) Fetch(context.Context, string) ([]byte, error) {
	return []byte("\x89PNG\r\n\x1a\nfetched"), nil
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Count      int             `json:"count"`
	TotalCount int64           `json:"totalCount"`
	Token      string          `json:"token"`
	Action     string          `json:"action"`
	Error      *utils.APIError `json:"error"`
}

type RouterTestSuite struct {
	suite.Suite
	db     *gorm.DB
	engine *gin.Engine
	mailer *otpMailer
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(i18n.Initialize())
	utils.SetJWTSecret("router-test-secret")
}

func (s *RouterTestSuite) SetupTest() {
	db, err := database.OpenMemory()
	s.Require().NoError(err)
	s.db = db
	s.T().Cleanup(func() { database.Close(db) })

	store, err := services.NewLocalImageStore(s.T().TempDir(), "http://localhost:8080/uploads")
	s.Require().NoError(err)

	s.mailer = &otpMailer{codes: make(chan string, 4)}
	cfg := &config.Config{
		Environment: "test",
		JWT:         config.JWTConfig{SecretKey: "router-test-secret", AccessTokenTTL: 1, CookieDays: 1},
		CORS:        config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit:   config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000, AuthPerMinute: 1000},
		Push:        config.PushConfig{Timeout: time.Second},
		Catalog: config.CatalogConfig{
			ProductsPerPage:      10,
			ReviewsPerPage:       10,
			WishlistPerPage:      10,
			NotificationsPerPage: 10,
			HomepageSectionSize:  4,
		},
	}
	s.engine = router.Initialize(db, cfg, router.Dependencies{
		Store:   store,
		Mailer:  s.mailer,
		Pusher:  silentPusher{},
		TryOn:   echoTryOn{},
		Fetcher: echoTryOn{},
	})
}

func (s *RouterTestSuite) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (s *RouterTestSuite) user(email string, role models.UserRole) string {
	u := &models.User{Name: "Tester", Email: email, Role: role, IsVerified: true}
	s.Require().NoError(u.SetPassword("Secret1"))
	s.Require().NoError(s.db.Create(u).Error)

	path := "/api/v1/auth/login"
	if role == models.UserRoleAdmin {
		path = "/api/v1/admin/auth"
	}
	w, env := s.do(http.MethodPost, path, "", map[string]string{"email": email, "password": "Secret1"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Require().NotEmpty(env.Token)
	return env.Token
}

func (s *RouterTestSuite) id(raw json.RawMessage) string {
	var row struct {
		ID string `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(raw, &row))
	return row.ID
}

// seedProduct creates the three options and one product through the API.
func (s *RouterTestSuite) seedProduct(admin, name string) string {
	w, env := s.do(http.MethodPost, "/api/v1/designs", admin, map[string]string{
		"designName": name + " design", "designImage": "https://cdn.test/designs/a.png",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	designID := s.id(env.Data)

	w, env = s.do(http.MethodPost, "/api/v1/fabrics", admin, map[string]string{
		"fabricName": name + " fabric", "fabricSwatchImage": "https://cdn.test/fabrics/a.png",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	fabricID := s.id(env.Data)

	w, env = s.do(http.MethodPost, "/api/v1/colors", admin, map[string]string{
		"colorName": name + " color", "colorHex": "#112233",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	colorID := s.id(env.Data)

	w, env = s.do(http.MethodPost, "/api/v1/products", admin, map[string]interface{}{
		"productName":      name,
		"description":      "Tailored " + name,
		"designId":         designID,
		"fabricId":         fabricID,
		"colorId":          colorID,
		"price":            120.5,
		"combinationImage": "https://cdn.test/products/" + designID + ".png",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal("Product created successfully", env.Message)
	return s.id(env.Data)
}

func (s *RouterTestSuite) TestHealth() {
	w, _ := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterTestSuite) TestSignUpFlow() {
	w, env := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Jamie", "email": "Jamie@Example.com", "password": "Secret1",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.True(env.Success)

	var code string
	select {
	case code = <-s.mailer.codes:
	case <-time.After(2 * time.Second):
		s.FailNow("no OTP mail sent")
	}

	w, env = s.do(http.MethodPost, "/api/v1/auth/verify-otp", "", map[string]string{
		"email": "jamie@example.com", "otp": code,
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.NotEmpty(env.Token)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "FsToken" {
			cookie = c
		}
	}
	s.Require().NotNil(cookie)
	s.True(cookie.HttpOnly)

	w, _ = s.do(http.MethodGet, "/api/v1/me", env.Token, nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterTestSuite) TestAuthGuards() {
	w, _ := s.do(http.MethodGet, "/api/v1/me", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	customer := s.user("shopper@example.com", models.UserRoleUser)
	w, _ = s.do(http.MethodPost, "/api/v1/colors", customer, map[string]string{"colorName": "Red", "colorHex": "#ff0000"})
	s.Equal(http.StatusForbidden, w.Code)

	w, env := s.do(http.MethodPost, "/api/v1/admin/auth", "", map[string]string{"email": "shopper@example.com", "password": "Secret1"})
	s.Equal(http.StatusForbidden, w.Code)
	s.Require().NotNil(env.Error)
	s.Equal("Not authorized: Access denied", env.Error.Message)
}

func (s *RouterTestSuite) TestCatalogLifecycle() {
	admin := s.user("admin@example.com", models.UserRoleAdmin)
	productID := s.seedProduct(admin, "Linen Shirt")
	s.seedProduct(admin, "Wool Blazer")

	w, env := s.do(http.MethodGet, "/api/v1/products?name=linen", "", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.EqualValues(1, env.TotalCount)
	s.Equal(1, env.Count)

	w, env = s.do(http.MethodGet, "/api/v1/product-page/"+productID, "", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var page struct {
		AllVariants []json.RawMessage `json:"allVariants"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &page))
	s.Len(page.AllVariants, 1)

	w, env = s.do(http.MethodGet, "/api/v1/product/not-a-uuid", "", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.False(env.Success)

	w, env = s.do(http.MethodPatch, "/api/v1/product/"+productID, admin, map[string]interface{}{"isHotDeal": true})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w, env = s.do(http.MethodGet, "/api/v1/homepage-sections", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var sections struct {
		HotDeals []json.RawMessage `json:"hotDeals"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &sections))
	s.Len(sections.HotDeals, 1)

	w, env = s.do(http.MethodGet, "/api/v1/admin/products/integrity", admin, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(0, env.Count)

	w, env = s.do(http.MethodDelete, "/api/v1/product/"+productID, admin, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("Product deleted successfully", env.Message)

	w, _ = s.do(http.MethodGet, "/api/v1/product/"+productID, "", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterTestSuite) TestReviewsAndWishlist() {
	admin := s.user("admin@example.com", models.UserRoleAdmin)
	productID := s.seedProduct(admin, "Silk Tie")
	customer := s.user("shopper@example.com", models.UserRoleUser)

	w, env := s.do(http.MethodPost, "/api/v1/product/"+productID+"/reviews", customer, map[string]interface{}{
		"rating": 4, "comment": "Sharp",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w, _ = s.do(http.MethodPost, "/api/v1/product/"+productID+"/reviews", customer, map[string]interface{}{
		"rating": 5, "comment": "Again",
	})
	s.Equal(http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodGet, "/api/v1/product/"+productID+"/reviews", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.EqualValues(1, env.TotalCount)

	w, env = s.do(http.MethodGet, "/api/v1/product/"+productID, "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var product models.Product
	s.Require().NoError(json.Unmarshal(env.Data, &product))
	s.Equal(4.0, product.RatingsAverage)
	s.EqualValues(1, product.RatingsQuantity)

	w, env = s.do(http.MethodPost, "/api/v1/wishlist/toggle", customer, map[string]string{"productId": productID})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal("added", env.Action)

	w, env = s.do(http.MethodGet, "/api/v1/wishlist/products", customer, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.EqualValues(1, env.TotalCount)

	w, env = s.do(http.MethodPost, "/api/v1/wishlist/toggle", customer, map[string]string{"productId": productID})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("removed", env.Action)
}

func (s *RouterTestSuite) TestNotifications() {
	admin := s.user("admin@example.com", models.UserRoleAdmin)
	customer := s.user("shopper@example.com", models.UserRoleUser)

	var target models.User
	s.Require().NoError(s.db.Where("email = ?", "shopper@example.com").First(&target).Error)

	w, _ := s.do(http.MethodPost, "/api/v1/admin/notifications/send", admin, map[string]string{
		"userId": target.ID.String(), "message": "Your order shipped", "link": "/orders",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w, _ = s.do(http.MethodGet, "/api/v1/notifications/status", customer, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var status struct {
		HasUnread bool `json:"hasUnread"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &status))
	s.True(status.HasUnread)

	w, _ = s.do(http.MethodPut, "/api/v1/notifications/read-all", customer, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/notifications/status", customer, nil)
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &status))
	s.False(status.HasUnread)
}
