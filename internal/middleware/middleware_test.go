// internal/middleware/middleware_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/tailor-backend/internal/database"
	"github.com/javajoker/tailor-backend/internal/i18n"
	"github.com/javajoker/tailor-backend/internal/models"
	"github.com/javajoker/tailor-backend/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("middleware-test-secret")
	if err := i18n.Initialize(); err != nil {
		panic(err)
	}
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestI18nMiddleware(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"zh-TW,zh;q=0.9,en;q=0.8", "zh_TW"},
		{"zh-Hant", "zh_TW"},
		{"fr-FR,fr;q=0.9", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			r := gin.New()
			r.Use(I18nMiddleware())
			r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, utils.GetLangFromContext(c)) })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Accept-Language", tt.header)
			}
			assert.Equal(t, tt.want, serve(r, req).Body.String())
		})
	}
}

func TestRateLimiterRejectsAfterBurst(t *testing.T) {
	rl := NewRateLimiter(0, 2)
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)

	rl.idle = 0
	rl.sweep(rl.visitors["192.0.2.1"].lastSeen.Add(1))
	assert.Empty(t, rl.visitors)
}

func TestAuthRequired(t *testing.T) {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	admin := models.User{Name: "Admin", Email: "admin@example.com", Role: models.UserRoleAdmin, IsVerified: true}
	require.NoError(t, admin.SetPassword("Secret1"))
	require.NoError(t, db.Create(&admin).Error)
	token, err := utils.GenerateJWT(admin.ID, string(models.UserRoleUser), 1)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/admin", AuthRequired(db), AdminRequired(), func(c *gin.Context) {
		id, _ := utils.GetUserIDFromContext(c)
		c.String(http.StatusOK, id)
	})

	t.Run("missing token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodGet, "/admin", nil)).Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer nope")
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
	})

	t.Run("role comes from the database", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: AdminCookie, Value: token})
		w := serve(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, admin.ID.String(), w.Body.String())
	})

	t.Run("deleted user", func(t *testing.T) {
		require.NoError(t, db.Delete(&models.User{}, "id = ?", admin.ID).Error)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := serve(r, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "User no longer exists")
	})
}
