// internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/i18n"
	"github.com/javajoker/tailor-backend/internal/models"
	"github.com/javajoker/tailor-backend/internal/utils"
)

// Auth cookies set by the storefront and admin sign-in endpoints.
const (
	UserCookie  = "FsToken"
	AdminCookie = "FsAdminToken"
)

// bearerToken reads the Authorization header first (mobile clients) and
// falls back to the auth cookies (web).
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	for _, name := range []string{UserCookie, AdminCookie} {
		if token, err := c.Cookie(name); err == nil && token != "" {
			return token
		}
	}
	return ""
}

// AuthRequired admits requests carrying a valid token of a user that still
// exists. The role is read from the database, not the token.
func AuthRequired(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		token := bearerToken(c)
		if token == "" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			return
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthTokenExpired))
			return
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			return
		}

		var user models.User
		err = db.WithContext(c.Request.Context()).Select("id", "role").Take(&user, "id = ?", userID).Error
		if err != nil {
			utils.UnauthorizedResponse(c, "User no longer exists")
			return
		}

		c.Set("user_id", user.ID.String())
		c.Set("user_role", string(user.Role))
		c.Next()
	}
}

func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := utils.GetUserRoleFromContext(c)
		if !exists || role != string(models.UserRoleAdmin) {
			utils.ForbiddenResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAdminAccessDenied))
			return
		}
		c.Next()
	}
}
