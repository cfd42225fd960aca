// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeyInternalError   = "error.internal"
	KeyExternalFailure = "error.external"
	KeyRateLimited     = "error.rate_limited"

	// Authentication
	KeyAuthRequired        = "auth.required"
	KeyAuthInvalidToken    = "auth.invalid_token"
	KeyAuthTokenExpired    = "auth.token_expired"
	KeyAuthLoginSuccess    = "auth.login_success"
	KeyAuthLogoutSuccess   = "auth.logout_success"
	KeyAuthOTPSent         = "auth.otp_sent"
	KeyAuthOTPVerified     = "auth.otp_verified"
	KeyAuthPasswordUpdated = "auth.password_updated"
	KeyAuthPushTokenSaved  = "auth.push_token_saved"
	KeyAdminAccessDenied   = "admin.access_denied"

	// Validation
	KeyValidationInvalid = "validation.invalid"
	KeyInvalidID         = "validation.invalid_id"

	// Catalog
	KeyProductCreated  = "product.created"
	KeyProductUpdated  = "product.updated"
	KeyProductDeleted  = "product.deleted"
	KeyProductRelinked = "product.relinked"
	KeyVariantCreated  = "variant.created"
	KeyVariantUpdated  = "variant.updated"
	KeyVariantDeleted  = "variant.deleted"
	KeyOptionCreated   = "option.created"
	KeyOptionUpdated   = "option.updated"
	KeyOptionDeleted   = "option.deleted"

	// Engagement
	KeyReviewDeleted        = "review.deleted"
	KeyWishlistAdded        = "wishlist.added"
	KeyWishlistRemoved      = "wishlist.removed"
	KeyNotificationSent     = "notification.sent"
	KeyNotificationsAllRead = "notification.all_read"

	// Storefront
	KeyBannerDeleted = "banner.deleted"
	KeyStoreDeleted  = "store.deleted"
	KeyUserDeleted   = "user.deleted"
)
