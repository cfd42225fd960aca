// internal/router/router.go
package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javajoker/tailor-backend/internal/config"
	"github.com/javajoker/tailor-backend/internal/handlers"
	"github.com/javajoker/tailor-backend/internal/middleware"
	"github.com/javajoker/tailor-backend/internal/services"
)

// Dependencies are the outbound integrations the API talks to.
type Dependencies struct {
	Store   services.ImageStore
	Mailer  services.Mailer
	Pusher  services.Pusher
	TryOn   services.TryOnProxy
	Fetcher services.ImageFetcher

	// Done stops the rate limiter janitors. Nil leaves them unstarted.
	Done <-chan struct{}
}

// DefaultDependencies wires the production integrations from configuration.
func DefaultDependencies(cfg *config.Config) (Dependencies, error) {
	store, err := services.NewImageStore(cfg)
	if err != nil {
		return Dependencies{}, err
	}
	tryOn := services.NewRapidAPIClient(cfg.TryOn)
	return Dependencies{
		Store:   store,
		Mailer:  services.NewSMTPMailer(cfg.Email),
		Pusher:  services.NewExpoPushClient(cfg.Push),
		TryOn:   tryOn,
		Fetcher: tryOn,
	}, nil
}

func Initialize(db *gorm.DB, cfg *config.Config, deps Dependencies) *gin.Engine {
	catalog := cfg.Catalog

	// Initialize services
	aggregator := services.NewRatingAggregator(db)
	productService := services.NewProductService(db, deps.Store, catalog)
	variantService := services.NewVariantService(db, deps.Store)
	optionService := services.NewOptionService(db, deps.Store)
	reviewService := services.NewReviewService(db, aggregator, catalog.ReviewsPerPage)
	wishlistService := services.NewWishlistService(db, catalog.WishlistPerPage)
	notificationService := services.NewNotificationService(db, deps.Pusher, catalog.NotificationsPerPage, cfg.Push.Timeout)
	tryOnService := services.NewTryOnService(db, deps.Store, deps.TryOn, deps.Fetcher)
	authService := services.NewAuthService(db, deps.Mailer, cfg.JWT)
	userService := services.NewUserService(db, aggregator)
	bannerService := services.NewBannerService(db, deps.Store)
	storeService := services.NewStoreService(db, deps.Store)
	adminService := services.NewAdminService(db)

	// Initialize handlers
	productHandler := handlers.NewProductHandler(productService)
	variantHandler := handlers.NewVariantHandler(variantService)
	optionHandler := handlers.NewOptionHandler(optionService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	wishlistHandler := handlers.NewWishlistHandler(wishlistService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	tryOnHandler := handlers.NewTryOnHandler(tryOnService)
	authHandler := handlers.NewAuthHandler(authService, cfg.JWT.CookieDays, cfg.IsProduction())
	userHandler := handlers.NewUserHandler(userService)
	storefrontHandler := handlers.NewStorefrontHandler(bannerService, storeService)
	adminHandler := handlers.NewAdminHandler(adminService)
	healthHandler := handlers.NewHealthHandler(db)

	general, signIn := middleware.Limiters(cfg.RateLimit)
	if deps.Done != nil {
		go general.Janitor(deps.Done)
		go signIn.Janitor(deps.Done)
	}

	// Initialize Gin router
	r := gin.New()
	r.MaxMultipartMemory = 10 << 20

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.I18nMiddleware())

	r.GET("/health", healthHandler.Check)

	if local, ok := deps.Store.(*services.LocalImageStore); ok {
		r.Static("/uploads", local.Dir())
	}

	authRequired := middleware.AuthRequired(db)
	admin := []gin.HandlerFunc{authRequired, middleware.AdminRequired()}

	v1 := r.Group("/api/v1")
	v1.Use(general.Middleware())
	{
		// Catalog
		v1.GET("/homepage-sections", productHandler.GetHomepageSections)
		v1.GET("/products", productHandler.GetProducts)
		v1.POST("/products", append(admin, productHandler.CreateProduct)...)
		v1.GET("/product/:id", productHandler.GetProduct)
		v1.PATCH("/product/:id", append(admin, productHandler.UpdateProduct)...)
		v1.DELETE("/product/:id", append(admin, productHandler.DeleteProduct)...)
		v1.GET("/product-page/:id", productHandler.GetProductPage)

		variants := v1.Group("/products/:productId/variants")
		{
			variants.GET("", variantHandler.ListVariants)
			variants.GET("/:id", variantHandler.GetVariant)
			variants.POST("", append(admin, variantHandler.CreateVariant)...)
			variants.PATCH("/:id", append(admin, variantHandler.UpdateVariant)...)
			variants.DELETE("/:id", append(admin, variantHandler.DeleteVariant)...)
			variants.PUT("/:id/default", append(admin, variantHandler.SetDefaultVariant)...)
		}

		v1.GET("/designs", optionHandler.ListDesigns)
		v1.POST("/designs", append(admin, optionHandler.CreateDesign)...)
		v1.PATCH("/designs/:id", append(admin, optionHandler.UpdateDesign)...)
		v1.DELETE("/designs/:id", append(admin, optionHandler.DeleteDesign)...)
		v1.GET("/fabrics", optionHandler.ListFabrics)
		v1.POST("/fabrics", append(admin, optionHandler.CreateFabric)...)
		v1.PATCH("/fabrics/:id", append(admin, optionHandler.UpdateFabric)...)
		v1.DELETE("/fabrics/:id", append(admin, optionHandler.DeleteFabric)...)
		v1.GET("/colors", optionHandler.ListColors)
		v1.POST("/colors", append(admin, optionHandler.CreateColor)...)
		v1.PATCH("/colors/:id", append(admin, optionHandler.UpdateColor)...)
		v1.DELETE("/colors/:id", append(admin, optionHandler.DeleteColor)...)

		// Reviews
		v1.GET("/product/:id/reviews", reviewHandler.ListReviews)
		v1.POST("/product/:id/reviews", authRequired, reviewHandler.CreateReview)
		v1.PUT("/reviews/:id", authRequired, reviewHandler.UpdateReview)
		v1.DELETE("/reviews/:id", authRequired, reviewHandler.DeleteReview)

		// Wishlist
		wishlist := v1.Group("/wishlist", authRequired)
		{
			wishlist.POST("/toggle", wishlistHandler.Toggle)
			wishlist.GET("/ids", wishlistHandler.ProductIDs)
			wishlist.GET("/products", wishlistHandler.Products)
		}

		// Notifications
		notifications := v1.Group("/notifications", authRequired)
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/status", notificationHandler.Status)
			notifications.PUT("/read-all", notificationHandler.MarkAllRead)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
		}

		// Virtual try-on
		tryOn := v1.Group("/tryon", authRequired)
		{
			tryOn.POST("", tryOnHandler.Create)
			tryOn.GET("/history", tryOnHandler.History)
			tryOn.GET("/:id", tryOnHandler.Get)
		}

		// Authentication
		v1.POST("/auth/register", signIn.Middleware(), authHandler.Register)
		v1.POST("/auth/login", signIn.Middleware(), authHandler.Login)
		v1.POST("/auth/verify-otp", signIn.Middleware(), authHandler.VerifyOTP)
		v1.GET("/auth/logout", authRequired, authHandler.Logout)
		v1.POST("/password/forgot", signIn.Middleware(), authHandler.ForgotPassword)
		v1.POST("/password/verify-otp", signIn.Middleware(), authHandler.VerifyResetOTP)
		v1.PATCH("/password/reset", signIn.Middleware(), authHandler.ResetPassword)

		// Profile
		me := v1.Group("/me", authRequired)
		{
			me.GET("", userHandler.GetProfile)
			me.PUT("/update", userHandler.UpdateProfile)
			me.PUT("/password", userHandler.UpdatePassword)
			me.PUT("/push-token", userHandler.UpdatePushToken)
		}

		// Storefront
		v1.GET("/banners", storefrontHandler.PublicBanners)
		v1.GET("/stores", storefrontHandler.PublicStores)

		// Admin
		v1.POST("/admin/auth", signIn.Middleware(), authHandler.AdminSignIn)
		adminGroup := v1.Group("/admin", admin...)
		{
			adminGroup.GET("/logout", authHandler.AdminLogout)
			adminGroup.GET("/dashboard", adminHandler.GetDashboard)

			adminGroup.GET("/users", userHandler.ListUsers)
			adminGroup.PUT("/user/:id", userHandler.AdminUpdateUser)
			adminGroup.DELETE("/user/:id", userHandler.DeleteUser)

			adminGroup.GET("/products/integrity", productHandler.CheckIntegrity)
			adminGroup.POST("/products/:id/relink", productHandler.RelinkProduct)

			adminGroup.POST("/notifications/send", notificationHandler.Send)
			adminGroup.POST("/notifications/send-all", notificationHandler.SendAll)

			adminGroup.GET("/banners", storefrontHandler.AllBanners)
			adminGroup.POST("/banners", storefrontHandler.CreateBanner)
			adminGroup.GET("/banner/:id", storefrontHandler.GetBanner)
			adminGroup.PUT("/banner/:id", storefrontHandler.UpdateBanner)
			adminGroup.DELETE("/banner/:id", storefrontHandler.DeleteBanner)

			adminGroup.GET("/stores", storefrontHandler.AllStores)
			adminGroup.POST("/stores", storefrontHandler.CreateStore)
			adminGroup.GET("/store/:id", storefrontHandler.GetStore)
			adminGroup.PUT("/store/:id", storefrontHandler.UpdateStore)
			adminGroup.DELETE("/store/:id", storefrontHandler.DeleteStore)
		}
	}

	return r
}
