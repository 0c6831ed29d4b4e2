package router

import (
	"time"

	"vendora/config"
	"vendora/internal/auth"
	"vendora/internal/domain"
	"vendora/internal/handler"
	"vendora/internal/middleware"
	"vendora/internal/repository"
	"vendora/internal/service"
	"vendora/internal/ws"
	"vendora/pkg/cloudinary"
	"vendora/pkg/gateway"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client, provider gateway.Provider) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Skip gin.Logger() to reduce log noise; use gin.Default() if you need request logging
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	fileRepo := repository.NewFileRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	favouriteRepo := repository.NewFavouriteRepository(db)
	chatRepo := repository.NewChatRepository(db)

	chatHub := ws.NewChatHub()
	blacklist := auth.NewBlacklist()

	// Services
	mailSvc := service.NewMailService(&cfg.Mail)
	authSvc := service.NewAuthService(cfg, userRepo, mailSvc)
	settleSvc := service.NewSettlementService(paymentRepo, fileRepo, chatRepo)
	purchaseSvc := service.NewPurchaseService(cfg, paymentRepo, fileRepo, provider)

	// Handlers
	authHandler := handler.NewAuthHandler(cfg, authSvc, userRepo, blacklist)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc)
	fileHandler := handler.NewFileHandler(fileRepo, categoryRepo)
	userHandler := handler.NewUserHandler(userRepo, fileRepo, paymentRepo, favouriteRepo)
	creatorHandler := handler.NewCreatorHandler(fileRepo, categoryRepo, paymentRepo, cloud)
	paymentHandler := handler.NewPaymentHandler(cfg, purchaseSvc, settleSvc, paymentRepo, userRepo, provider)
	webhookHandler := handler.NewPaymentWebhookHandler(cfg, paymentRepo, settleSvc)
	chatHandler := handler.NewChatHandler(chatRepo, chatHub)
	adminHandler := handler.NewAdminHandler(userRepo, fileRepo, categoryRepo)

	authMw := middleware.AuthRequired(&cfg.JWT, blacklist)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authMw, authHandler.Logout)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/forgot-password", authHandler.ForgotPassword)
			authGroup.POST("/reset-password", authHandler.ResetPassword)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
		}

		files := api.Group("/files")
		{
			files.GET("", fileHandler.List)
			files.GET("/categories", fileHandler.Categories)
			files.GET("/:slug", fileHandler.Details)
		}
		// Download sits outside the slug group to keep the purchase gate on
		// the numeric id the entitlement check uses.
		api.GET("/files/download/:fileId", authMw, middleware.RequirePurchase(paymentRepo), fileHandler.Download)

		api.POST("/purchase/:fileId", authMw, paymentHandler.Purchase)
		api.GET("/payment/verify/:reference", paymentHandler.Verify)
		api.POST("/payment/webhook/paystack", webhookHandler.Handle)

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", userHandler.GetProfile)
			me.PATCH("/profile", userHandler.UpdateProfile)
			me.GET("/purchases", userHandler.Purchases)
			me.GET("/favourites", userHandler.ListFavourites)
			me.POST("/favourites/:fileId", userHandler.AddFavourite)
			me.DELETE("/favourites/:fileId", userHandler.RemoveFavourite)
		}

		chats := api.Group("/chats")
		chats.Use(authMw)
		{
			chats.GET("", chatHandler.ListChats)
			chats.GET("/:chatId/messages", chatHandler.ListMessages)
			chats.POST("/:chatId/messages", chatHandler.SendMessage)
			chats.POST("/:chatId/read", chatHandler.MarkRead)
		}

		creator := api.Group("/creator")
		creator.Use(authMw, middleware.RequireRole(domain.RoleCreator, domain.RoleAdmin))
		{
			creator.POST("/files", creatorHandler.Upload)
			creator.GET("/files", creatorHandler.MyFiles)
			creator.GET("/files/:slug", creatorHandler.GetFile)
			creator.PATCH("/files/:slug", creatorHandler.UpdateFile)
			creator.DELETE("/files/:slug", creatorHandler.DeleteFile)
			creator.GET("/dashboard", creatorHandler.Dashboard)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.RequireRole(domain.RoleAdmin))
		{
			admin.POST("/categories", adminHandler.CreateCategory)
			admin.PUT("/categories/:id", adminHandler.UpdateCategory)
			admin.DELETE("/categories/:id", adminHandler.DeleteCategory)
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/files", adminHandler.ListFiles)
			admin.PATCH("/files/:id/status", adminHandler.ModerateFile)
		}
	}

	r.GET("/ws/chat", handler.UpgradeChatWS(&cfg.JWT, chatHub, chatRepo))

	return r
}
