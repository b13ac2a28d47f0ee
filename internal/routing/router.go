// Package routing assembles the gin engine and the route table of the account API.
package routing

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"account-core/internal/config"
	"account-core/internal/handlers"
	"account-core/internal/managers"
	"account-core/internal/middleware"
	"account-core/internal/schemas"
	"account-core/internal/services"
)

func InitRouter(cfg *config.Config, databaseMgr managers.DatabaseMgr, accountService services.AccountSvc) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	// Lets ctx.Value reach the request context, where the trace id lives.
	router.ContextWithFallback = true

	setupCommonMiddleware(router, cfg)
	setupRoutes(router, cfg, databaseMgr, accountService)

	return router
}

func setupCommonMiddleware(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.InjectTrace())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CorsAllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", "Origin"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Trace-Id"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
	})
	router.Use(middleware.SanitizePath())
	router.Use(middleware.LogRequest())
}

func setupRoutes(router *gin.Engine, cfg *config.Config, databaseMgr managers.DatabaseMgr, accountService services.AccountSvc) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, &schemas.MetadataDTO{
			ApiVersion: cfg.APIVersion,
			ApiName:    "Account Core",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		if err := databaseMgr.Healthy(c.Request.Context()); err != nil {
			c.String(http.StatusInternalServerError, "Database not responding")
			return
		}
		c.Status(http.StatusOK)
	})

	accountHandler := handlers.NewAccountHandler(accountService)
	bearer := middleware.RequireBearerToken()
	admin := middleware.RequireAdmin(accountService)

	api := router.Group("/api")
	{
		api.POST("/login", middleware.ValidateAndSanitizeStruct[schemas.LoginRequest](), accountHandler.Login)

		account := api.Group("/account")
		account.POST("", middleware.ValidateAndSanitizeStruct[schemas.RegistrationRequest](), accountHandler.Register)
		account.POST("/activate", middleware.ValidateAndSanitizeStruct[schemas.ActivationRequest](), accountHandler.Activate)
		account.GET("", bearer, accountHandler.GetAccount)
		account.PUT("", bearer, middleware.ValidateAndSanitizeStruct[schemas.UpdateProfileRequest](), accountHandler.UpdateAccount)
		account.PUT("/password", bearer, middleware.ValidateAndSanitizeStruct[schemas.ChangePasswordRequest](), accountHandler.ChangePassword)
		account.DELETE("/:id", bearer, accountHandler.DeleteAccount)
		account.POST("/reset/password", middleware.ValidateAndSanitizeStruct[schemas.PasswordResetRequest](), accountHandler.RequestPasswordReset)
		account.PUT("/reset/password/:reset_key", middleware.ValidateAndSanitizeStruct[schemas.PasswordResetCompletion](), accountHandler.ResetPassword)
		account.GET("/verify", accountHandler.VerifySession)
		account.GET("/verify/admin", accountHandler.VerifyAdminSession)

		api.GET("/accounts", bearer, admin, accountHandler.ListAccounts)
		api.GET("/authorities", bearer, admin, accountHandler.ListAuthorities)

		adminAccount := api.Group("/admin/account/:id", bearer, admin)
		adminAccount.GET("", accountHandler.GetAccountByID)
		adminAccount.PUT("", middleware.ValidateAndSanitizeStruct[schemas.UpdateProfileRequest](), accountHandler.UpdateAccountByID)
		adminAccount.DELETE("", accountHandler.DeleteAccountByID)
		adminAccount.PUT("/admin", accountHandler.GrantAdmin)
		adminAccount.DELETE("/admin", accountHandler.RevokeAdmin)
	}
}
