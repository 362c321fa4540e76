package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lucasgday/receivables-sub000/internal/config"
	"github.com/lucasgday/receivables-sub000/internal/handlers"
	"github.com/lucasgday/receivables-sub000/internal/middleware"
)

func Register(router *gin.Engine, db *gorm.DB, cfg config.Config, log *zap.Logger) {
	router.Use(corsMiddleware(cfg.AllowedOriginsRaw))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "receivables-backend"})
	})

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := handlers.NewAuthHandler(db, cfg, log)
	customerHandler := handlers.NewCustomerHandler(db)
	categoryHandler := handlers.NewCategoryHandler(db)
	companyHandler := handlers.NewCompanyHandler(db)
	invoiceHandler := handlers.NewInvoiceHandler(db, cfg, log)
	movementHandler := handlers.NewMovementHandler(db, cfg, log)
	recurringHandler := handlers.NewRecurringHandler(db, log)
	dashboardHandler := handlers.NewDashboardHandler(db)
	settingsHandler := handlers.NewSettingsHandler(db)

	api := router.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/forgot-password/start", authHandler.ForgotPasswordStart)
		api.POST("/auth/forgot-password/verify", authHandler.ForgotPasswordVerify)
		api.POST("/auth/refresh", authHandler.Refresh)
		api.POST("/auth/logout", authHandler.Logout)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthRequired(cfg.JwtSecret))
	{
		protected.GET("/me", authHandler.Me)
		protected.PUT("/me", authHandler.UpdateProfile)
		protected.PUT("/me/password", authHandler.ChangePassword)
		protected.GET("/dashboard", dashboardHandler.Get)
		protected.GET("/settings/logo", settingsHandler.GetLogo)
		protected.PUT("/settings/logo", middleware.RequireAnyRole("admin"), settingsHandler.UpdateLogo)

		protected.GET("/customers", customerHandler.List)
		protected.POST("/customers", customerHandler.Create)
		protected.PUT("/customers/:id", customerHandler.Update)
		protected.DELETE("/customers/:id", customerHandler.Delete)

		protected.GET("/categories", categoryHandler.List)
		protected.POST("/categories", categoryHandler.Create)
		protected.PUT("/categories/:id", categoryHandler.Update)
		protected.DELETE("/categories/:id", categoryHandler.Delete)

		protected.GET("/companies", companyHandler.List)
		protected.POST("/companies", companyHandler.Create)
		protected.PUT("/companies/:id", companyHandler.Update)
		protected.DELETE("/companies/:id", companyHandler.Delete)

		protected.GET("/invoices", invoiceHandler.List)
		protected.POST("/invoices", invoiceHandler.Create)
		protected.PUT("/invoices/:id", invoiceHandler.Update)
		protected.DELETE("/invoices/:id", invoiceHandler.Delete)
		protected.GET("/invoices/:id/pdf", invoiceHandler.PDF)
		protected.POST("/invoices/:id/send", invoiceHandler.Send)

		protected.POST("/movements/import", movementHandler.Import)
		protected.GET("/movements", movementHandler.List)
		protected.GET("/movements/candidates", movementHandler.Candidates)
		protected.POST("/movements/:id/link", movementHandler.Link)
		protected.POST("/movements/:id/unlink", movementHandler.Unlink)
		protected.PUT("/movements/:id", movementHandler.Update)
		protected.DELETE("/movements/:id", movementHandler.Delete)

		protected.GET("/recurring", recurringHandler.List)
		protected.POST("/recurring", recurringHandler.Create)
		protected.PUT("/recurring/:id", recurringHandler.Update)
		protected.DELETE("/recurring/:id", recurringHandler.Delete)
		protected.POST("/recurring/run", recurringHandler.Run)
	}
}

func corsMiddleware(allowed string) gin.HandlerFunc {
	origins := []string{}
	for _, origin := range strings.Split(allowed, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}

	allowAll := len(origins) == 0

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowAll {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowedOrigin := range origins {
				if origin == allowedOrigin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					c.Writer.Header().Set("Vary", "Origin")
					break
				}
			}
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
