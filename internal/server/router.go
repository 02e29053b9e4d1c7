// Package server assembles the HTTP routes of the API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"expensely/internal/handlers"
	"expensely/internal/middleware"
	"expensely/internal/services"

	_ "expensely/internal/docs" // registers the swagger spec
)

// Services are the business services the routes are served by.
type Services struct {
	Users      services.UserServicer
	Categories services.CategoryServicer
	Expenses   services.ExpenseServicer
	Reports    services.ReportServicer
	Audit      services.AuditServicer
}

// Options toggles optional parts of the router.
type Options struct {
	AdminAPIKey    string
	RequestLogging bool
	Swagger        bool
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(svc Services, opts Options) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Users, svc.Audit)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories)
	expenseHandler := handlers.NewExpenseHandler(svc.Expenses, svc.Audit)
	reportHandler := handlers.NewReportHandler(svc.Reports)
	adminHandler := handlers.NewAdminHandler(svc.Users, svc.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	if opts.RequestLogging {
		router.Use(middleware.RequestLogging())
	}
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	if opts.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	categories := protected.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)

	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.ListExpenses)
	expenses.GET("/pending", expenseHandler.ListPendingExpenses)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)
	expenses.POST("/:id/submit", expenseHandler.SubmitExpense)
	expenses.POST("/:id/approve", expenseHandler.ApproveExpense)
	expenses.POST("/:id/reject", expenseHandler.RejectExpense)

	protected.GET("/reports/summary", reportHandler.GetSummary)

	// Internal administration, guarded by API key instead of a user token
	internal := v1.Group("/internal")
	internal.Use(middleware.APIKeyAuth(opts.AdminAPIKey))
	internal.PUT("/users/:id/role", adminHandler.UpdateUserRole)

	return router
}
