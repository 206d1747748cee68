// Package server assembles the HTTP API: middleware, swagger and the
// /api/v1 routes backed by the user service and the profile registry.
package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "expensely/internal/docs" // Import swagger docs
	"expensely/internal/handlers"
	"expensely/internal/middleware"
	"expensely/internal/services"
	"expensely/internal/validator"
)

// Deps are the collaborators the routes are served from.
type Deps struct {
	Users         services.UserServicer
	Audit         services.AuditServicer
	Tokens        *middleware.TokenManager
	Profiles      handlers.ProfileProvider
	CORSOrigins   []string
	SecureCookies bool
}

// NewRouter builds the Gin engine with every route registered.
func NewRouter(deps Deps) *gin.Engine {
	validator.Register()

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Audit, deps.Tokens, deps.SecureCookies)
	transactionHandler := handlers.NewTransactionHandler(deps.Profiles)
	themeHandler := handlers.NewThemeHandler(deps.Profiles)
	preferencesHandler := handlers.NewPreferencesHandler(deps.Profiles)
	budgetHandler := handlers.NewBudgetHandler(deps.Profiles)
	summaryHandler := handlers.NewSummaryHandler(deps.Profiles)
	notificationHandler := handlers.NewNotificationHandler(deps.Profiles)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.ClientHints())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", handlers.HealthCheck)

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))

	protected.GET("/auth/me", authHandler.Me)

	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("/export", transactionHandler.ExportTransactions)
	transactions.POST("/seed", transactionHandler.SeedTransactions)
	transactions.POST("/receipt", transactionHandler.UploadReceipt)
	transactions.PATCH("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	protected.GET("/preferences", preferencesHandler.GetPreferences)
	protected.PUT("/preferences", preferencesHandler.UpdatePreferences)

	protected.GET("/theme", themeHandler.GetTheme)
	protected.PUT("/theme", themeHandler.SetTheme)
	protected.POST("/theme/toggle", themeHandler.ToggleTheme)

	budgets := protected.Group("/budgets")
	budgets.GET("", budgetHandler.ListBudgets)
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("/progress", budgetHandler.GetBudgetProgress)
	budgets.PATCH("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	protected.GET("/summary", summaryHandler.GetSummary)

	notifications := protected.Group("/notifications")
	notifications.GET("", notificationHandler.ListNotifications)
	notifications.POST("", notificationHandler.ShowNotification)
	notifications.DELETE("/:id", notificationHandler.DismissNotification)

	return router
}

// New returns the router wrapped in CORS handling. Credentials are allowed
// so browsers send the session cookies cross-origin.
func New(deps Deps) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID", middleware.ColorSchemeHeader},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	})(NewRouter(deps))
}

// SplitOrigins parses a comma-separated CORS_ORIGIN value.
func SplitOrigins(v string) []string {
	var out []string
	for _, o := range strings.Split(v, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
