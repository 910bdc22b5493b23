package handler

import (
	"github.com/kantong/kantong-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// DataHandlers serve the finance data of one store. The live API and the
// guest demo each get their own set.
type DataHandlers struct {
	Account     *AccountHandler
	Transaction *TransactionHandler
	Budget      *BudgetHandler
	Goal        *GoalHandler
	Report      *ReportHandler
	Dashboard   *DashboardHandler

	// TranscriptLimit guards transcript parsing when set
	TranscriptLimit echo.MiddlewareFunc
}

// AccountHandlers only exist for signed-in users
type AccountHandlers struct {
	Auth         *AuthHandler
	Profile      *ProfileHandler
	Preferences  *PreferencesHandler
	Notification *NotificationHandler
	Receipt      *ReceiptHandler
	WebSocket    *WebSocketHandler
}

// RegisterRoutes sets up the authenticated API under /api/v1
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, data *DataHandlers, account *AccountHandlers) {
	api := e.Group("/api/v1")

	// The callback runs before the user has a workspace
	auth := api.Group("/auth")
	auth.POST("/callback", account.Auth.Callback, authMiddleware.AuthenticateUser())
	auth.GET("/me", account.Auth.Me, authMiddleware.Authenticate())

	protected := api.Group("", authMiddleware.Authenticate())
	registerDataRoutes(protected, data)

	protected.GET("/profile", account.Profile.GetProfile)
	protected.PUT("/profile", account.Profile.UpdateProfile)

	protected.GET("/preferences", account.Preferences.GetPreferences)
	protected.PUT("/preferences", account.Preferences.UpdatePreferences)

	notifications := protected.Group("/notifications")
	notifications.GET("", account.Notification.GetNotifications)
	notifications.PATCH("/:id/read", account.Notification.MarkRead)
	notifications.POST("/read-all", account.Notification.MarkAllRead)

	receipts := protected.Group("/transactions/:id/receipt")
	receipts.POST("", account.Receipt.UploadReceipt)
	receipts.GET("", account.Receipt.GetReceipt)
	receipts.DELETE("", account.Receipt.DeleteReceipt)

	// Browsers cannot send headers on the upgrade, the token travels in the query
	e.GET("/ws", account.WebSocket.HandleWS)
}

// RegisterDemoRoutes sets up the guest demo under /api/v1/demo. Every request
// acts on the shared guest workspace and is rate limited per client IP.
func RegisterDemoRoutes(e *echo.Echo, guestWorkspaceID int32, rateLimiter *middleware.RateLimiter, data *DataHandlers) {
	demo := e.Group("/api/v1/demo",
		middleware.RateLimitMiddleware(rateLimiter, middleware.ClientIPKey),
		middleware.GuestWorkspace(guestWorkspaceID),
	)
	registerDataRoutes(demo, data)
}

// RegisterDocsRoutes serves the Swagger UI and the OpenAPI 3 document
func RegisterDocsRoutes(e *echo.Echo) {
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", ServeOpenAPI3Spec)
}

func registerDataRoutes(g *echo.Group, h *DataHandlers) {
	accounts := g.Group("/accounts")
	accounts.POST("", h.Account.CreateAccount)
	accounts.GET("", h.Account.GetAccounts)
	accounts.GET("/:id", h.Account.GetAccount)
	accounts.PUT("/:id", h.Account.UpdateAccount)
	accounts.DELETE("/:id", h.Account.DeleteAccount)

	transactions := g.Group("/transactions")
	transactions.POST("", h.Transaction.CreateTransaction)
	transactions.GET("", h.Transaction.GetTransactions)
	transactions.GET("/summary", h.Transaction.GetSummary)
	var parseMiddleware []echo.MiddlewareFunc
	if h.TranscriptLimit != nil {
		parseMiddleware = append(parseMiddleware, h.TranscriptLimit)
	}
	transactions.POST("/parse-transcript", h.Transaction.ParseTranscript, parseMiddleware...)
	transactions.GET("/:id", h.Transaction.GetTransaction)
	transactions.PUT("/:id", h.Transaction.UpdateTransaction)
	transactions.DELETE("/:id", h.Transaction.DeleteTransaction)

	budgets := g.Group("/budgets")
	budgets.POST("", h.Budget.CreateBudget)
	budgets.GET("", h.Budget.GetBudgets)
	budgets.GET("/summary", h.Budget.GetSummary)
	budgets.GET("/:id", h.Budget.GetBudget)
	budgets.PUT("/:id", h.Budget.UpdateBudget)
	budgets.DELETE("/:id", h.Budget.DeleteBudget)
	budgets.GET("/:id/transactions", h.Budget.GetBudgetTransactions)

	goals := g.Group("/goals")
	goals.POST("", h.Goal.CreateGoal)
	goals.GET("", h.Goal.GetGoals)
	goals.GET("/:id", h.Goal.GetGoal)
	goals.PUT("/:id", h.Goal.UpdateGoal)
	goals.DELETE("/:id", h.Goal.DeleteGoal)
	goals.POST("/:id/contributions", h.Goal.Contribute)
	goals.GET("/:id/contributions", h.Goal.GetContributions)

	reports := g.Group("/reports")
	reports.GET("/monthly", h.Report.GetMonthlyReport)
	reports.GET("/trend", h.Report.GetTrend)
	reports.GET("/categories", h.Report.GetCategoryReport)

	g.GET("/dashboard", h.Dashboard.GetDashboard)
}
