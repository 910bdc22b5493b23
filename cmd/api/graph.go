package main

import (
	"time"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/handler"
	"github.com/kantong/kantong-backend/internal/service"
	"github.com/kantong/kantong-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// dataRepos is one backing store. notifications is nil for the guest store.
type dataRepos struct {
	accounts      domain.AccountRepository
	transactions  domain.TransactionRepository
	budgets       domain.BudgetRepository
	goals         domain.GoalRepository
	notifications domain.NotificationRepository
}

// liveDeps are only wired for signed-in users; the zero value serves the demo
type liveDeps struct {
	prefs    *service.PreferencesService
	alerts   *service.AlertService
	receipts *service.ReceiptService
	events   websocket.EventPublisher
}

// newDataHandlers builds the service graph over one store
func newDataHandlers(repos dataRepos, deps liveDeps) *handler.DataHandlers {
	events := deps.events
	if events == nil {
		events = &websocket.NoOpPublisher{}
	}

	accountService := service.NewAccountService(repos.accounts, deps.prefs)
	accountService.SetEventPublisher(events)

	transactionService := service.NewTransactionService(repos.transactions, repos.accounts, repos.budgets, deps.alerts)
	transactionService.SetEventPublisher(events)

	budgetService := service.NewBudgetService(repos.budgets, repos.transactions)
	budgetService.SetEventPublisher(events)

	goalService := service.NewGoalService(repos.goals, deps.alerts)
	goalService.SetEventPublisher(events)

	dashboardService := service.NewDashboardService(repos.accounts, repos.transactions, repos.budgets, repos.goals, repos.notifications)

	return &handler.DataHandlers{
		Account:     handler.NewAccountHandler(accountService),
		Transaction: handler.NewTransactionHandler(transactionService, service.NewTranscriptService(repos.accounts, repos.budgets), deps.receipts),
		Budget:      handler.NewBudgetHandler(budgetService),
		Goal:        handler.NewGoalHandler(goalService),
		Report:      handler.NewReportHandler(service.NewReportService(repos.transactions)),
		Dashboard:   handler.NewDashboardHandler(dashboardService),
	}
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
