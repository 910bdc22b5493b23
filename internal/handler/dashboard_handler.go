package handler

import (
	"net/http"

	"github.com/kantong/kantong-backend/internal/middleware"
	"github.com/kantong/kantong-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// DashboardResponse represents the dashboard API response
type DashboardResponse struct {
	TotalBalance        string                     `json:"totalBalance"`
	AccountCount        int                        `json:"accountCount"`
	StartDate           string                     `json:"startDate"`
	EndDate             string                     `json:"endDate"`
	Month               TransactionSummaryResponse `json:"month"`
	Budgets             PortfolioSummaryResponse   `json:"budgets"`
	Goals               []GoalResponse             `json:"goals"`
	RecentTransactions  []TransactionResponse      `json:"recentTransactions"`
	UnreadNotifications int64                      `json:"unreadNotifications"`
}

// GetDashboard godoc
// @Summary Dashboard
// @Description Balances, this month's cash flow, budget health, top goals and recent activity
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param asOf query string false "Evaluation date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} DashboardResponse
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	asOf, ok := parseAsOf(c)
	if !ok {
		return NewFieldError(c, "asOf", "Must be YYYY-MM-DD")
	}

	dashboard, err := h.dashboardService.GetDashboard(c.Request().Context(), workspaceID, asOf)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to get dashboard")
		return NewInternalError(c, "Failed to get dashboard")
	}

	return c.JSON(http.StatusOK, DashboardResponse{
		TotalBalance:        money(dashboard.TotalBalance),
		AccountCount:        dashboard.AccountCount,
		StartDate:           formatDate(dashboard.Period.Start),
		EndDate:             formatDate(dashboard.Period.End),
		Month:               toSummaryResponse(dashboard.MonthSummary),
		Budgets:             toPortfolioResponse(dashboard.Budgets, asOf),
		Goals:               toGoalResponses(dashboard.Goals),
		RecentTransactions:  toTransactionResponses(dashboard.RecentTransactions),
		UnreadNotifications: dashboard.UnreadNotifications,
	})
}
