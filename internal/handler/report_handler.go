package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/middleware"
	"github.com/kantong/kantong-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ReportHandler serves period reports
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// MonthlyReportResponse summarises one calendar month
type MonthlyReportResponse struct {
	Year          int                        `json:"year"`
	Month         int                        `json:"month"`
	StartDate     string                     `json:"startDate"`
	EndDate       string                     `json:"endDate"`
	Summary       TransactionSummaryResponse `json:"summary"`
	SavingsRate   string                     `json:"savingsRate"`
	Previous      TransactionSummaryResponse `json:"previous"`
	IncomeChange  string                     `json:"incomeChange"`
	ExpenseChange string                     `json:"expenseChange"`
}

// TrendPointResponse is one month of the trend series
type TrendPointResponse struct {
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
	Net      string `json:"net"`
}

// CategoryReportResponse is the expense share per category
type CategoryReportResponse struct {
	Period        string                  `json:"period"`
	StartDate     string                  `json:"startDate"`
	EndDate       string                  `json:"endDate"`
	TotalExpenses string                  `json:"totalExpenses"`
	Categories    []CategoryTotalResponse `json:"categories"`
}

// GetMonthlyReport godoc
// @Summary Monthly report
// @Description Income, expenses, savings rate and category breakdown of one month, compared with the month before
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year, defaults to the current year"
// @Param month query int false "Month 1-12, defaults to the current month"
// @Success 200 {object} MonthlyReportResponse
// @Failure 400 {object} ProblemDetails
// @Router /reports/monthly [get]
func (h *ReportHandler) GetMonthlyReport(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	now := time.Now().UTC()
	year := now.Year()
	month := int(now.Month())
	if yearStr := c.QueryParam("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil {
			return NewFieldError(c, "year", "Must be a valid integer")
		}
		year = parsed
	}
	if monthStr := c.QueryParam("month"); monthStr != "" {
		parsed, err := strconv.Atoi(monthStr)
		if err != nil {
			return NewFieldError(c, "month", "Must be a valid integer")
		}
		month = parsed
	}

	report, err := h.reportService.GetMonthlyReport(workspaceID, year, month)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return NewFieldError(c, "month", "Must be between 1 and 12")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int("year", year).Int("month", month).Msg("Failed to get monthly report")
		return NewInternalError(c, "Failed to get monthly report")
	}

	return c.JSON(http.StatusOK, MonthlyReportResponse{
		Year:          report.Year,
		Month:         report.Month,
		StartDate:     formatDate(report.Period.Start),
		EndDate:       formatDate(report.Period.End),
		Summary:       toSummaryResponse(report.Summary),
		SavingsRate:   money(report.SavingsRate),
		Previous:      toSummaryResponse(report.Previous),
		IncomeChange:  money(report.IncomeChange),
		ExpenseChange: money(report.ExpenseChange),
	})
}

// GetTrend godoc
// @Summary Income and expense trend
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param months query int false "Number of months, 1-24 (default 6)"
// @Success 200 {array} TrendPointResponse
// @Failure 400 {object} ProblemDetails
// @Router /reports/trend [get]
func (h *ReportHandler) GetTrend(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	months := 0
	if monthsStr := c.QueryParam("months"); monthsStr != "" {
		parsed, err := strconv.Atoi(monthsStr)
		if err != nil {
			return NewFieldError(c, "months", "Must be a valid integer")
		}
		if parsed < 1 {
			return NewFieldError(c, "months", "Must be between 1 and 24")
		}
		months = parsed
	}

	points, err := h.reportService.GetTrend(workspaceID, months, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return NewFieldError(c, "months", "Must be between 1 and 24")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to get trend")
		return NewInternalError(c, "Failed to get trend")
	}

	response := make([]TrendPointResponse, len(points))
	for i, p := range points {
		response[i] = TrendPointResponse{
			Year:     p.Year,
			Month:    p.Month,
			Income:   money(p.Income),
			Expenses: money(p.Expenses),
			Net:      money(p.Net),
		}
	}
	return c.JSON(http.StatusOK, response)
}

// GetCategoryReport handles GET /api/v1/reports/categories
func (h *ReportHandler) GetCategoryReport(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	kind := domain.PeriodMonthly
	if p := c.QueryParam("period"); p != "" {
		kind = domain.PeriodKind(p)
		if !kind.IsValid() {
			return NewFieldError(c, "period", "Period must be one of: monthly, weekly, yearly")
		}
	}
	ref := time.Now().UTC()
	if r := c.QueryParam("ref"); r != "" {
		parsed, err := parseDate(r)
		if err != nil {
			return NewFieldError(c, "ref", "Must be YYYY-MM-DD")
		}
		ref = parsed
	}

	report, err := h.reportService.GetCategoryReport(workspaceID, kind, ref)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Str("period", string(kind)).Msg("Failed to get category report")
		return NewInternalError(c, "Failed to get category report")
	}

	return c.JSON(http.StatusOK, CategoryReportResponse{
		Period:        string(report.Period),
		StartDate:     formatDate(report.Window.Start),
		EndDate:       formatDate(report.Window.End),
		TotalExpenses: money(report.TotalExpenses),
		Categories:    toCategoryTotals(report.Categories),
	})
}
