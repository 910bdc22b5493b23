package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/middleware"
	"github.com/kantong/kantong-backend/internal/service"
	"github.com/kantong/kantong-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// CreateBudgetRequest represents the create budget request body
type CreateBudgetRequest struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Period   string `json:"period"`
}

// UpdateBudgetRequest represents the update budget request body
type UpdateBudgetRequest struct {
	Category *string `json:"category,omitempty"`
	Amount   *string `json:"amount,omitempty"`
	Period   *string `json:"period,omitempty"`
}

// BudgetResponse represents a stored budget
type BudgetResponse struct {
	ID           int32  `json:"id"`
	WorkspaceID  int32  `json:"workspaceId"`
	Category     string `json:"category"`
	BudgetAmount string `json:"budgetAmount"`
	Period       string `json:"period"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// BudgetStatusResponse is a budget evaluated against its active period
type BudgetStatusResponse struct {
	BudgetResponse
	StartDate       string  `json:"startDate"`
	EndDate         string  `json:"endDate"`
	DaysRemaining   int     `json:"daysRemaining"`
	SpentAmount     string  `json:"spentAmount"`
	RemainingAmount string  `json:"remainingAmount"`
	PercentUsed     string  `json:"percentUsed"`
	Status          string  `json:"status"`
	OverAmount      *string `json:"overAmount,omitempty"`
}

// PortfolioSummaryResponse totals every budget in the workspace
type PortfolioSummaryResponse struct {
	Budgets         []BudgetStatusResponse `json:"budgets"`
	TotalBudgeted   string                 `json:"totalBudgeted"`
	TotalSpent      string                 `json:"totalSpent"`
	TotalRemaining  string                 `json:"totalRemaining"`
	OnTrackCount    int                    `json:"onTrackCount"`
	OverBudgetCount int                    `json:"overBudgetCount"`
	AnyOver         bool                   `json:"anyOver"`
}

// CreateBudget godoc
// @Summary Create a budget
// @Description One budget per category. Spend is always derived from completed expenses in the active period.
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBudgetRequest true "Budget creation request"
// @Success 201 {object} BudgetResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /budgets [post]
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req CreateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := parseDecimal(req.Amount)
	if err != nil {
		return NewFieldError(c, "amount", "Must be a valid decimal number")
	}
	period := domain.PeriodKind(req.Period)
	if req.Period == "" {
		period = domain.PeriodMonthly
	}
	if !period.IsValid() {
		return NewFieldError(c, "period", "Period must be one of: weekly, monthly, yearly")
	}

	budget, err := h.budgetService.CreateBudget(workspaceID, service.CreateBudgetInput{
		Category: req.Category,
		Amount:   amount,
		Period:   period,
	})
	if err != nil {
		if resp := budgetError(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to create budget")
		return NewInternalError(c, "Failed to create budget")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("budget_id", budget.ID).Str("category", budget.Category).Msg("Budget created")
	return c.JSON(http.StatusCreated, toBudgetResponse(budget))
}

// GetBudgets godoc
// @Summary List budgets with status
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param asOf query string false "Evaluation date (YYYY-MM-DD), defaults to today"
// @Success 200 {array} BudgetStatusResponse
// @Failure 400 {object} ProblemDetails
// @Router /budgets [get]
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	asOf, ok := parseAsOf(c)
	if !ok {
		return NewFieldError(c, "asOf", "Must be YYYY-MM-DD")
	}

	statuses, err := h.budgetService.GetBudgets(workspaceID, asOf)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to get budgets")
		return NewInternalError(c, "Failed to get budgets")
	}
	return c.JSON(http.StatusOK, toBudgetStatusResponses(statuses, asOf))
}

// GetSummary godoc
// @Summary Budget portfolio summary
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param asOf query string false "Evaluation date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} PortfolioSummaryResponse
// @Failure 400 {object} ProblemDetails
// @Router /budgets/summary [get]
func (h *BudgetHandler) GetSummary(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	asOf, ok := parseAsOf(c)
	if !ok {
		return NewFieldError(c, "asOf", "Must be YYYY-MM-DD")
	}

	summary, err := h.budgetService.GetSummary(workspaceID, asOf)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to get budget summary")
		return NewInternalError(c, "Failed to get budget summary")
	}
	return c.JSON(http.StatusOK, toPortfolioResponse(summary, asOf))
}

// GetBudget handles GET /api/v1/budgets/:id
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid budget ID", nil)
	}
	asOf, ok := parseAsOf(c)
	if !ok {
		return NewFieldError(c, "asOf", "Must be YYYY-MM-DD")
	}

	status, err := h.budgetService.GetBudget(workspaceID, id, asOf)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int32("budget_id", id).Msg("Failed to get budget")
		return NewInternalError(c, "Failed to get budget")
	}
	return c.JSON(http.StatusOK, toBudgetStatusResponse(status, asOf))
}

// GetBudgetTransactions godoc
// @Summary Transactions counted toward a budget
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Budget ID"
// @Param asOf query string false "Evaluation date (YYYY-MM-DD), defaults to today"
// @Success 200 {array} TransactionResponse
// @Failure 404 {object} ProblemDetails
// @Router /budgets/{id}/transactions [get]
func (h *BudgetHandler) GetBudgetTransactions(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid budget ID", nil)
	}
	asOf, ok := parseAsOf(c)
	if !ok {
		return NewFieldError(c, "asOf", "Must be YYYY-MM-DD")
	}

	txs, err := h.budgetService.GetBudgetTransactions(workspaceID, id, asOf)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int32("budget_id", id).Msg("Failed to get budget transactions")
		return NewInternalError(c, "Failed to get budget transactions")
	}
	return c.JSON(http.StatusOK, toTransactionResponses(txs))
}

// UpdateBudget handles PUT /api/v1/budgets/:id
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	var req UpdateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.UpdateBudgetInput{Category: req.Category}
	if req.Amount != nil {
		amount, err := parseDecimal(*req.Amount)
		if err != nil {
			return NewFieldError(c, "amount", "Must be a valid decimal number")
		}
		input.Amount = &amount
	}
	if req.Period != nil {
		period := domain.PeriodKind(*req.Period)
		if !period.IsValid() {
			return NewFieldError(c, "period", "Period must be one of: weekly, monthly, yearly")
		}
		input.Period = &period
	}

	budget, err := h.budgetService.UpdateBudget(workspaceID, id, input)
	if err != nil {
		if resp := budgetError(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int32("budget_id", id).Msg("Failed to update budget")
		return NewInternalError(c, "Failed to update budget")
	}
	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// DeleteBudget handles DELETE /api/v1/budgets/:id
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	if err := h.budgetService.DeleteBudget(workspaceID, id); err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int32("budget_id", id).Msg("Failed to delete budget")
		return NewInternalError(c, "Failed to delete budget")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("budget_id", id).Msg("Budget deleted")
	return c.NoContent(http.StatusNoContent)
}

func budgetError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrBudgetNotFound):
		return NewNotFoundError(c, "Budget not found")
	case errors.Is(err, domain.ErrBudgetCategoryMissing):
		return NewFieldError(c, "category", "Category is required")
	case errors.Is(err, domain.ErrCategoryTooLong):
		return NewFieldError(c, "category", "Category must be 100 characters or less")
	case errors.Is(err, domain.ErrBudgetCategoryExists):
		return NewConflictError(c, "A budget for this category already exists")
	case errors.Is(err, domain.ErrInvalidArgument):
		return NewFieldError(c, "amount", "Amount must be greater than zero")
	}
	return nil
}

func toBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		ID:           b.ID,
		WorkspaceID:  b.WorkspaceID,
		Category:     b.Category,
		BudgetAmount: money(b.BudgetAmount),
		Period:       string(b.Period),
		CreatedAt:    formatTime(b.CreatedAt),
		UpdatedAt:    formatTime(b.UpdatedAt),
	}
}

func toBudgetStatusResponse(s *domain.BudgetStatus, asOf time.Time) BudgetStatusResponse {
	resp := BudgetStatusResponse{
		BudgetResponse:  toBudgetResponse(s.Budget),
		StartDate:       formatDate(s.StartDate),
		EndDate:         formatDate(s.EndDate),
		DaysRemaining:   util.DaysRemaining(domain.Period{Start: s.StartDate, End: s.EndDate}, asOf),
		SpentAmount:     money(s.SpentAmount),
		RemainingAmount: money(s.RemainingAmount),
		PercentUsed:     money(s.PercentUsed),
		Status:          string(s.Status),
	}
	if s.OverAmount != nil {
		over := money(*s.OverAmount)
		resp.OverAmount = &over
	}
	return resp
}

func toBudgetStatusResponses(statuses []*domain.BudgetStatus, asOf time.Time) []BudgetStatusResponse {
	out := make([]BudgetStatusResponse, len(statuses))
	for i, s := range statuses {
		out[i] = toBudgetStatusResponse(s, asOf)
	}
	return out
}

func toPortfolioResponse(p *domain.PortfolioSummary, asOf time.Time) PortfolioSummaryResponse {
	return PortfolioSummaryResponse{
		Budgets:         toBudgetStatusResponses(p.Budgets, asOf),
		TotalBudgeted:   money(p.TotalBudgeted),
		TotalSpent:      money(p.TotalSpent),
		TotalRemaining:  money(p.TotalRemaining),
		OnTrackCount:    p.OnTrackCount,
		OverBudgetCount: p.OverBudgetCount,
		AnyOver:         p.AnyOver,
	}
}
