package handler

import (
	"errors"
	"net/http"

	"github.com/kantong/kantong-backend/internal/calc"
	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/middleware"
	"github.com/kantong/kantong-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// GoalHandler handles savings goals and contributions
type GoalHandler struct {
	goalService *service.GoalService
}

// NewGoalHandler creates a new GoalHandler
func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// CreateGoalRequest represents the create goal request body
type CreateGoalRequest struct {
	Name          string  `json:"name"`
	TargetAmount  string  `json:"targetAmount"`
	CurrentAmount string  `json:"currentAmount,omitempty"`
	TargetDate    *string `json:"targetDate,omitempty"`
	Priority      string  `json:"priority,omitempty"`
}

// UpdateGoalRequest represents the update goal request body. An empty
// targetDate string removes the deadline. currentAmount overwrites the saved
// amount without moving any account balance.
type UpdateGoalRequest struct {
	Name          *string `json:"name,omitempty"`
	TargetAmount  *string `json:"targetAmount,omitempty"`
	CurrentAmount *string `json:"currentAmount,omitempty"`
	TargetDate    *string `json:"targetDate,omitempty"`
	Priority      *string `json:"priority,omitempty"`
}

// ContributeRequest represents a contribution from an account into a goal
type ContributeRequest struct {
	AccountID int32   `json:"accountId"`
	Amount    string  `json:"amount"`
	Note      *string `json:"note,omitempty"`
}

// GoalProgressResponse is derived from current and target amounts
type GoalProgressResponse struct {
	Percent         string `json:"percent"`
	Achieved        bool   `json:"achieved"`
	OvershootAmount string `json:"overshootAmount"`
	RemainingAmount string `json:"remainingAmount"`
}

// GoalResponse represents a goal with its progress
type GoalResponse struct {
	ID            int32                `json:"id"`
	WorkspaceID   int32                `json:"workspaceId"`
	Name          string               `json:"name"`
	TargetAmount  string               `json:"targetAmount"`
	CurrentAmount string               `json:"currentAmount"`
	TargetDate    *string              `json:"targetDate"`
	Priority      string               `json:"priority"`
	Progress      GoalProgressResponse `json:"progress"`
	CreatedAt     string               `json:"createdAt"`
	UpdatedAt     string               `json:"updatedAt"`
}

// ContributionResponse represents one contribution
type ContributionResponse struct {
	ID              int32   `json:"id"`
	GoalID          int32   `json:"goalId"`
	SourceAccountID int32   `json:"sourceAccountId"`
	Amount          string  `json:"amount"`
	Note            *string `json:"note"`
	CreatedAt       string  `json:"createdAt"`
}

// ContributionResultResponse carries both sides of a contribution
type ContributionResultResponse struct {
	Contribution ContributionResponse `json:"contribution"`
	Account      AccountResponse      `json:"account"`
	Goal         GoalResponse         `json:"goal"`
}

// CreateGoal godoc
// @Summary Create a savings goal
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateGoalRequest true "Goal creation request"
// @Success 201 {object} GoalResponse
// @Failure 400 {object} ProblemDetails
// @Router /goals [post]
func (h *GoalHandler) CreateGoal(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req CreateGoalRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	target, err := parseDecimal(req.TargetAmount)
	if err != nil {
		return NewFieldError(c, "targetAmount", "Must be a valid decimal number")
	}
	current := decimal.Zero
	if req.CurrentAmount != "" {
		if current, err = parseDecimal(req.CurrentAmount); err != nil {
			return NewFieldError(c, "currentAmount", "Must be a valid decimal number")
		}
	}
	input := service.CreateGoalInput{
		Name:          req.Name,
		TargetAmount:  target,
		CurrentAmount: current,
		Priority:      domain.GoalPriority(req.Priority),
	}
	if req.TargetDate != nil && *req.TargetDate != "" {
		date, err := parseDate(*req.TargetDate)
		if err != nil {
			return NewFieldError(c, "targetDate", "Must be YYYY-MM-DD")
		}
		input.TargetDate = &date
	}

	goal, err := h.goalService.CreateGoal(workspaceID, input)
	if err != nil {
		if resp := goalError(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to create goal")
		return NewInternalError(c, "Failed to create goal")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("goal_id", goal.Goal.ID).Msg("Goal created")
	return c.JSON(http.StatusCreated, toGoalResponse(goal))
}

// GetGoals godoc
// @Summary List goals with progress
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Success 200 {array} GoalResponse
// @Router /goals [get]
func (h *GoalHandler) GetGoals(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	goals, err := h.goalService.GetGoals(workspaceID)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to get goals")
		return NewInternalError(c, "Failed to get goals")
	}
	return c.JSON(http.StatusOK, toGoalResponses(goals))
}

// GetGoal handles GET /api/v1/goals/:id
func (h *GoalHandler) GetGoal(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid goal ID", nil)
	}

	goal, err := h.goalService.GetGoal(workspaceID, id)
	if err != nil {
		if errors.Is(err, domain.ErrGoalNotFound) {
			return NewNotFoundError(c, "Goal not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int32("goal_id", id).Msg("Failed to get goal")
		return NewInternalError(c, "Failed to get goal")
	}
	return c.JSON(http.StatusOK, toGoalResponse(goal))
}

// UpdateGoal handles PUT /api/v1/goals/:id
func (h *GoalHandler) UpdateGoal(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid goal ID", nil)
	}

	var req UpdateGoalRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.UpdateGoalInput{Name: req.Name}
	if req.TargetAmount != nil {
		target, err := parseDecimal(*req.TargetAmount)
		if err != nil {
			return NewFieldError(c, "targetAmount", "Must be a valid decimal number")
		}
		input.TargetAmount = &target
	}
	if req.CurrentAmount != nil {
		current, err := parseDecimal(*req.CurrentAmount)
		if err != nil {
			return NewFieldError(c, "currentAmount", "Must be a valid decimal number")
		}
		if current.IsNegative() {
			return NewFieldError(c, "currentAmount", "Must not be negative")
		}
		input.CurrentAmount = &current
	}
	if req.TargetDate != nil {
		if *req.TargetDate == "" {
			input.ClearTargetDate = true
		} else {
			date, err := parseDate(*req.TargetDate)
			if err != nil {
				return NewFieldError(c, "targetDate", "Must be YYYY-MM-DD")
			}
			input.TargetDate = &date
		}
	}
	if req.Priority != nil {
		priority := domain.GoalPriority(*req.Priority)
		input.Priority = &priority
	}

	goal, err := h.goalService.UpdateGoal(workspaceID, id, input)
	if err != nil {
		if resp := goalError(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int32("goal_id", id).Msg("Failed to update goal")
		return NewInternalError(c, "Failed to update goal")
	}
	return c.JSON(http.StatusOK, toGoalResponse(goal))
}

// DeleteGoal handles DELETE /api/v1/goals/:id
func (h *GoalHandler) DeleteGoal(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid goal ID", nil)
	}

	if err := h.goalService.DeleteGoal(workspaceID, id); err != nil {
		if errors.Is(err, domain.ErrGoalNotFound) {
			return NewNotFoundError(c, "Goal not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int32("goal_id", id).Msg("Failed to delete goal")
		return NewInternalError(c, "Failed to delete goal")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("goal_id", id).Msg("Goal deleted")
	return c.NoContent(http.StatusNoContent)
}

// Contribute godoc
// @Summary Contribute to a goal
// @Description Move money from an account into a goal. Both balances change together or not at all.
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Goal ID"
// @Param request body ContributeRequest true "Contribution"
// @Success 201 {object} ContributionResultResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 422 {object} ProblemDetails
// @Router /goals/{id}/contributions [post]
func (h *GoalHandler) Contribute(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid goal ID", nil)
	}

	var req ContributeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	amount, err := parseDecimal(req.Amount)
	if err != nil {
		return NewFieldError(c, "amount", "Must be a valid decimal number")
	}

	result, err := h.goalService.Contribute(workspaceID, id, service.ContributeInput{
		AccountID: req.AccountID,
		Amount:    amount,
		Note:      req.Note,
	})
	if err != nil {
		if resp := goalError(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int32("goal_id", id).Msg("Failed to record contribution")
		return NewInternalError(c, "Failed to record contribution")
	}

	return c.JSON(http.StatusCreated, ContributionResultResponse{
		Contribution: toContributionResponse(result.Contribution),
		Account:      toAccountResponse(result.Account),
		Goal:         toGoalResponse(&domain.GoalWithProgress{Goal: result.Goal, Progress: calc.ComputeGoalProgress(result.Goal)}),
	})
}

// GetContributions handles GET /api/v1/goals/:id/contributions
func (h *GoalHandler) GetContributions(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid goal ID", nil)
	}

	if _, err := h.goalService.GetGoal(workspaceID, id); err != nil {
		if errors.Is(err, domain.ErrGoalNotFound) {
			return NewNotFoundError(c, "Goal not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int32("goal_id", id).Msg("Failed to get goal")
		return NewInternalError(c, "Failed to get contributions")
	}
	contributions, err := h.goalService.GetContributions(workspaceID, id)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int32("goal_id", id).Msg("Failed to get contributions")
		return NewInternalError(c, "Failed to get contributions")
	}

	response := make([]ContributionResponse, len(contributions))
	for i, ct := range contributions {
		response[i] = toContributionResponse(ct)
	}
	return c.JSON(http.StatusOK, response)
}

func goalError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrGoalNotFound):
		return NewNotFoundError(c, "Goal not found")
	case errors.Is(err, domain.ErrAccountNotFound):
		return NewNotFoundError(c, "Account not found")
	case errors.Is(err, domain.ErrNameRequired):
		return NewFieldError(c, "name", "Name is required")
	case errors.Is(err, domain.ErrNameTooLong):
		return NewFieldError(c, "name", "Name must be 255 characters or less")
	case errors.Is(err, domain.ErrInvalidArgument):
		return NewFieldError(c, "targetAmount", "Target amount must be greater than zero")
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewFieldError(c, "amount", "Amount must be greater than zero")
	case errors.Is(err, domain.ErrInvalidGoalPriority):
		return NewFieldError(c, "priority", "Priority must be one of: high, medium, low")
	case errors.Is(err, domain.ErrNoteTooLong):
		return NewFieldError(c, "note", "Note must be 500 characters or less")
	case errors.Is(err, domain.ErrInsufficientFunds):
		return NewUnprocessableError(c, "Account balance is lower than the contribution")
	}
	return nil
}

func toGoalResponse(g *domain.GoalWithProgress) GoalResponse {
	return GoalResponse{
		ID:            g.Goal.ID,
		WorkspaceID:   g.Goal.WorkspaceID,
		Name:          g.Goal.Name,
		TargetAmount:  money(g.Goal.TargetAmount),
		CurrentAmount: money(g.Goal.CurrentAmount),
		TargetDate:    formatOptionalDate(g.Goal.TargetDate),
		Priority:      string(g.Goal.Priority),
		Progress: GoalProgressResponse{
			Percent:         money(g.Progress.Percent),
			Achieved:        g.Progress.Achieved,
			OvershootAmount: money(g.Progress.OvershootAmount),
			RemainingAmount: money(g.Progress.RemainingAmount),
		},
		CreatedAt: formatTime(g.Goal.CreatedAt),
		UpdatedAt: formatTime(g.Goal.UpdatedAt),
	}
}

func toGoalResponses(goals []*domain.GoalWithProgress) []GoalResponse {
	out := make([]GoalResponse, len(goals))
	for i, g := range goals {
		out[i] = toGoalResponse(g)
	}
	return out
}

func toContributionResponse(ct *domain.Contribution) ContributionResponse {
	if ct == nil {
		return ContributionResponse{}
	}
	return ContributionResponse{
		ID:              ct.ID,
		GoalID:          ct.GoalID,
		SourceAccountID: ct.SourceAccountID,
		Amount:          money(ct.Amount),
		Note:            ct.Note,
		CreatedAt:       formatTime(ct.CreatedAt),
	}
}
