package handler

import (
	"errors"
	"net/http"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/middleware"
	"github.com/kantong/kantong-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccountRequest represents the create account request body
type CreateAccountRequest struct {
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	InitialBalance string  `json:"initialBalance,omitempty"`
	Currency       *string `json:"currency,omitempty"`
}

// UpdateAccountRequest represents the update account request body
type UpdateAccountRequest struct {
	Name string `json:"name"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID          int32  `json:"id"`
	WorkspaceID int32  `json:"workspaceId"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Balance     string `json:"balance"`
	Currency    string `json:"currency"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// AccountListResponse is the account list with the summed balance
type AccountListResponse struct {
	Accounts     []AccountResponse `json:"accounts"`
	TotalBalance string            `json:"totalBalance"`
}

// CreateAccount godoc
// @Summary Create an account
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAccountRequest true "Account creation request"
// @Success 201 {object} AccountResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /accounts [post]
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	initialBalance := decimal.Zero
	if req.InitialBalance != "" {
		var err error
		initialBalance, err = parseDecimal(req.InitialBalance)
		if err != nil {
			return NewFieldError(c, "initialBalance", "Must be a valid decimal number")
		}
	}

	account, err := h.accountService.CreateAccount(workspaceID, service.CreateAccountInput{
		Name:           req.Name,
		Type:           domain.AccountType(req.Type),
		InitialBalance: initialBalance,
		Currency:       req.Currency,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNameRequired):
			return NewFieldError(c, "name", "Name is required")
		case errors.Is(err, domain.ErrNameTooLong):
			return NewFieldError(c, "name", "Name must be 255 characters or less")
		case errors.Is(err, domain.ErrInvalidAccountType):
			return NewFieldError(c, "type", "Type must be one of: checking, savings, credit, cash, investment")
		case errors.Is(err, domain.ErrInvalidCurrency):
			return NewFieldError(c, "currency", "Currency must be a 3-letter ISO 4217 code")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to create account")
		return NewInternalError(c, "Failed to create account")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("account_id", account.ID).Str("name", account.Name).Msg("Account created")
	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// GetAccounts godoc
// @Summary List accounts
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AccountListResponse
// @Failure 401 {object} ProblemDetails
// @Router /accounts [get]
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	accounts, err := h.accountService.GetAccounts(workspaceID)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to get accounts")
		return NewInternalError(c, "Failed to get accounts")
	}

	response := AccountListResponse{
		Accounts:     make([]AccountResponse, len(accounts)),
		TotalBalance: money(service.TotalBalance(accounts)),
	}
	for i, account := range accounts {
		response.Accounts[i] = toAccountResponse(account)
	}
	return c.JSON(http.StatusOK, response)
}

// GetAccount handles GET /api/v1/accounts/:id
func (h *AccountHandler) GetAccount(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	account, err := h.accountService.GetAccountByID(workspaceID, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int32("account_id", id).Msg("Failed to get account")
		return NewInternalError(c, "Failed to get account")
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// UpdateAccount handles PUT /api/v1/accounts/:id
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	var req UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	account, err := h.accountService.UpdateAccount(workspaceID, id, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			return NewNotFoundError(c, "Account not found")
		case errors.Is(err, domain.ErrNameRequired):
			return NewFieldError(c, "name", "Name is required")
		case errors.Is(err, domain.ErrNameTooLong):
			return NewFieldError(c, "name", "Name must be 255 characters or less")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int32("account_id", id).Msg("Failed to update account")
		return NewInternalError(c, "Failed to update account")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("account_id", account.ID).Str("name", account.Name).Msg("Account updated")
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// DeleteAccount handles DELETE /api/v1/accounts/:id
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	if err := h.accountService.DeleteAccount(workspaceID, id); err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			return NewNotFoundError(c, "Account not found")
		case errors.Is(err, domain.ErrAccountHasTransactions):
			return NewConflictError(c, "Account has transactions or contributions and cannot be deleted")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int32("account_id", id).Msg("Failed to delete account")
		return NewInternalError(c, "Failed to delete account")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("account_id", id).Msg("Account deleted")
	return c.NoContent(http.StatusNoContent)
}

func toAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:          account.ID,
		WorkspaceID: account.WorkspaceID,
		Name:        account.Name,
		Type:        string(account.Type),
		Balance:     money(account.Balance),
		Currency:    account.Currency,
		CreatedAt:   formatTime(account.CreatedAt),
		UpdatedAt:   formatTime(account.UpdatedAt),
	}
}
