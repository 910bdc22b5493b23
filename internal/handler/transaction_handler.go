package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/middleware"
	"github.com/kantong/kantong-backend/internal/service"
	"github.com/kantong/kantong-backend/internal/transcript"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
	transcriptService  *service.TranscriptService
	receiptService     *service.ReceiptService
}

// NewTransactionHandler creates a new TransactionHandler. receiptService may be
// nil; deleted transactions then leave no objects to clean up.
func NewTransactionHandler(transactionService *service.TransactionService, transcriptService *service.TranscriptService, receiptService *service.ReceiptService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		transcriptService:  transcriptService,
		receiptService:     receiptService,
	}
}

// CreateTransactionRequest represents the create transaction request body
type CreateTransactionRequest struct {
	AccountID         int32   `json:"accountId"`
	TransferAccountID *int32  `json:"transferAccountId,omitempty"`
	Description       string  `json:"description"`
	Amount            string  `json:"amount"`
	Type              string  `json:"type"`
	Status            *string `json:"status,omitempty"`
	Category          *string `json:"category,omitempty"`
	Party             *string `json:"party,omitempty"`
	Date              *string `json:"date,omitempty"`
}

// UpdateTransactionRequest represents the update transaction request body.
// Amount and type are immutable; sending a different value is rejected.
type UpdateTransactionRequest struct {
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Status      *string `json:"status,omitempty"`
	Party       *string `json:"party,omitempty"`
	Date        *string `json:"date,omitempty"`
	Amount      *string `json:"amount,omitempty"`
	Type        *string `json:"type,omitempty"`
}

// ParseTranscriptRequest carries the speech-to-text output
type ParseTranscriptRequest struct {
	Text string `json:"text"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID                int32   `json:"id"`
	WorkspaceID       int32   `json:"workspaceId"`
	AccountID         int32   `json:"accountId"`
	TransferAccountID *int32  `json:"transferAccountId,omitempty"`
	Description       string  `json:"description"`
	Amount            string  `json:"amount"`
	Type              string  `json:"type"`
	Status            string  `json:"status"`
	Category          *string `json:"category"`
	Party             *string `json:"party"`
	Date              string  `json:"date"`
	HasReceipt        bool    `json:"hasReceipt"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

// PaginatedTransactionsResponse represents a page of transactions
type PaginatedTransactionsResponse struct {
	Data       []TransactionResponse `json:"data"`
	Page       int32                 `json:"page"`
	PageSize   int32                 `json:"pageSize"`
	TotalItems int64                 `json:"totalItems"`
	TotalPages int32                 `json:"totalPages"`
}

// CategoryTotalResponse is one row of a category breakdown
type CategoryTotalResponse struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Share    string `json:"share"`
	Count    int    `json:"count"`
}

// TransactionSummaryResponse holds totals for the filtered transactions
type TransactionSummaryResponse struct {
	TotalIncome   string                  `json:"totalIncome"`
	TotalExpenses string                  `json:"totalExpenses"`
	Net           string                  `json:"net"`
	Count         int                     `json:"count"`
	ByCategory    []CategoryTotalResponse `json:"byCategory"`
}

// SuggestionResponse is a parsed transcript. Nothing has been saved.
type SuggestionResponse struct {
	Amount       *string  `json:"amount"`
	Type         string   `json:"type"`
	Category     *string  `json:"category"`
	AccountID    *int32   `json:"accountId"`
	Date         *string  `json:"date"`
	Party        *string  `json:"party"`
	Description  string   `json:"description"`
	Confidence   float64  `json:"confidence"`
	Matches      []string `json:"matches"`
	OriginalText string   `json:"originalText"`
}

// CreateTransaction godoc
// @Summary Create a transaction
// @Description Record income, an expense or a transfer. Completed transactions move account balances immediately.
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "Transaction creation request"
// @Success 201 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := parseDecimal(req.Amount)
	if err != nil {
		return NewFieldError(c, "amount", "Must be a valid decimal number")
	}

	input := service.CreateTransactionInput{
		AccountID:         req.AccountID,
		TransferAccountID: req.TransferAccountID,
		Description:       req.Description,
		Amount:            amount,
		Type:              domain.TransactionType(req.Type),
		Category:          req.Category,
		Party:             req.Party,
	}
	if req.Status != nil {
		status := domain.TransactionStatus(*req.Status)
		input.Status = &status
	}
	if req.Date != nil && *req.Date != "" {
		date, err := parseDate(*req.Date)
		if err != nil {
			return NewFieldError(c, "date", "Must be YYYY-MM-DD or RFC 3339")
		}
		input.Date = &date
	}

	transaction, err := h.transactionService.CreateTransaction(workspaceID, input)
	if err != nil {
		if resp := transactionError(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to create transaction")
		return NewInternalError(c, "Failed to create transaction")
	}

	return c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

// GetTransactions godoc
// @Summary List transactions
// @Description Paginated transactions, newest first, with optional filters
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param accountId query int false "Account ID (source or destination)"
// @Param category query string false "Category"
// @Param type query string false "income, expense or transfer"
// @Param status query string false "pending, completed, cancelled or failed"
// @Param party query string false "Party, case-insensitive substring"
// @Param search query string false "Description, case-insensitive substring"
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD), inclusive"
// @Param period query string false "weekly, monthly or yearly; overrides startDate/endDate"
// @Param ref query string false "Reference date for period (YYYY-MM-DD), defaults to today"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Success 200 {object} PaginatedTransactionsResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /transactions [get]
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	filters, verr := parseTransactionFilters(c)
	if verr != nil {
		return NewValidationError(c, "Invalid filters", []ValidationError{*verr})
	}

	result, err := h.transactionService.GetTransactions(workspaceID, filters)
	if err != nil {
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to get transactions")
		return NewInternalError(c, "Failed to get transactions")
	}

	response := PaginatedTransactionsResponse{
		Data:       make([]TransactionResponse, len(result.Data)),
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	}
	for i, t := range result.Data {
		response.Data[i] = toTransactionResponse(t)
	}
	return c.JSON(http.StatusOK, response)
}

// GetSummary godoc
// @Summary Summarise transactions
// @Description Income, expense and net totals with a per-category expense breakdown for the same filters as the list
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} TransactionSummaryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /transactions/summary [get]
func (h *TransactionHandler) GetSummary(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	filters, verr := parseTransactionFilters(c)
	if verr != nil {
		return NewValidationError(c, "Invalid filters", []ValidationError{*verr})
	}

	summary, err := h.transactionService.GetSummary(workspaceID, filters)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return NewFieldError(c, "endDate", "End date must not be before start date")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to summarise transactions")
		return NewInternalError(c, "Failed to summarise transactions")
	}
	return c.JSON(http.StatusOK, toSummaryResponse(summary))
}

// GetTransaction handles GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	transaction, err := h.transactionService.GetTransaction(workspaceID, id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int32("transaction_id", id).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}
	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// UpdateTransaction godoc
// @Summary Update a transaction
// @Description Change description, category, status, party or date. Amount and type cannot change.
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param request body UpdateTransactionRequest true "Fields to change"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.UpdateTransactionInput{
		Description: req.Description,
		Category:    req.Category,
		Party:       req.Party,
	}
	if req.Status != nil {
		status := domain.TransactionStatus(*req.Status)
		input.Status = &status
	}
	if req.Type != nil {
		t := domain.TransactionType(*req.Type)
		input.Type = &t
	}
	if req.Amount != nil {
		amount, err := parseDecimal(*req.Amount)
		if err != nil {
			return NewFieldError(c, "amount", "Must be a valid decimal number")
		}
		input.Amount = &amount
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return NewFieldError(c, "date", "Must be YYYY-MM-DD or RFC 3339")
		}
		input.Date = &date
	}

	transaction, err := h.transactionService.UpdateTransaction(workspaceID, id, input)
	if err != nil {
		if resp := transactionError(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int32("transaction_id", id).Msg("Failed to update transaction")
		return NewInternalError(c, "Failed to update transaction")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("transaction_id", id).Msg("Transaction updated")
	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Description Permanently delete a transaction and reverse its balance effect
// @Tags transactions
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 204
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	deleted, err := h.transactionService.DeleteTransaction(workspaceID, id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int32("transaction_id", id).Msg("Failed to delete transaction")
		return NewInternalError(c, "Failed to delete transaction")
	}
	if deleted.ReceiptURL != nil {
		h.receiptService.DeleteObjects(c.Request().Context(), *deleted.ReceiptURL)
	}

	return c.NoContent(http.StatusNoContent)
}

// ParseTranscript godoc
// @Summary Suggest a transaction from speech
// @Description Extract amount, type, category, account, date and party from a transcript. Nothing is saved.
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ParseTranscriptRequest true "Transcript"
// @Success 200 {object} SuggestionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /transactions/parse-transcript [post]
func (h *TransactionHandler) ParseTranscript(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req ParseTranscriptRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	suggestion, err := h.transcriptService.Parse(workspaceID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTranscriptEmpty):
			return NewFieldError(c, "text", "Text is required")
		case errors.Is(err, domain.ErrTranscriptTooLong):
			return NewFieldError(c, "text", "Text must be 1000 characters or less")
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to parse transcript")
		return NewInternalError(c, "Failed to parse transcript")
	}
	return c.JSON(http.StatusOK, toSuggestionResponse(suggestion))
}

// transactionError maps validation and lookup failures shared by create and
// update. It returns nil for anything unexpected.
func transactionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrTransactionNotFound):
		return NewNotFoundError(c, "Transaction not found")
	case errors.Is(err, domain.ErrAccountNotFound):
		return NewNotFoundError(c, "Account not found")
	case errors.Is(err, domain.ErrDescriptionRequired):
		return NewFieldError(c, "description", "Description is required")
	case errors.Is(err, domain.ErrDescriptionTooLong):
		return NewFieldError(c, "description", "Description must be 255 characters or less")
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewFieldError(c, "amount", "Amount must be greater than zero")
	case errors.Is(err, domain.ErrInvalidTransactionType):
		return NewFieldError(c, "type", "Type must be one of: income, expense, transfer")
	case errors.Is(err, domain.ErrInvalidTransactionStatus):
		return NewFieldError(c, "status", "Status must be one of: pending, completed, cancelled, failed")
	case errors.Is(err, domain.ErrCategoryTooLong):
		return NewFieldError(c, "category", "Category must be 100 characters or less")
	case errors.Is(err, domain.ErrPartyTooLong):
		return NewFieldError(c, "party", "Party must be 255 characters or less")
	case errors.Is(err, domain.ErrTransferAccountRequired):
		return NewFieldError(c, "transferAccountId", "Transfers need a different destination account")
	case errors.Is(err, domain.ErrImmutableField):
		return NewValidationError(c, "Amount and type cannot be changed after creation", nil)
	}
	return nil
}

func parseTransactionFilters(c echo.Context) (*domain.TransactionFilters, *ValidationError) {
	filters := &domain.TransactionFilters{}

	if v := c.QueryParam("accountId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return nil, &ValidationError{Field: "accountId", Message: "Must be a valid integer"}
		}
		accountID := int32(id)
		filters.AccountID = &accountID
	}
	if v := strings.TrimSpace(c.QueryParam("category")); v != "" {
		filters.Category = &v
	}
	if v := c.QueryParam("type"); v != "" {
		t := domain.TransactionType(v)
		if !t.IsValid() {
			return nil, &ValidationError{Field: "type", Message: "Type must be one of: income, expense, transfer"}
		}
		filters.Type = &t
	}
	if v := c.QueryParam("status"); v != "" {
		s := domain.TransactionStatus(v)
		if !s.IsValid() {
			return nil, &ValidationError{Field: "status", Message: "Status must be one of: pending, completed, cancelled, failed"}
		}
		filters.Status = &s
	}
	if v := strings.TrimSpace(c.QueryParam("party")); v != "" {
		filters.Party = &v
	}
	if v := strings.TrimSpace(c.QueryParam("search")); v != "" {
		filters.Search = &v
	}
	if v := c.QueryParam("startDate"); v != "" {
		start, err := parseDate(v)
		if err != nil {
			return nil, &ValidationError{Field: "startDate", Message: "Must be YYYY-MM-DD"}
		}
		start = start.UTC()
		filters.StartDate = &start
	}
	if v := c.QueryParam("endDate"); v != "" {
		end, err := parseDate(v)
		if err != nil {
			return nil, &ValidationError{Field: "endDate", Message: "Must be YYYY-MM-DD"}
		}
		if len(strings.TrimSpace(v)) == len("2006-01-02") {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
		end = end.UTC()
		filters.EndDate = &end
	}
	if v := c.QueryParam("period"); v != "" {
		ref := time.Now().UTC()
		if r := c.QueryParam("ref"); r != "" {
			parsed, err := parseDate(r)
			if err != nil {
				return nil, &ValidationError{Field: "ref", Message: "Must be YYYY-MM-DD"}
			}
			ref = parsed.UTC()
		}
		if err := service.ApplyPeriodFilter(filters, domain.PeriodKind(v), ref); err != nil {
			return nil, &ValidationError{Field: "period", Message: "Period must be one of: weekly, monthly, yearly"}
		}
	}
	if v := c.QueryParam("page"); v != "" {
		page, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return nil, &ValidationError{Field: "page", Message: "Must be a valid integer"}
		}
		filters.Page = int32(page)
	}
	if v := c.QueryParam("pageSize"); v != "" {
		size, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return nil, &ValidationError{Field: "pageSize", Message: "Must be a valid integer"}
		}
		filters.PageSize = int32(size)
	}
	return filters, nil
}

func toTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                t.ID,
		WorkspaceID:       t.WorkspaceID,
		AccountID:         t.AccountID,
		TransferAccountID: t.TransferAccountID,
		Description:       t.Description,
		Amount:            money(t.Amount),
		Type:              string(t.Type),
		Status:            string(t.Status),
		Category:          t.Category,
		Party:             t.Party,
		Date:              formatTime(t.Date),
		HasReceipt:        t.ReceiptURL != nil,
		CreatedAt:         formatTime(t.CreatedAt),
		UpdatedAt:         formatTime(t.UpdatedAt),
	}
}

func toTransactionResponses(txs []*domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txs))
	for i, t := range txs {
		out[i] = toTransactionResponse(t)
	}
	return out
}

func toCategoryTotals(totals []domain.CategoryTotal) []CategoryTotalResponse {
	out := make([]CategoryTotalResponse, len(totals))
	for i, ct := range totals {
		out[i] = CategoryTotalResponse{
			Category: ct.Category,
			Amount:   money(ct.Amount),
			Share:    money(ct.Share),
			Count:    ct.Count,
		}
	}
	return out
}

func toSummaryResponse(s *domain.TransactionSummary) TransactionSummaryResponse {
	return TransactionSummaryResponse{
		TotalIncome:   money(s.TotalIncome),
		TotalExpenses: money(s.TotalExpenses),
		Net:           money(s.Net),
		Count:         s.Count,
		ByCategory:    toCategoryTotals(s.ByCategory),
	}
}

func toSuggestionResponse(s *transcript.Suggestion) SuggestionResponse {
	resp := SuggestionResponse{
		Type:         string(s.Type),
		Category:     s.Category,
		AccountID:    s.AccountID,
		Date:         formatOptionalDate(s.Date),
		Party:        s.Party,
		Description:  s.Description,
		Confidence:   s.Confidence,
		Matches:      s.Matches,
		OriginalText: s.OriginalText,
	}
	if resp.Matches == nil {
		resp.Matches = []string{}
	}
	if s.Amount != nil {
		amount := money(*s.Amount)
		resp.Amount = &amount
	}
	return resp
}
