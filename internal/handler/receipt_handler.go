package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/middleware"
	"github.com/kantong/kantong-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ReceiptHandler handles receipt photos attached to transactions
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// ReceiptResponse holds short-lived links to the stored variants
type ReceiptResponse struct {
	TransactionID int32  `json:"transactionId"`
	ThumbnailURL  string `json:"thumbnailUrl"`
	DisplayURL    string `json:"displayUrl"`
	ExpiresAt     string `json:"expiresAt"`
}

// UploadReceipt godoc
// @Summary Attach a receipt
// @Description Upload a JPEG or PNG (max 5MB). A previous receipt is replaced.
// @Tags receipts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param file formData file true "Receipt image"
// @Success 201 {object} ReceiptResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /transactions/{id}/receipt [post]
func (h *ReceiptHandler) UploadReceipt(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	if !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt uploads are disabled (storage not configured)")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewFieldError(c, "file", "File is required")
	}
	if file.Size > service.MaxReceiptSize {
		return NewFieldError(c, "file", "File too large. Maximum size is 5MB")
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	// One extra byte so oversized bodies are still detected
	data, err := io.ReadAll(io.LimitReader(src, service.MaxReceiptSize+1))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	urls, err := h.receiptService.UploadReceipt(c.Request().Context(), workspaceID, id, data, file.Filename)
	if err != nil {
		if resp := receiptError(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int32("transaction_id", id).Msg("Failed to upload receipt")
		return NewInternalError(c, "Failed to upload receipt")
	}

	return c.JSON(http.StatusCreated, toReceiptResponse(urls))
}

// GetReceipt godoc
// @Summary Get receipt links
// @Tags receipts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} ReceiptResponse
// @Failure 404 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /transactions/{id}/receipt [get]
func (h *ReceiptHandler) GetReceipt(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	if !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipts are disabled (storage not configured)")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	urls, err := h.receiptService.GetReceiptURLs(c.Request().Context(), workspaceID, id)
	if err != nil {
		if resp := receiptError(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int32("transaction_id", id).Msg("Failed to sign receipt URLs")
		return NewInternalError(c, "Failed to get receipt")
	}
	return c.JSON(http.StatusOK, toReceiptResponse(urls))
}

// DeleteReceipt godoc
// @Summary Remove a receipt
// @Tags receipts
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /transactions/{id}/receipt [delete]
func (h *ReceiptHandler) DeleteReceipt(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	if !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipts are disabled (storage not configured)")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.receiptService.DeleteReceipt(c.Request().Context(), workspaceID, id); err != nil {
		if resp := receiptError(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("workspace_id", workspaceID).Int32("transaction_id", id).Msg("Failed to delete receipt")
		return NewInternalError(c, "Failed to delete receipt")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("transaction_id", id).Msg("Receipt deleted")
	return c.NoContent(http.StatusNoContent)
}

func receiptError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrTransactionNotFound):
		return NewNotFoundError(c, "Transaction not found")
	case errors.Is(err, domain.ErrReceiptNotFound):
		return NewNotFoundError(c, "Transaction has no receipt")
	case errors.Is(err, service.ErrReceiptTooLarge),
		errors.Is(err, service.ErrInvalidReceiptFormat),
		errors.Is(err, service.ErrReceiptTooSmall),
		errors.Is(err, service.ErrInvalidReceiptData):
		return NewFieldError(c, "file", err.Error())
	case errors.Is(err, service.ErrReceiptsNotConfigured):
		return NewServiceUnavailableError(c, "Receipt storage not configured")
	}
	return nil
}

func toReceiptResponse(urls *service.ReceiptURLs) ReceiptResponse {
	return ReceiptResponse{
		TransactionID: urls.TransactionID,
		ThumbnailURL:  urls.ThumbnailURL,
		DisplayURL:    urls.DisplayURL,
		ExpiresAt:     formatTime(urls.ExpiresAt),
	}
}
