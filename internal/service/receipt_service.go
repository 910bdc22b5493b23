package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/kantong/kantong-backend/internal/domain"
	"github.com/kantong/kantong-backend/internal/repository/storage"
	"github.com/rs/zerolog/log"
)

const (
	MaxReceiptSize      = 5 * 1024 * 1024 // 5MB
	MinReceiptDimension = 50
	ReceiptThumbWidth   = 300
	ReceiptDisplayWidth = 1200
	ReceiptJPEGQuality  = 85
	ReceiptURLExpiry    = 15 * time.Minute
)

const (
	variantThumb   = "thumb"
	variantDisplay = "display"
)

var (
	ErrReceiptTooLarge       = errors.New("file too large. Maximum size is 5MB")
	ErrInvalidReceiptFormat  = errors.New("invalid format. Supported: JPEG, PNG")
	ErrReceiptTooSmall       = errors.New("image too small. Minimum 50x50 pixels")
	ErrInvalidReceiptData    = errors.New("invalid image data")
	ErrReceiptsNotConfigured = errors.New("receipt storage not configured")
)

// AllowedReceiptExtensions maps extensions to content types
var AllowedReceiptExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ReceiptURLs holds short-lived links to the stored variants
type ReceiptURLs struct {
	TransactionID int32     `json:"transactionId"`
	ThumbnailURL  string    `json:"thumbnailUrl"`
	DisplayURL    string    `json:"displayUrl"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// ReceiptService stores receipt photos for transactions. The transaction keeps
// the object base path; URLs are presigned on every read.
type ReceiptService struct {
	store           storage.ObjectStore
	transactionRepo domain.TransactionRepository
}

// NewReceiptService accepts a nil store; every operation then fails with ErrReceiptsNotConfigured
func NewReceiptService(store storage.ObjectStore, transactionRepo domain.TransactionRepository) *ReceiptService {
	return &ReceiptService{store: store, transactionRepo: transactionRepo}
}

// IsEnabled reports whether object storage is configured
func (s *ReceiptService) IsEnabled() bool {
	return s != nil && s.store != nil
}

// ValidateReceipt checks size, extension, content and dimensions
func (s *ReceiptService) ValidateReceipt(data []byte, filename string) error {
	_, err := decodeReceipt(data, filename)
	return err
}

func decodeReceipt(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxReceiptSize {
		return nil, ErrReceiptTooLarge
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedReceiptExtensions[ext]; !ok {
		return nil, ErrInvalidReceiptFormat
	}
	switch http.DetectContentType(data) {
	case "image/jpeg", "image/png":
	default:
		return nil, ErrInvalidReceiptData
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrInvalidReceiptData
	}
	bounds := img.Bounds()
	if bounds.Dx() < MinReceiptDimension || bounds.Dy() < MinReceiptDimension {
		return nil, ErrReceiptTooSmall
	}
	return img, nil
}

// UploadReceipt stores the display and thumbnail variants and points the
// transaction at them. A previous receipt is removed afterwards.
func (s *ReceiptService) UploadReceipt(ctx context.Context, workspaceID, transactionID int32, data []byte, filename string) (*ReceiptURLs, error) {
	if !s.IsEnabled() {
		return nil, ErrReceiptsNotConfigured
	}
	tx, err := s.transactionRepo.GetByID(workspaceID, transactionID)
	if err != nil {
		return nil, err
	}
	img, err := decodeReceipt(data, filename)
	if err != nil {
		return nil, err
	}

	base := storage.ReceiptBasePath(workspaceID, transactionID)
	variants := []struct {
		name     string
		maxWidth int
	}{
		{variantThumb, ReceiptThumbWidth},
		{variantDisplay, ReceiptDisplayWidth},
	}

	var uploaded []string
	for _, variant := range variants {
		processed := img
		if img.Bounds().Dx() > variant.maxWidth {
			processed = imaging.Resize(img, variant.maxWidth, 0, imaging.Lanczos)
		}

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, processed, imaging.JPEG, imaging.JPEGQuality(ReceiptJPEGQuality)); err != nil {
			s.removeObjects(ctx, uploaded)
			return nil, fmt.Errorf("failed to encode receipt: %w", err)
		}

		objectPath := storage.VariantPath(base, variant.name)
		if _, err := s.store.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len())); err != nil {
			s.removeObjects(ctx, uploaded)
			return nil, fmt.Errorf("failed to upload %s variant: %w", variant.name, err)
		}
		uploaded = append(uploaded, objectPath)
	}

	if _, err := s.transactionRepo.SetReceiptURL(workspaceID, transactionID, &base); err != nil {
		s.removeObjects(ctx, uploaded)
		return nil, err
	}
	if tx.ReceiptURL != nil {
		s.DeleteObjects(ctx, *tx.ReceiptURL)
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("transaction_id", transactionID).Msg("Receipt uploaded")
	return s.presign(ctx, transactionID, base)
}

// GetReceiptURLs presigns the variants of a transaction's receipt
func (s *ReceiptService) GetReceiptURLs(ctx context.Context, workspaceID, transactionID int32) (*ReceiptURLs, error) {
	if !s.IsEnabled() {
		return nil, ErrReceiptsNotConfigured
	}
	tx, err := s.transactionRepo.GetByID(workspaceID, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.ReceiptURL == nil {
		return nil, domain.ErrReceiptNotFound
	}
	return s.presign(ctx, transactionID, *tx.ReceiptURL)
}

// DeleteReceipt detaches the receipt and removes its objects
func (s *ReceiptService) DeleteReceipt(ctx context.Context, workspaceID, transactionID int32) error {
	if !s.IsEnabled() {
		return ErrReceiptsNotConfigured
	}
	tx, err := s.transactionRepo.GetByID(workspaceID, transactionID)
	if err != nil {
		return err
	}
	if tx.ReceiptURL == nil {
		return domain.ErrReceiptNotFound
	}
	if _, err := s.transactionRepo.SetReceiptURL(workspaceID, transactionID, nil); err != nil {
		return err
	}
	s.DeleteObjects(ctx, *tx.ReceiptURL)
	return nil
}

// DeleteObjects removes every variant under base. Errors are logged only.
func (s *ReceiptService) DeleteObjects(ctx context.Context, base string) {
	if !s.IsEnabled() || base == "" {
		return
	}
	s.removeObjects(ctx, []string{
		storage.VariantPath(base, variantThumb),
		storage.VariantPath(base, variantDisplay),
	})
}

func (s *ReceiptService) removeObjects(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := s.store.Delete(ctx, p); err != nil {
			log.Warn().Err(err).Str("object_path", p).Msg("Failed to delete receipt object")
		}
	}
}

func (s *ReceiptService) presign(ctx context.Context, transactionID int32, base string) (*ReceiptURLs, error) {
	thumb, err := s.store.GeneratePresignedURL(ctx, storage.VariantPath(base, variantThumb), ReceiptURLExpiry)
	if err != nil {
		return nil, err
	}
	display, err := s.store.GeneratePresignedURL(ctx, storage.VariantPath(base, variantDisplay), ReceiptURLExpiry)
	if err != nil {
		return nil, err
	}
	return &ReceiptURLs{
		TransactionID: transactionID,
		ThumbnailURL:  thumb,
		DisplayURL:    display,
		ExpiresAt:     time.Now().UTC().Add(ReceiptURLExpiry),
	}, nil
}

// ReceiptContentType returns the content type for a file extension
func ReceiptContentType(filename string) string {
	if ct, ok := AllowedReceiptExtensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}
