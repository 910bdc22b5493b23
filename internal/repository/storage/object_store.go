package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

// ObjectStore is the blob storage used for receipt images
type ObjectStore interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectPath string) error
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}

// ReceiptBasePath returns a fresh object prefix for one receipt upload.
// Variants are stored as <base>_<variant>.jpg.
func ReceiptBasePath(workspaceID int32, transactionID int32) string {
	return path.Join(fmt.Sprintf("%d", workspaceID), "receipts", fmt.Sprintf("%d", transactionID), uuid.New().String())
}

// VariantPath returns the object path of one variant under base
func VariantPath(base, variant string) string {
	return base + "_" + variant + ".jpg"
}
