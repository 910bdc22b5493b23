package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReceiptBasePath(t *testing.T) {
	base := ReceiptBasePath(12, 345)

	assert.True(t, strings.HasPrefix(base, "12/receipts/345/"), base)
	assert.NotEqual(t, base, ReceiptBasePath(12, 345), "each upload gets a fresh prefix")
}

func TestVariantPath(t *testing.T) {
	assert.Equal(t, "1/receipts/2/abc_thumb.jpg", VariantPath("1/receipts/2/abc", "thumb"))
}
