package invoices

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"docbot/internal/ocr"
	"docbot/internal/storage"
)

func TestBuildInvoice(t *testing.T) {
	userID := primitive.NewObjectID()
	stored := &storage.StoredFile{
		Path:             "/data/uploads/invoices/abc.pdf",
		Name:             "abc.pdf",
		OriginalFilename: "march-invoice.pdf",
		Size:             2048,
		Ext:              ".pdf",
		SHA256:           "deadbeef",
	}
	res := &ocr.Result{
		RawText: "Invoice #: INV-2024-0042 ...",
		Fields: map[string]any{
			"invoice_number": "INV-2024-0042",
			"po_number":      "PO-7781",
			"total_amount":   1646.45,
			"tax_amount":     123.45,
			"subtotal":       1523.00,
			"invoice_date":   "01/15/2024",
			"due_date":       "02/14/2024",
			"vendor_name":    "Acme Office Supplies Inc",
		},
		Confidence:     map[string]float64{"overall": 0.92},
		ProcessingTime: 1500 * time.Millisecond,
		Provider:       "tesseract",
	}

	inv := buildInvoice(userID, stored, res, 0.7)

	assert.Equal(t, StatusPending, inv.Status)
	assert.Equal(t, "USD", inv.Currency)
	assert.Equal(t, userID, inv.UserID)

	assert.Equal(t, "INV-2024-0042", inv.InvoiceNumber)
	assert.Equal(t, "PO-7781", inv.PONumber)
	assert.InDelta(t, 1646.45, inv.TotalAmount, 0.001)
	assert.InDelta(t, 123.45, inv.TaxAmount, 0.001)
	assert.InDelta(t, 1523.00, inv.Subtotal, 0.001)

	require.NotNil(t, inv.InvoiceDate)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *inv.InvoiceDate)
	require.NotNil(t, inv.DueDate)
	assert.Equal(t, time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC), *inv.DueDate)

	assert.InDelta(t, 0.92, inv.OCRConfidence, 0.001)
	assert.Equal(t, "tesseract", inv.OCRProvider)
	assert.InDelta(t, 1.5, inv.ProcessingSeconds, 0.001)
	assert.False(t, inv.ManualReviewRequired)

	assert.Equal(t, "march-invoice.pdf", inv.OriginalFilename)
	assert.Equal(t, "/data/uploads/invoices/abc.pdf", inv.FilePath)
	assert.Equal(t, int64(2048), inv.FileSize)
	assert.Equal(t, "pdf", inv.FileType)
	assert.Equal(t, "deadbeef", inv.FileHash)
	assert.Equal(t, "Acme Office Supplies Inc", inv.VendorName())
}

func TestBuildInvoice_LowConfidenceFlagsReview(t *testing.T) {
	res := &ocr.Result{
		Fields:     map[string]any{},
		Confidence: map[string]float64{"overall": 0.4},
		Provider:   "text",
	}

	inv := buildInvoice(primitive.NewObjectID(), &storage.StoredFile{Ext: ".txt"}, res, 0.7)

	assert.True(t, inv.ManualReviewRequired)
	assert.Empty(t, inv.InvoiceNumber)
	assert.Zero(t, inv.TotalAmount)
	assert.Nil(t, inv.InvoiceDate)
	assert.Nil(t, inv.DueDate)
}

func TestParseExtractedDate(t *testing.T) {
	tests := []struct {
		in   string
		want *time.Time
	}{
		{"01/15/2024", timePtr(2024, 1, 15)},
		{"1/5/2024", timePtr(2024, 1, 5)},
		{"3/7/24", timePtr(2024, 3, 7)},
		{"2024/01/15", timePtr(2024, 1, 15)},
		{"01-15-2024", timePtr(2024, 1, 15)},
		{"2024-01-15", timePtr(2024, 1, 15)},
		{"", nil},
		{"not a date", nil},
		{"13/45/2024", nil},
	}
	for _, tt := range tests {
		got := parseExtractedDate(tt.in)
		if tt.want == nil {
			assert.Nil(t, got, "input %q", tt.in)
			continue
		}
		require.NotNil(t, got, "input %q", tt.in)
		assert.Equal(t, *tt.want, *got, "input %q", tt.in)
	}
}

func timePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}
