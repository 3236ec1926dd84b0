package invoices

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the invoice lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusProcessed Status = "processed"
	StatusSynced    Status = "synced"
)

// reviewConfidenceThreshold is the OCR confidence below which an invoice
// always needs a human look.
const reviewConfidenceThreshold = 0.85

// Invoice is a processed invoice document and its extracted data.
type Invoice struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	InvoiceNumber string             `bson:"invoice_number,omitempty" json:"invoice_number"`
	PONumber      string             `bson:"po_number,omitempty" json:"po_number"`

	Subtotal    float64 `bson:"subtotal" json:"subtotal"`
	TaxAmount   float64 `bson:"tax_amount" json:"tax_amount"`
	TotalAmount float64 `bson:"total_amount" json:"total_amount"`
	Currency    string  `bson:"currency" json:"currency"`

	InvoiceDate  *time.Time `bson:"invoice_date,omitempty" json:"invoice_date"`
	DueDate      *time.Time `bson:"due_date,omitempty" json:"due_date"`
	ReceivedDate time.Time  `bson:"received_date" json:"received_date"`

	Status               Status  `bson:"status" json:"status"`
	OCRConfidence        float64 `bson:"ocr_confidence_score" json:"ocr_confidence_score"`
	OCRProvider          string  `bson:"ocr_provider,omitempty" json:"ocr_provider"`
	ProcessingSeconds    float64 `bson:"processing_seconds" json:"processing_seconds"`
	ManualReviewRequired bool    `bson:"manual_review_required" json:"manual_review_required"`

	OriginalFilename string `bson:"original_filename,omitempty" json:"original_filename"`
	FilePath         string `bson:"file_path,omitempty" json:"-"`
	FileSize         int64  `bson:"file_size,omitempty" json:"file_size"`
	FileType         string `bson:"file_type,omitempty" json:"file_type"`
	FileHash         string `bson:"file_hash,omitempty" json:"file_hash"`

	ExtractedFields map[string]any `bson:"extracted_fields,omitempty" json:"extracted_fields"`
	OCRRawText      string         `bson:"ocr_raw_text,omitempty" json:"-"`

	ApprovedAt    *time.Time `bson:"approved_at,omitempty" json:"approved_at"`
	ProcessedAt   *time.Time `bson:"processed_at,omitempty" json:"processed_at"`
	SyncedToERPAt *time.Time `bson:"synced_to_erp_at,omitempty" json:"synced_to_erp_at"`

	ProcessingNotes string `bson:"processing_notes,omitempty" json:"processing_notes"`
	ApprovalNotes   string `bson:"approval_notes,omitempty" json:"approval_notes"`

	UserID     primitive.ObjectID  `bson:"user_id" json:"user_id"`
	VendorID   *primitive.ObjectID `bson:"vendor_id,omitempty" json:"vendor_id"`
	ApprovedBy *primitive.ObjectID `bson:"approved_by,omitempty" json:"approved_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Approve moves the invoice to approved and stamps the approver.
func (inv *Invoice) Approve(approvedBy primitive.ObjectID, notes string) {
	now := time.Now()
	inv.Status = StatusApproved
	inv.ApprovedBy = &approvedBy
	inv.ApprovedAt = &now
	if notes != "" {
		inv.ApprovalNotes = notes
	}
}

// Reject moves the invoice to rejected.
func (inv *Invoice) Reject(notes string) {
	inv.Status = StatusRejected
	if notes != "" {
		inv.ApprovalNotes = notes
	}
}

// MarkProcessed stamps the processing time and state.
func (inv *Invoice) MarkProcessed() {
	now := time.Now()
	inv.Status = StatusProcessed
	inv.ProcessedAt = &now
}

// MarkSyncedToERP stamps the sync time; an approved invoice moves to synced.
func (inv *Invoice) MarkSyncedToERP() {
	now := time.Now()
	inv.SyncedToERPAt = &now
	if inv.Status == StatusApproved {
		inv.Status = StatusSynced
	}
}

// RequiresManualReview reports whether the invoice needs a human look:
// flagged explicitly, low OCR confidence, or missing critical fields.
func (inv *Invoice) RequiresManualReview() bool {
	if inv.ManualReviewRequired {
		return true
	}
	if inv.OCRConfidence > 0 && inv.OCRConfidence < reviewConfidenceThreshold {
		return true
	}
	if inv.InvoiceNumber == "" || inv.TotalAmount == 0 || inv.VendorID == nil {
		return true
	}
	return false
}

// VendorName returns the extracted vendor name, falling back to a
// placeholder.
func (inv *Invoice) VendorName() string {
	if inv.ExtractedFields != nil {
		if name, ok := inv.ExtractedFields["vendor_name"].(string); ok && name != "" {
			return name
		}
	}
	return "Unknown Vendor"
}

// ListQuery filters invoice listing. A zero UserID means all users.
type ListQuery struct {
	UserID primitive.ObjectID
	Status Status
	Skip   int
	Limit  int
}

// SearchQuery drives full-text search over invoice OCR text.
type SearchQuery struct {
	Query  string
	UserID primitive.ObjectID
	Status Status
	Since  *time.Time
	Until  *time.Time
	Limit  int
	Offset int
}

// DashboardStats summarizes a user's invoices for the dashboard.
type DashboardStats struct {
	TotalInvoices      int64   `json:"total_invoices"`
	PendingReview      int64   `json:"pending_review"`
	ApprovedInvoices   int64   `json:"approved_invoices"`
	ProcessingAccuracy float64 `json:"processing_accuracy"`
	AvgProcessingTime  float64 `json:"avg_processing_time"`
}

// UploadResult is the response body for a processed upload.
type UploadResult struct {
	Status          string         `json:"status"`
	InvoiceID       string         `json:"invoice_id"`
	ExtractedData   map[string]any `json:"extracted_data"`
	ConfidenceScore float64        `json:"confidence_score"`
}
