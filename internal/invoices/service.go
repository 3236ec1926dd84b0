package invoices

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"docbot/internal/ocr"
	"docbot/internal/storage"
	"docbot/internal/vendors"
)

var (
	ErrAlreadySynced = errors.New("invoice already synced to ERP")
	ErrInvalidID     = errors.New("invalid invoice ID")
)

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, inv *Invoice) error
	FindByID(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID) (*Invoice, error)
	List(ctx context.Context, q ListQuery) ([]*Invoice, error)
	Search(ctx context.Context, q SearchQuery) ([]*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	DashboardStats(ctx context.Context, userID primitive.ObjectID) (*DashboardStats, error)
}

// Service runs the upload pipeline and owns invoice state transitions.
type Service struct {
	repo          Store
	store         *storage.Service
	ocr           *ocr.Service
	vendorRepo    *vendors.Repo
	minConfidence float64
	log           *slog.Logger
}

func NewService(repo Store, store *storage.Service, ocrSvc *ocr.Service, vendorRepo *vendors.Repo, minConfidence float64, log *slog.Logger) *Service {
	return &Service{
		repo:          repo,
		store:         store,
		ocr:           ocrSvc,
		vendorRepo:    vendorRepo,
		minConfidence: minConfidence,
		log:           log,
	}
}

// ProcessUpload saves the uploaded document, runs OCR extraction and
// persists the resulting invoice in pending state.
func (s *Service) ProcessUpload(ctx context.Context, userID primitive.ObjectID, filename string, file io.Reader) (*Invoice, error) {
	stored, err := s.store.Save(filename, file)
	if err != nil {
		return nil, err
	}

	result, err := s.ocr.Process(ctx, stored.Path, "")
	if err != nil {
		s.store.Delete(stored.Path)
		return nil, fmt.Errorf("process document: %w", err)
	}

	inv := buildInvoice(userID, stored, result, s.minConfidence)

	// Link a known vendor when the extracted name matches one exactly.
	if name := inv.VendorName(); name != "Unknown Vendor" && s.vendorRepo != nil {
		if vendor, err := s.vendorRepo.FindByName(ctx, name); err == nil {
			inv.VendorID = &vendor.ID
		}
	}

	if err := s.repo.Insert(ctx, inv); err != nil {
		return nil, err
	}

	s.log.Info("invoice processed",
		"invoice", inv.ID.Hex(),
		"provider", result.Provider,
		"confidence", result.Overall(),
	)
	return inv, nil
}

// buildInvoice maps an OCR result onto a new pending invoice.
func buildInvoice(userID primitive.ObjectID, stored *storage.StoredFile, res *ocr.Result, minConfidence float64) *Invoice {
	inv := &Invoice{
		Status:               StatusPending,
		Currency:             "USD",
		ReceivedDate:         time.Now(),
		OCRConfidence:        res.Overall(),
		OCRProvider:          res.Provider,
		ProcessingSeconds:    res.ProcessingTime.Seconds(),
		ManualReviewRequired: res.Overall() < minConfidence,
		OriginalFilename:     stored.OriginalFilename,
		FilePath:             stored.Path,
		FileSize:             stored.Size,
		FileType:             strings.TrimPrefix(stored.Ext, "."),
		FileHash:             stored.SHA256,
		ExtractedFields:      res.Fields,
		OCRRawText:           res.RawText,
		UserID:               userID,
	}

	inv.InvoiceNumber = stringField(res.Fields, "invoice_number")
	inv.PONumber = stringField(res.Fields, "po_number")
	inv.TotalAmount = floatField(res.Fields, "total_amount")
	inv.TaxAmount = floatField(res.Fields, "tax_amount")
	inv.Subtotal = floatField(res.Fields, "subtotal")

	if d := parseExtractedDate(stringField(res.Fields, "invoice_date")); d != nil {
		inv.InvoiceDate = d
	}
	if d := parseExtractedDate(stringField(res.Fields, "due_date")); d != nil {
		inv.DueDate = d
	}

	return inv
}

var extractedDateLayouts = []string{
	"1/2/2006",
	"1/2/06",
	"2006/1/2",
	"1-2-2006",
	"1-2-06",
	"2006-1-2",
}

func parseExtractedDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range extractedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func stringField(fields map[string]any, key string) string {
	v, _ := fields[key].(string)
	return v
}

func floatField(fields map[string]any, key string) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// Get retrieves an owner-scoped invoice.
func (s *Service) Get(ctx context.Context, id string, userID primitive.ObjectID) (*Invoice, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return s.repo.FindByID(ctx, oid, userID)
}

// List retrieves invoices with optional filters.
func (s *Service) List(ctx context.Context, q ListQuery) ([]*Invoice, error) {
	return s.repo.List(ctx, q)
}

// Search performs full-text search over OCR text.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]*Invoice, error) {
	return s.repo.Search(ctx, q)
}

// Approve marks an invoice approved for ERP sync.
func (s *Service) Approve(ctx context.Context, id string, user primitive.ObjectID, notes string) (*Invoice, error) {
	inv, err := s.Get(ctx, id, user)
	if err != nil {
		return nil, err
	}
	if inv.Status == StatusSynced {
		return nil, ErrAlreadySynced
	}

	inv.Approve(user, notes)
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.log.Info("invoice approved", "invoice", inv.ID.Hex(), "by", user.Hex())
	return inv, nil
}

// Reject marks an invoice rejected.
func (s *Service) Reject(ctx context.Context, id string, user primitive.ObjectID, notes string) (*Invoice, error) {
	inv, err := s.Get(ctx, id, user)
	if err != nil {
		return nil, err
	}
	if inv.Status == StatusSynced {
		return nil, ErrAlreadySynced
	}

	inv.Reject(notes)
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.log.Info("invoice rejected", "invoice", inv.ID.Hex(), "by", user.Hex())
	return inv, nil
}

// MarkSynced stamps a successful ERP sync and moves the stored document to
// the processed area.
func (s *Service) MarkSynced(ctx context.Context, inv *Invoice) error {
	inv.MarkSyncedToERP()
	if err := s.repo.Update(ctx, inv); err != nil {
		return err
	}

	if inv.FilePath != "" {
		dest, err := s.store.MoveToProcessed(inv.FilePath)
		if err != nil {
			s.log.Warn("could not move synced document", "invoice", inv.ID.Hex(), "error", err)
			return nil
		}
		inv.FilePath = dest
		if err := s.repo.Update(ctx, inv); err != nil {
			return fmt.Errorf("record moved file path: %w", err)
		}
	}
	return nil
}

// DashboardStats aggregates the user's invoices.
func (s *Service) DashboardStats(ctx context.Context, userID primitive.ObjectID) (*DashboardStats, error) {
	return s.repo.DashboardStats(ctx, userID)
}
