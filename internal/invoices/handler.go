package invoices

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"docbot/internal/auth"
	"docbot/internal/storage"
	"docbot/internal/web"
)

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Upload handles POST /api/v1/invoices/upload
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		web.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		web.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	inv, err := h.svc.ProcessUpload(r.Context(), user.ID, header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTypeNotAllowed),
			errors.Is(err, storage.ErrEmptyFile),
			errors.Is(err, storage.ErrContentMismatch):
			web.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, storage.ErrFileTooLarge):
			web.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		default:
			h.log.Error("failed to process upload", "error", err)
			web.Error(w, "error processing invoice", http.StatusInternalServerError)
		}
		return
	}

	web.JSON(w, UploadResult{
		Status:          "success",
		InvoiceID:       inv.ID.Hex(),
		ExtractedData:   inv.ExtractedFields,
		ConfidenceScore: inv.OCRConfidence,
	}, http.StatusOK)
}

// List handles GET /api/v1/invoices
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		web.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	q := ListQuery{
		UserID: user.ID,
		Status: Status(r.URL.Query().Get("status_filter")),
		Skip:   web.ParseInt(r.URL.Query().Get("skip"), 0),
		Limit:  web.ParseInt(r.URL.Query().Get("limit"), 100),
	}

	invoiceList, err := h.svc.List(r.Context(), q)
	if err != nil {
		h.log.Error("failed to list invoices", "error", err)
		web.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	web.JSON(w, map[string]any{"invoices": invoiceList}, http.StatusOK)
}

// Get handles GET /api/v1/invoices/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		web.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	inv, err := h.svc.Get(r.Context(), r.PathValue("id"), user.ID)
	switch {
	case errors.Is(err, ErrInvoiceNotFound):
		web.Error(w, "Invoice not found", http.StatusNotFound)
		return
	case errors.Is(err, ErrInvalidID):
		web.Error(w, "invalid invoice ID", http.StatusBadRequest)
		return
	case err != nil:
		h.log.Error("failed to fetch invoice", "error", err)
		web.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	web.JSON(w, inv, http.StatusOK)
}

type reviewInput struct {
	Notes string `json:"notes"`
}

// Approve handles PUT /api/v1/invoices/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.svc.Approve, "Invoice approved")
}

// Reject handles PUT /api/v1/invoices/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.svc.Reject, "Invoice rejected")
}

func (h *Handler) review(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, id string, user primitive.ObjectID, notes string) (*Invoice, error),
	message string,
) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		web.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var input reviewInput
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&input) // body is optional
	}

	_, err := apply(r.Context(), r.PathValue("id"), user.ID, input.Notes)
	switch {
	case errors.Is(err, ErrInvoiceNotFound):
		web.Error(w, "Invoice not found", http.StatusNotFound)
		return
	case errors.Is(err, ErrAlreadySynced):
		web.Error(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, ErrInvalidID):
		web.Error(w, "invalid invoice ID", http.StatusBadRequest)
		return
	case err != nil:
		h.log.Error("failed to update invoice", "error", err)
		web.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	web.JSON(w, map[string]string{"status": "success", "message": message}, http.StatusOK)
}

// DashboardStats handles GET /api/v1/stats/dashboard
func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		web.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	stats, err := h.svc.DashboardStats(r.Context(), user.ID)
	if err != nil {
		h.log.Error("failed to aggregate stats", "error", err)
		web.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	web.JSON(w, stats, http.StatusOK)
}
