package erp

import (
	"errors"
	"log/slog"
	"net/http"

	"docbot/internal/auth"
	"docbot/internal/invoices"
	"docbot/internal/web"
)

type Handler struct {
	svc        *Service
	invoiceSvc *invoices.Service
	log        *slog.Logger
}

func NewHandler(svc *Service, invoiceSvc *invoices.Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, invoiceSvc: invoiceSvc, log: log}
}

// SyncInvoice handles POST /api/v1/invoices/{id}/sync
func (h *Handler) SyncInvoice(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		web.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	inv, err := h.invoiceSvc.Get(r.Context(), r.PathValue("id"), user.ID)
	switch {
	case errors.Is(err, invoices.ErrInvoiceNotFound):
		web.Error(w, "Invoice not found", http.StatusNotFound)
		return
	case errors.Is(err, invoices.ErrInvalidID):
		web.Error(w, "invalid invoice ID", http.StatusBadRequest)
		return
	case err != nil:
		h.log.Error("failed to fetch invoice", "error", err)
		web.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if inv.Status != invoices.StatusApproved {
		web.Error(w, "invoice must be approved before syncing", http.StatusConflict)
		return
	}

	if len(h.svc.Active()) == 0 {
		web.Error(w, "no active ERP integrations", http.StatusServiceUnavailable)
		return
	}

	results := h.svc.SyncInvoice(r.Context(), inv)

	synced := false
	for _, result := range results {
		if result.Success {
			synced = true
			break
		}
	}
	if synced {
		if err := h.invoiceSvc.MarkSynced(r.Context(), inv); err != nil {
			h.log.Error("failed to mark invoice synced", "invoice", inv.ID.Hex(), "error", err)
		}
	}

	web.JSON(w, map[string]any{
		"invoice_id": inv.ID.Hex(),
		"status":     inv.Status,
		"results":    results,
	}, http.StatusOK)
}

// Status handles GET /api/v1/erp/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	web.JSON(w, h.svc.Status(), http.StatusOK)
}
