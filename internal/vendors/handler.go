package vendors

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"docbot/internal/web"
)

type Handler struct {
	repo *Repo
	log  *slog.Logger
}

func NewHandler(repo *Repo, log *slog.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

type addressResponse struct {
	Line1       string `json:"line1"`
	Line2       string `json:"line2"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	FullAddress string `json:"full_address"`
}

type vendorResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Website      string          `json:"website"`
	Address      addressResponse `json:"address"`
	TaxID        string          `json:"tax_id"`
	TaxRate      float64         `json:"tax_rate"`
	PaymentTerms string          `json:"payment_terms"`
	Industry     string          `json:"industry"`
	IsActive     bool            `json:"is_active"`
	IsVerified   bool            `json:"is_verified"`
	RequiresPO   bool            `json:"requires_po"`
}

func toResponse(v *Vendor) vendorResponse {
	return vendorResponse{
		ID:      v.ID.Hex(),
		Name:    v.Name,
		Email:   v.Email,
		Phone:   v.Phone,
		Website: v.Website,
		Address: addressResponse{
			Line1:       v.AddressLine1,
			Line2:       v.AddressLine2,
			City:        v.City,
			State:       v.State,
			PostalCode:  v.PostalCode,
			Country:     v.Country,
			FullAddress: v.FullAddress(),
		},
		TaxID:        v.TaxID,
		TaxRate:      v.TaxRate,
		PaymentTerms: v.PaymentTerms,
		Industry:     v.Industry,
		IsActive:     v.IsActive,
		IsVerified:   v.IsVerified,
		RequiresPO:   v.RequiresPO,
	}
}

// List handles GET /api/v1/vendors
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := ListQuery{
		Skip:  web.ParseInt(r.URL.Query().Get("skip"), 0),
		Limit: web.ParseInt(r.URL.Query().Get("limit"), 100),
	}

	vendorList, err := h.repo.List(r.Context(), q)
	if err != nil {
		h.log.Error("failed to list vendors", "error", err)
		web.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	responses := make([]vendorResponse, len(vendorList))
	for i, v := range vendorList {
		responses[i] = toResponse(v)
	}

	web.JSON(w, map[string]any{"vendors": responses}, http.StatusOK)
}

// Create handles POST /api/v1/vendors
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var input CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		web.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(input.Name) == "" {
		web.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	country := input.Country
	if country == "" {
		country = "US"
	}

	vendor := &Vendor{
		Name:         strings.TrimSpace(input.Name),
		Email:        input.Email,
		Phone:        input.Phone,
		Website:      input.Website,
		AddressLine1: input.AddressLine1,
		AddressLine2: input.AddressLine2,
		City:         input.City,
		State:        input.State,
		PostalCode:   input.PostalCode,
		Country:      country,
		TaxID:        input.TaxID,
		TaxRate:      input.TaxRate,
		PaymentTerms: input.PaymentTerms,
		Industry:     input.Industry,
		RequiresPO:   input.RequiresPO,
		IsActive:     true,
	}

	if err := h.repo.Insert(r.Context(), vendor); err != nil {
		h.log.Error("failed to create vendor", "error", err)
		web.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	web.JSON(w, toResponse(vendor), http.StatusCreated)
}
