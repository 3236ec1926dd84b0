package erp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"docbot/internal/auth"
	"docbot/internal/invoices"
	"docbot/internal/ocr"
	"docbot/internal/storage"
)

// fakeInvoiceStore backs the invoice service with an in-memory map.
type fakeInvoiceStore struct {
	invoices map[primitive.ObjectID]*invoices.Invoice
}

func newFakeInvoiceStore(invs ...*invoices.Invoice) *fakeInvoiceStore {
	s := &fakeInvoiceStore{invoices: map[primitive.ObjectID]*invoices.Invoice{}}
	for _, inv := range invs {
		if inv.ID.IsZero() {
			inv.ID = primitive.NewObjectID()
		}
		s.invoices[inv.ID] = inv
	}
	return s
}

func (s *fakeInvoiceStore) Insert(_ context.Context, inv *invoices.Invoice) error {
	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	s.invoices[inv.ID] = inv
	return nil
}

func (s *fakeInvoiceStore) FindByID(_ context.Context, id primitive.ObjectID, userID primitive.ObjectID) (*invoices.Invoice, error) {
	inv, ok := s.invoices[id]
	if !ok {
		return nil, invoices.ErrInvoiceNotFound
	}
	if !userID.IsZero() && inv.UserID != userID {
		return nil, invoices.ErrInvoiceNotFound
	}
	return inv, nil
}

func (s *fakeInvoiceStore) List(_ context.Context, _ invoices.ListQuery) ([]*invoices.Invoice, error) {
	return nil, nil
}

func (s *fakeInvoiceStore) Search(_ context.Context, _ invoices.SearchQuery) ([]*invoices.Invoice, error) {
	return nil, nil
}

func (s *fakeInvoiceStore) Update(_ context.Context, inv *invoices.Invoice) error {
	if _, ok := s.invoices[inv.ID]; !ok {
		return invoices.ErrInvoiceNotFound
	}
	s.invoices[inv.ID] = inv
	return nil
}

func (s *fakeInvoiceStore) DashboardStats(_ context.Context, _ primitive.ObjectID) (*invoices.DashboardStats, error) {
	return &invoices.DashboardStats{}, nil
}

func newSyncHandler(t *testing.T, store *fakeInvoiceStore, connectors ...Connector) *Handler {
	t.Helper()
	log := erpLogger()

	files, err := storage.New(t.TempDir(), 1024, []string{"pdf"}, log)
	require.NoError(t, err)

	invoiceSvc := invoices.NewService(store, files, ocr.NewServiceWithProviders(log), nil, 0.7, log)

	erpSvc := NewService(log, connectors...)
	erpSvc.Initialize(context.Background())
	return NewHandler(erpSvc, invoiceSvc, log)
}

func syncRequest(id string, user *auth.User) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/"+id+"/sync", nil)
	req = req.WithContext(auth.WithUser(req.Context(), user))
	req.SetPathValue("id", id)
	return req
}

func TestSyncInvoiceHandler(t *testing.T) {
	user := &auth.User{ID: primitive.NewObjectID()}
	inv := &invoices.Invoice{ID: primitive.NewObjectID(), Status: invoices.StatusApproved, UserID: user.ID}
	store := newFakeInvoiceStore(inv)
	h := newSyncHandler(t, store, &fakeConnector{name: "quickbooks"})

	rec := httptest.NewRecorder()
	h.SyncInvoice(rec, syncRequest(inv.ID.Hex(), user))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		InvoiceID string                 `json:"invoice_id"`
		Status    string                 `json:"status"`
		Results   map[string]*SyncResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, inv.ID.Hex(), resp.InvoiceID)
	assert.Equal(t, string(invoices.StatusSynced), resp.Status)
	require.Contains(t, resp.Results, "quickbooks")
	assert.True(t, resp.Results["quickbooks"].Success)

	assert.Equal(t, invoices.StatusSynced, store.invoices[inv.ID].Status)
	assert.NotNil(t, store.invoices[inv.ID].SyncedToERPAt)
}

func TestSyncInvoiceHandler_InvalidID(t *testing.T) {
	user := &auth.User{ID: primitive.NewObjectID()}
	h := newSyncHandler(t, newFakeInvoiceStore(), &fakeConnector{name: "quickbooks"})

	rec := httptest.NewRecorder()
	h.SyncInvoice(rec, syncRequest("not-hex", user))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid invoice ID")
}

func TestSyncInvoiceHandler_NotFound(t *testing.T) {
	user := &auth.User{ID: primitive.NewObjectID()}
	h := newSyncHandler(t, newFakeInvoiceStore(), &fakeConnector{name: "quickbooks"})

	rec := httptest.NewRecorder()
	h.SyncInvoice(rec, syncRequest(primitive.NewObjectID().Hex(), user))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSyncInvoiceHandler_NotApproved(t *testing.T) {
	user := &auth.User{ID: primitive.NewObjectID()}
	inv := &invoices.Invoice{ID: primitive.NewObjectID(), Status: invoices.StatusPending, UserID: user.ID}
	h := newSyncHandler(t, newFakeInvoiceStore(inv), &fakeConnector{name: "quickbooks"})

	rec := httptest.NewRecorder()
	h.SyncInvoice(rec, syncRequest(inv.ID.Hex(), user))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be approved")
}

func TestSyncInvoiceHandler_NoActiveIntegrations(t *testing.T) {
	user := &auth.User{ID: primitive.NewObjectID()}
	inv := &invoices.Invoice{ID: primitive.NewObjectID(), Status: invoices.StatusApproved, UserID: user.ID}
	h := newSyncHandler(t, newFakeInvoiceStore(inv),
		&fakeConnector{name: "quickbooks", authErr: ErrNotConfigured})

	rec := httptest.NewRecorder()
	h.SyncInvoice(rec, syncRequest(inv.ID.Hex(), user))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatusHandler(t *testing.T) {
	h := newSyncHandler(t, newFakeInvoiceStore(), &fakeConnector{name: "quickbooks"})

	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/api/v1/erp/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var status Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, []string{"quickbooks"}, status.ActiveIntegrations)
}
