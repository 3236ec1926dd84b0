package erp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"docbot/internal/invoices"
	"docbot/internal/vendors"
)

func TestQuickBooks_Authenticate(t *testing.T) {
	qb := NewQuickBooks("client-id", "client-secret")
	require.NoError(t, qb.Authenticate(context.Background()))
	assert.Equal(t, "quickbooks", qb.Name())
}

func TestQuickBooks_AuthenticateUnconfigured(t *testing.T) {
	qb := NewQuickBooks("", "")
	assert.ErrorIs(t, qb.Authenticate(context.Background()), ErrNotConfigured)
}

func TestQuickBooks_SyncInvoice(t *testing.T) {
	invoiceDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	inv := &invoices.Invoice{
		ID:            primitive.NewObjectID(),
		InvoiceNumber: "INV-2024-0042",
		TotalAmount:   1646.45,
		InvoiceDate:   &invoiceDate,
		ExtractedFields: map[string]any{
			"vendor_name": "Acme Office Supplies Inc",
		},
	}

	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"QueryResponse":{"Invoice":[{"Id":"QB-REMOTE-77"}]}}`))
	}))
	defer srv.Close()

	qb := NewQuickBooksWithBaseURL("client-id", "client-secret", srv.URL)
	res, err := qb.SyncInvoice(context.Background(), inv)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "QuickBooks", res.System)
	assert.Equal(t, "QB-REMOTE-77", res.ERPID)

	assert.Equal(t, "/v3/company/123456789/invoice", gotPath)
	assert.Equal(t, "Bearer sandbox-client-id", gotAuth)
	assert.Equal(t, "INV-2024-0042", gotBody["DocNumber"])
	assert.Equal(t, "2024-01-15", gotBody["TxnDate"])
	assert.Contains(t, gotBody["PrivateNote"], "Acme Office Supplies Inc")

	lines := gotBody["Line"].([]any)
	require.Len(t, lines, 1)
	assert.InDelta(t, 1646.45, lines[0].(map[string]any)["Amount"].(float64), 0.001)
}

func TestQuickBooks_SyncInvoiceServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "fault", http.StatusBadGateway)
	}))
	defer srv.Close()

	qb := NewQuickBooksWithBaseURL("client-id", "client-secret", srv.URL)
	_, err := qb.SyncInvoice(context.Background(), &invoices.Invoice{ID: primitive.NewObjectID()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quickbooks sync")
}

func TestQuickBooks_SyncVendor(t *testing.T) {
	vendor := &vendors.Vendor{
		ID:           primitive.NewObjectID(),
		Name:         "Acme Office Supplies Inc",
		Email:        "billing@acme.example",
		Phone:        "555-0100",
		AddressLine1: "123 Commerce Street",
		City:         "Springfield",
		State:        "IL",
		PostalCode:   "62701",
	}

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/company/123456789/vendor", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	qb := NewQuickBooksWithBaseURL("client-id", "client-secret", srv.URL)
	res, err := qb.SyncVendor(context.Background(), vendor)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "QBV"+vendor.ID.Hex(), res.ERPID)
	assert.Equal(t, "Acme Office Supplies Inc", gotBody["Name"])

	addr := gotBody["BillAddr"].(map[string]any)
	assert.Equal(t, "Springfield", addr["City"])
	assert.Equal(t, "US", addr["Country"])
}
