package erp

import (
	"context"
	"errors"
	"time"

	"docbot/internal/invoices"
	"docbot/internal/vendors"
)

var (
	ErrNotConfigured = errors.New("erp connector not configured")
)

// SyncResult reports the outcome of a sync against one ERP system.
type SyncResult struct {
	Success  bool      `json:"success"`
	System   string    `json:"system"`
	ERPID    string    `json:"erp_id,omitempty"`
	SyncTime time.Time `json:"sync_time"`
	Error    string    `json:"error,omitempty"`
}

// Connector is one ERP system integration.
type Connector interface {
	Name() string
	Authenticate(ctx context.Context) error
	SyncInvoice(ctx context.Context, inv *invoices.Invoice) (*SyncResult, error)
	SyncVendor(ctx context.Context, v *vendors.Vendor) (*SyncResult, error)
	SyncStatus(ctx context.Context, invoiceID string) (*SyncResult, error)
}

// SystemStatus describes one configured integration.
type SystemStatus struct {
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	LastCheck time.Time `json:"last_check"`
}

// Status summarizes all integrations.
type Status struct {
	ActiveIntegrations []string                `json:"active_integrations"`
	TotalSystems       int                     `json:"total_systems"`
	Systems            map[string]SystemStatus `json:"systems"`
}
