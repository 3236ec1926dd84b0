package erp

import (
	"context"
	"log/slog"
	"time"

	"docbot/internal/invoices"
	"docbot/internal/vendors"
)

// Service fans syncs out to every active ERP connector.
type Service struct {
	connectors map[string]Connector
	active     []string
	log        *slog.Logger
}

func NewService(log *slog.Logger, connectors ...Connector) *Service {
	byName := make(map[string]Connector, len(connectors))
	for _, c := range connectors {
		byName[c.Name()] = c
	}
	return &Service{connectors: byName, log: log}
}

// Initialize authenticates each connector and records the active set.
// Unconfigured connectors are skipped, not fatal.
func (s *Service) Initialize(ctx context.Context) {
	for name, c := range s.connectors {
		if err := c.Authenticate(ctx); err != nil {
			s.log.Warn("erp integration not activated", "system", name, "error", err)
			continue
		}
		s.active = append(s.active, name)
		s.log.Info("erp integration activated", "system", name)
	}
}

// Active reports the names of authenticated connectors.
func (s *Service) Active() []string {
	return s.active
}

// SyncInvoice pushes the invoice to all active systems, collecting
// per-system results. A connector failure is recorded, not propagated.
func (s *Service) SyncInvoice(ctx context.Context, inv *invoices.Invoice) map[string]*SyncResult {
	results := make(map[string]*SyncResult, len(s.active))

	for _, name := range s.active {
		result, err := s.connectors[name].SyncInvoice(ctx, inv)
		if err != nil {
			s.log.Error("invoice sync failed", "system", name, "invoice", inv.ID.Hex(), "error", err)
			results[name] = &SyncResult{System: name, Error: err.Error(), SyncTime: time.Now()}
			continue
		}
		s.log.Info("invoice synced", "system", name, "invoice", inv.ID.Hex(), "erp_id", result.ERPID)
		results[name] = result
	}
	return results
}

// SyncVendor pushes the vendor to all active systems.
func (s *Service) SyncVendor(ctx context.Context, v *vendors.Vendor) map[string]*SyncResult {
	results := make(map[string]*SyncResult, len(s.active))

	for _, name := range s.active {
		result, err := s.connectors[name].SyncVendor(ctx, v)
		if err != nil {
			s.log.Error("vendor sync failed", "system", name, "vendor", v.ID.Hex(), "error", err)
			results[name] = &SyncResult{System: name, Error: err.Error(), SyncTime: time.Now()}
			continue
		}
		results[name] = result
	}
	return results
}

// Status reports every configured integration and whether it is active.
func (s *Service) Status() *Status {
	status := &Status{
		ActiveIntegrations: s.active,
		TotalSystems:       len(s.connectors),
		Systems:            map[string]SystemStatus{},
	}
	if status.ActiveIntegrations == nil {
		status.ActiveIntegrations = []string{}
	}

	for name := range s.connectors {
		active := false
		for _, a := range s.active {
			if a == name {
				active = true
				break
			}
		}
		status.Systems[name] = SystemStatus{
			Name:      name,
			Active:    active,
			LastCheck: time.Now(),
		}
	}
	return status
}
