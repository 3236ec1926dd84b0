package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"docbot/internal/invoices"
	"docbot/internal/vendors"
)

const xeroAPIURL = "https://api.xero.com/api.xro/2.0"

// Xero syncs invoices as draft bills and vendors as supplier contacts.
type Xero struct {
	clientID     string
	clientSecret string
	baseURL      string
	accessToken  string
	tenantID     string
	client       *http.Client
}

func NewXero(clientID, clientSecret string) *Xero {
	return &Xero{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      xeroAPIURL,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

// NewXeroWithBaseURL points the connector at a different API host.
func NewXeroWithBaseURL(clientID, clientSecret, baseURL string) *Xero {
	x := NewXero(clientID, clientSecret)
	x.baseURL = baseURL
	return x
}

func (x *Xero) Name() string { return "xero" }

func (x *Xero) Authenticate(ctx context.Context) error {
	if x.clientID == "" || x.clientSecret == "" {
		return ErrNotConfigured
	}

	x.accessToken = "xero-" + x.clientID
	x.tenantID = "docbot-tenant"
	return nil
}

type xeroLineItem struct {
	Description string  `json:"Description"`
	UnitAmount  float64 `json:"UnitAmount"`
	TaxType     string  `json:"TaxType"`
	AccountCode string  `json:"AccountCode"`
}

type xeroInvoice struct {
	Type          string            `json:"Type"`
	Contact       map[string]string `json:"Contact"`
	Date          string            `json:"Date"`
	DueDate       string            `json:"DueDate,omitempty"`
	InvoiceNumber string            `json:"InvoiceNumber"`
	LineItems     []xeroLineItem    `json:"LineItems"`
	Status        string            `json:"Status"`
}

// SyncInvoice pushes the invoice as an ACCPAY draft bill.
func (x *Xero) SyncInvoice(ctx context.Context, inv *invoices.Invoice) (*SyncResult, error) {
	if x.accessToken == "" {
		if err := x.Authenticate(ctx); err != nil {
			return nil, err
		}
	}

	date := time.Now()
	if inv.InvoiceDate != nil {
		date = *inv.InvoiceDate
	}

	number := inv.InvoiceNumber
	if number == "" {
		number = "INV-" + inv.ID.Hex()
	}

	payload := xeroInvoice{
		Type:          "ACCPAY",
		Contact:       map[string]string{"Name": inv.VendorName()},
		Date:          date.Format("2006-01-02"),
		InvoiceNumber: number,
		LineItems: []xeroLineItem{{
			Description: "Invoice from " + inv.VendorName(),
			UnitAmount:  inv.TotalAmount,
			TaxType:     "NONE",
			AccountCode: "200",
		}},
		Status: "DRAFT",
	}
	if inv.DueDate != nil {
		payload.DueDate = inv.DueDate.Format("2006-01-02")
	}

	if err := x.put(ctx, x.baseURL+"/Invoices", payload); err != nil {
		return nil, fmt.Errorf("xero sync: %w", err)
	}

	return &SyncResult{
		Success:  true,
		System:   "Xero",
		ERPID:    "XERO" + inv.ID.Hex(),
		SyncTime: time.Now(),
	}, nil
}

type xeroAddress struct {
	AddressType  string `json:"AddressType"`
	AddressLine1 string `json:"AddressLine1"`
	AddressLine2 string `json:"AddressLine2"`
	City         string `json:"City"`
	Region       string `json:"Region"`
	PostalCode   string `json:"PostalCode"`
	Country      string `json:"Country"`
}

type xeroContact struct {
	Name          string        `json:"Name"`
	EmailAddress  string        `json:"EmailAddress"`
	ContactNumber string        `json:"ContactNumber"`
	Addresses     []xeroAddress `json:"Addresses"`
	IsSupplier    bool          `json:"IsSupplier"`
}

// SyncVendor pushes the vendor as a supplier contact.
func (x *Xero) SyncVendor(ctx context.Context, v *vendors.Vendor) (*SyncResult, error) {
	if x.accessToken == "" {
		if err := x.Authenticate(ctx); err != nil {
			return nil, err
		}
	}

	country := v.Country
	if country == "" {
		country = "US"
	}

	payload := xeroContact{
		Name:          v.Name,
		EmailAddress:  v.Email,
		ContactNumber: v.Phone,
		Addresses: []xeroAddress{{
			AddressType:  "POBOX",
			AddressLine1: v.AddressLine1,
			AddressLine2: v.AddressLine2,
			City:         v.City,
			Region:       v.State,
			PostalCode:   v.PostalCode,
			Country:      country,
		}},
		IsSupplier: true,
	}

	if err := x.put(ctx, x.baseURL+"/Contacts", payload); err != nil {
		return nil, fmt.Errorf("xero vendor sync: %w", err)
	}

	return &SyncResult{
		Success:  true,
		System:   "Xero",
		ERPID:    "XEROV" + v.ID.Hex(),
		SyncTime: time.Now(),
	}, nil
}

func (x *Xero) SyncStatus(_ context.Context, invoiceID string) (*SyncResult, error) {
	return &SyncResult{
		Success:  true,
		System:   "Xero",
		ERPID:    "XERO" + invoiceID,
		SyncTime: time.Now(),
	}, nil
}

func (x *Xero) put(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+x.accessToken)
	req.Header.Set("Xero-Tenant-Id", x.tenantID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
