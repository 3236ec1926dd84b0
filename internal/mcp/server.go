package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"docbot/internal/invoices"
	"docbot/internal/vendors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server exposing the invoice domain to agents.
// Tools operate across all users; the endpoint is an operator surface, not
// part of the authenticated API.
func NewServer(invoiceSvc *invoices.Service, vendorRepo *vendors.Repo) *server.MCPServer {
	s := server.NewMCPServer(
		"DocBot",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("list_invoices",
			mcp.WithDescription("List invoices, newest first, with optional status filtering. Use this for an overview of what is in the processing queue."),
			mcp.WithString("status",
				mcp.Description("Optional: filter by status (pending, approved, rejected, processed, synced)"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of invoices to return (default: 50, max: 500)"),
			),
			mcp.WithNumber("offset",
				mcp.Description("Number of invoices to skip for pagination (default: 0)"),
			),
		),
		handleListInvoices(invoiceSvc),
	)

	s.AddTool(
		mcp.NewTool("search_invoices",
			mcp.WithDescription("Full-text search across invoice OCR text with optional status and date filtering. Use this to find invoices mentioning a vendor, product or amount."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Search query - searches the raw OCR text"),
			),
			mcp.WithString("status",
				mcp.Description("Optional: filter by status"),
			),
			mcp.WithString("since",
				mcp.Description("Optional: only invoices received after this date (YYYY-MM-DD or RFC3339)"),
			),
			mcp.WithString("until",
				mcp.Description("Optional: only invoices received before this date (YYYY-MM-DD or RFC3339)"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of invoices to return (default: 50, max: 200)"),
			),
		),
		handleSearchInvoices(invoiceSvc),
	)

	s.AddTool(
		mcp.NewTool("get_invoice",
			mcp.WithDescription("Get a specific invoice by its ID, including extracted fields and raw OCR text."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The invoice ID (24-character hex string)"),
			),
		),
		handleGetInvoice(invoiceSvc),
	)

	s.AddTool(
		mcp.NewTool("list_vendors",
			mcp.WithDescription("List known vendors sorted by name."),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of vendors to return (default: 100, max: 500)"),
			),
			mcp.WithNumber("offset",
				mcp.Description("Number of vendors to skip for pagination (default: 0)"),
			),
		),
		handleListVendors(vendorRepo),
	)

	s.AddTool(
		mcp.NewTool("dashboard_stats",
			mcp.WithDescription("Get processing statistics across all invoices: totals per status, OCR accuracy and average processing time."),
		),
		handleDashboardStats(invoiceSvc),
	)

	return s
}

// InvoiceResult is the invoice shape returned by tools.
type InvoiceResult struct {
	ID            string         `json:"id"`
	InvoiceNumber string         `json:"invoiceNumber"`
	VendorName    string         `json:"vendorName"`
	TotalAmount   float64        `json:"totalAmount"`
	Currency      string         `json:"currency"`
	Status        string         `json:"status"`
	Confidence    float64        `json:"confidence"`
	NeedsReview   bool           `json:"needsReview"`
	ReceivedAt    time.Time      `json:"receivedAt"`
	Fields        map[string]any `json:"fields,omitempty"`
	RawText       string         `json:"rawText,omitempty"`
}

func handleListInvoices(svc *invoices.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q := invoices.ListQuery{
			Status: invoices.Status(req.GetString("status", "")),
			Limit:  req.GetInt("limit", 50),
			Skip:   req.GetInt("offset", 0),
		}

		list, err := svc.List(ctx, q)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list invoices: %v", err)), nil
		}

		data, _ := json.MarshalIndent(invoicesToResults(list, false), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleSearchInvoices(svc *invoices.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}

		q := invoices.SearchQuery{
			Query:  query,
			Status: invoices.Status(req.GetString("status", "")),
			Limit:  req.GetInt("limit", 50),
		}

		if since := req.GetString("since", ""); since != "" {
			t, err := parseDate(since)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid 'since' date format: %v", err)), nil
			}
			q.Since = &t
		}
		if until := req.GetString("until", ""); until != "" {
			t, err := parseDate(until)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid 'until' date format: %v", err)), nil
			}
			q.Until = &t
		}

		list, err := svc.Search(ctx, q)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to search invoices: %v", err)), nil
		}

		data, _ := json.MarshalIndent(invoicesToResults(list, false), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleGetInvoice(svc *invoices.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		inv, err := svc.Get(ctx, id, primitive.NilObjectID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get invoice: %v", err)), nil
		}

		result := invoiceToResult(inv, true)
		data, _ := json.MarshalIndent(result, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleListVendors(repo *vendors.Repo) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list, err := repo.List(ctx, vendors.ListQuery{
			Limit: req.GetInt("limit", 100),
			Skip:  req.GetInt("offset", 0),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list vendors: %v", err)), nil
		}

		data, _ := json.MarshalIndent(list, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleDashboardStats(svc *invoices.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := svc.DashboardStats(ctx, primitive.NilObjectID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to aggregate stats: %v", err)), nil
		}

		data, _ := json.MarshalIndent(stats, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

// Helper functions

func invoiceToResult(inv *invoices.Invoice, full bool) InvoiceResult {
	result := InvoiceResult{
		ID:            inv.ID.Hex(),
		InvoiceNumber: inv.InvoiceNumber,
		VendorName:    inv.VendorName(),
		TotalAmount:   inv.TotalAmount,
		Currency:      inv.Currency,
		Status:        string(inv.Status),
		Confidence:    inv.OCRConfidence,
		NeedsReview:   inv.RequiresManualReview(),
		ReceivedAt:    inv.ReceivedDate,
	}
	if full {
		result.Fields = inv.ExtractedFields
		result.RawText = inv.OCRRawText
	}
	return result
}

func invoicesToResults(list []*invoices.Invoice, full bool) []InvoiceResult {
	results := make([]InvoiceResult, len(list))
	for i, inv := range list {
		results[i] = invoiceToResult(inv, full)
	}
	return results
}

func parseDate(s string) (time.Time, error) {
	// Try RFC3339 first
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}

	// Try YYYY-MM-DD
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("expected YYYY-MM-DD or RFC3339 format")
}
