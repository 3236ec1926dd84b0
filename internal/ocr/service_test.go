package ocr

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name string
	text string
	err  error
}

func (p fakeProvider) Name() string { return p.name }

func (p fakeProvider) Extract(_ context.Context, _ string) (string, error) {
	return p.text, p.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcess_FallsThroughFailedProvider(t *testing.T) {
	svc := NewServiceWithProviders(discardLogger(),
		fakeProvider{name: "azure", err: errors.New("endpoint unreachable")},
		fakeProvider{name: "tesseract", text: "Invoice #: INV-9\nTotal: $42.00\nAcme Widgets\n"},
	)

	res, err := svc.Process(context.Background(), "doc.pdf", "")
	require.NoError(t, err)

	assert.Equal(t, "tesseract", res.Provider)
	assert.Equal(t, "INV-9", res.Fields["invoice_number"])
	assert.InDelta(t, 42.0, res.Fields["total_amount"].(float64), 0.001)
	assert.Greater(t, res.Overall(), 0.0)
}

func TestProcess_PreferredProviderGoesFirst(t *testing.T) {
	svc := NewServiceWithProviders(discardLogger(),
		fakeProvider{name: "azure", text: "from azure"},
		fakeProvider{name: "tesseract", text: "from tesseract"},
	)

	res, err := svc.Process(context.Background(), "doc.pdf", "tesseract")
	require.NoError(t, err)
	assert.Equal(t, "tesseract", res.Provider)
	assert.Equal(t, "from tesseract", res.RawText)
}

func TestProcess_UnknownPreferredUsesFullChain(t *testing.T) {
	svc := NewServiceWithProviders(discardLogger(),
		fakeProvider{name: "azure", text: "from azure"},
	)

	res, err := svc.Process(context.Background(), "doc.pdf", "google")
	require.NoError(t, err)
	assert.Equal(t, "azure", res.Provider)
}

func TestProcess_AllProvidersFail(t *testing.T) {
	boom := errors.New("boom")
	svc := NewServiceWithProviders(discardLogger(),
		fakeProvider{name: "azure", err: boom},
		fakeProvider{name: "tesseract", err: errors.New("binary not found")},
	)

	_, err := svc.Process(context.Background(), "doc.pdf", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "all OCR providers failed")
}

func TestNewService_ChainWithoutAzure(t *testing.T) {
	svc := NewService(Options{TesseractPath: "tesseract"}, discardLogger())
	require.Len(t, svc.providers, 2)
	assert.Equal(t, "tesseract", svc.providers[0].Name())
	assert.Equal(t, "text", svc.providers[1].Name())
}

func TestNewService_ChainWithAzure(t *testing.T) {
	svc := NewService(Options{
		AzureEndpoint: "https://example.cognitiveservices.azure.com",
		AzureKey:      "key",
		TesseractPath: "tesseract",
	}, discardLogger())
	require.Len(t, svc.providers, 3)
	assert.Equal(t, "azure", svc.providers[0].Name())
}
