package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Service runs documents through a chain of OCR providers and extracts
// structured invoice fields from the text.
type Service struct {
	providers []Provider
	log       *slog.Logger
}

// Options configures the provider chain.
type Options struct {
	AzureEndpoint string
	AzureKey      string
	TesseractPath string
	Timeout       time.Duration
}

// NewService builds the provider chain: Azure when configured, then
// tesseract, then the plain-text reader as final fallback.
func NewService(opts Options, log *slog.Logger) *Service {
	var providers []Provider

	if opts.AzureKey != "" && opts.AzureEndpoint != "" {
		providers = append(providers, NewAzureProvider(opts.AzureEndpoint, opts.AzureKey, opts.Timeout))
		log.Info("azure OCR provider initialized")
	}

	providers = append(providers, NewTesseractProvider(opts.TesseractPath))
	providers = append(providers, TextProvider{})

	return &Service{providers: providers, log: log}
}

// NewServiceWithProviders wires an explicit chain.
func NewServiceWithProviders(log *slog.Logger, providers ...Provider) *Service {
	return &Service{providers: providers, log: log}
}

// Process extracts text and structured fields from the document. When the
// preferred provider is empty or unknown the chain is tried in order; a
// provider failure falls through to the next one.
func (s *Service) Process(ctx context.Context, filePath, preferred string) (*Result, error) {
	start := time.Now()

	chain := s.orderedChain(preferred)

	var text string
	var used string
	var errs []error
	for _, p := range chain {
		s.log.Info("processing document", "path", filePath, "provider", p.Name())

		out, err := p.Extract(ctx, filePath)
		if err != nil {
			s.log.Warn("provider failed", "provider", p.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		text = out
		used = p.Name()
		break
	}
	if used == "" {
		return nil, fmt.Errorf("all OCR providers failed: %w", errors.Join(errs...))
	}

	fields := ExtractFields(text)
	confidence := ConfidenceScores(text, fields)

	return &Result{
		RawText:        text,
		Fields:         fields,
		Confidence:     confidence,
		ProcessingTime: time.Since(start),
		Provider:       used,
	}, nil
}

func (s *Service) orderedChain(preferred string) []Provider {
	if preferred == "" {
		return s.providers
	}

	chain := make([]Provider, 0, len(s.providers))
	for _, p := range s.providers {
		if p.Name() == preferred {
			chain = append(chain, p)
		}
	}
	for _, p := range s.providers {
		if p.Name() != preferred {
			chain = append(chain, p)
		}
	}
	return chain
}
