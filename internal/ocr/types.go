package ocr

import (
	"context"
	"time"
)

// Result is the outcome of running a document through the pipeline.
type Result struct {
	RawText        string
	Fields         map[string]any
	Confidence     map[string]float64
	ProcessingTime time.Duration
	Provider       string
}

// Overall returns the combined confidence score.
func (r *Result) Overall() float64 {
	return r.Confidence["overall"]
}

// Provider extracts raw text from a document file.
type Provider interface {
	Name() string
	Extract(ctx context.Context, filePath string) (string, error)
}
