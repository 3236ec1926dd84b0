package ocr

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"
)

// TextProvider treats the document as plain text. It is the last link in the
// provider chain so processing never comes up empty-handed for text inputs.
type TextProvider struct{}

func (TextProvider) Name() string { return "text" }

func (TextProvider) Extract(_ context.Context, filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	if !utf8.Valid(content) {
		return "", fmt.Errorf("document is not plain text")
	}
	return string(content), nil
}
