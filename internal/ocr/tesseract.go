package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// TesseractProvider shells out to the tesseract binary.
type TesseractProvider struct {
	binPath string
}

func NewTesseractProvider(binPath string) *TesseractProvider {
	if binPath == "" {
		binPath = "tesseract"
	}
	return &TesseractProvider{binPath: binPath}
}

func (p *TesseractProvider) Name() string { return "tesseract" }

func (p *TesseractProvider) Extract(ctx context.Context, filePath string) (string, error) {
	cmd := exec.CommandContext(ctx, p.binPath, filePath, "stdout", "--psm", "6")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, stderr.String())
	}
	return stdout.String(), nil
}
