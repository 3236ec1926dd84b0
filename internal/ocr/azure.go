package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// AzureProvider reads documents with the Azure Computer Vision Read API:
// submit the file, then poll the returned operation until it settles.
type AzureProvider struct {
	endpoint string
	key      string
	client   *http.Client
}

func NewAzureProvider(endpoint, key string, timeout time.Duration) *AzureProvider {
	return &AzureProvider{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		key:      key,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *AzureProvider) Name() string { return "azure" }

type azureReadResult struct {
	Status        string `json:"status"`
	AnalyzeResult struct {
		ReadResults []struct {
			Lines []struct {
				Text string `json:"text"`
			} `json:"lines"`
		} `json:"readResults"`
	} `json:"analyzeResult"`
}

func (p *AzureProvider) Extract(ctx context.Context, filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.endpoint+"/vision/v3.2/read/analyze", strings.NewReader(string(content)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", p.key)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("azure submit: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("azure submit: unexpected status %d", resp.StatusCode)
	}

	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", fmt.Errorf("azure submit: missing Operation-Location header")
	}

	for {
		result, err := p.pollOnce(ctx, opURL)
		if err != nil {
			return "", err
		}

		switch result.Status {
		case "succeeded":
			var lines []string
			for _, page := range result.AnalyzeResult.ReadResults {
				for _, line := range page.Lines {
					lines = append(lines, line.Text)
				}
			}
			return strings.Join(lines, "\n"), nil
		case "failed":
			return "", fmt.Errorf("azure read operation failed")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

func (p *AzureProvider) pollOnce(ctx context.Context, opURL string) (*azureReadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", p.key)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("azure poll: %w", err)
	}
	defer resp.Body.Close()

	var result azureReadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("azure poll: decode result: %w", err)
	}
	return &result, nil
}
