package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Enrichment asks an informational webhook for free text about a creature.
type Enrichment struct {
	webhookURL string
	httpClient *http.Client
}

func NewEnrichment(webhookURL string) *Enrichment {
	return &Enrichment{webhookURL: webhookURL, httpClient: &http.Client{}}
}

// Describe posts {"pokemon": name} and returns the webhook's "output" text.
func (e *Enrichment) Describe(ctx context.Context, name string) (string, error) {
	data, err := json.Marshal(map[string]string{"pokemon": name})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.webhookURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("enrichment webhook returned status %d", resp.StatusCode)
	}
	var out struct {
		Output string `json:"output"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&out); err != nil {
		return "", fmt.Errorf("decode enrichment response: %w", err)
	}
	return out.Output, nil
}
