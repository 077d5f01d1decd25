// Package generate forwards news generation requests to the workflow webhook
// which produces the item and stores it in the remote store.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/umputun/newsdesk/pkg/domain"
)

// DefaultTimeout is how long a single generation may take
const DefaultTimeout = 30 * time.Second

// ErrAssetRequired is returned before any call when the asset is empty
var ErrAssetRequired = errors.New("asset is required")

// Webhook posts generation requests to the configured webhook url
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook makes a generator for the given url. Zero timeout means DefaultTimeout.
func NewWebhook(url string, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Webhook{url: url, client: &http.Client{Timeout: timeout}}
}

// Generate sends {asset, language} to the webhook. Failures of the call itself are reported
// in GenerateResult.Error, the returned error is only set for invalid input.
func (w *Webhook) Generate(ctx context.Context, req domain.GenerateRequest) (domain.GenerateResult, error) {
	req.Asset = strings.TrimSpace(req.Asset)
	if req.Asset == "" {
		return domain.GenerateResult{}, ErrAssetRequired
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return domain.GenerateResult{}, fmt.Errorf("marshal generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return domain.GenerateResult{}, fmt.Errorf("create generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(httpReq)
	if err != nil {
		log.Printf("[WARN] generation webhook call for %s failed: %v", req.Asset, err)
		return domain.GenerateResult{Error: err.Error()}, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[WARN] can't read generation webhook response for %s: %v", req.Asset, err)
		return domain.GenerateResult{Error: err.Error()}, nil
	}

	// the webhook often answers 200 even when the workflow failed, so the status alone decides nothing.
	// json bodies are passed through, anything else becomes the output text.
	var res domain.GenerateResult
	if err := json.Unmarshal(body, &res); err != nil {
		return domain.GenerateResult{Output: string(body)}, nil
	}
	if res.Output == nil && res.Error == "" {
		var raw any
		if err := json.Unmarshal(body, &raw); err == nil {
			res.Output = raw
		}
	}
	log.Printf("[DEBUG] generation webhook for %s answered with status %d", req.Asset, resp.StatusCode)
	return res, nil
}
