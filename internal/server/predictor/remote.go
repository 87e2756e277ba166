package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/premio/internal/server/models"
)

// Remote scores attribute sets against an external HTTP endpoint. Each call
// is bounded by the configured timeout; there are no retries, a failure is
// returned to the caller as-is.
type Remote struct {
	url    string
	client *http.Client
}

func NewRemote(url string, timeout time.Duration) *Remote {
	return &Remote{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type remoteResponse struct {
	Success    bool    `json:"success"`
	Prediction float64 `json:"prediction"`
	Error      string  `json:"error"`
}

func (r *Remote) Predict(ctx context.Context, a models.AttributeSet) (float64, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("scoring endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("scoring endpoint: unexpected status %s", resp.Status)
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if !out.Success {
		return 0, fmt.Errorf("scoring endpoint: %s", out.Error)
	}

	return out.Prediction, nil
}
