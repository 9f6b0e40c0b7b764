package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mizrahidaniel/code-sentiment-heatmap/internal/models"
)

// Retry policy for the inference endpoint
const (
	MaxRetries     = 3
	InitialBackoff = 500 * time.Millisecond
	userAgent      = "code-sentiment-heatmap"
)

// HTTP posts messages to a hosted text-classification endpoint that speaks
// the inference API shape: request {"inputs": text}, response a list of
// {label, score} (optionally nested one level).
type HTTP struct {
	endpoint string
	token    string
	client   *http.Client
	backoff  time.Duration
	logger   *slog.Logger
}

// NewHTTP creates an endpoint classifier
func NewHTTP(endpoint, token string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTP{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: timeout},
		backoff:  InitialBackoff,
		logger:   slog.Default().With("component", "http_classifier"),
	}
}

func (h *HTTP) Name() string { return BackendHTTP }

func (h *HTTP) Close() error {
	h.client.CloseIdleConnections()
	return nil
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify posts the text and returns the label distribution
func (h *HTTP) Classify(ctx context.Context, text string) (Result, error) {
	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal input: %w", err)
	}

	resp, err := h.doWithRetry(ctx, body)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("endpoint returned status %d: %s", resp.StatusCode, preview(respBody))
	}

	dist, err := decodeDistribution(respBody)
	if err != nil {
		return Result{}, err
	}

	scores := make(map[models.Label]float64, len(dist))
	for _, ls := range dist {
		scores[models.NormalizeLabel(ls.Label)] = ls.Score
	}
	return Result{Scores: scores}, nil
}

// doWithRetry retries transport errors and 5xx responses with exponential
// backoff. The request is rebuilt on every attempt.
func (h *HTTP) doWithRetry(ctx context.Context, body []byte) (*http.Response, error) {
	backoff := h.backoff
	var lastErr error

	for attempt := 0; attempt < MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", userAgent)
		if h.token != "" {
			req.Header.Set("Authorization", "Bearer "+h.token)
		}

		resp, err := h.client.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("status code %d", resp.StatusCode)
			resp.Body.Close()
		}

		h.logger.Warn("request failed, will retry", "attempt", attempt+1, "error", lastErr)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", MaxRetries, lastErr)
}

func decodeDistribution(data []byte) ([]labelScore, error) {
	var flat []labelScore
	if err := json.Unmarshal(data, &flat); err == nil && len(flat) > 0 && flat[0].Label != "" {
		return flat, nil
	}

	var nested [][]labelScore
	if err := json.Unmarshal(data, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0], nil
	}

	return nil, fmt.Errorf("unexpected response shape: %s", preview(data))
}

func preview(body []byte) string {
	raw := string(body)
	if len(raw) > 80 {
		raw = raw[:80]
	}
	return raw
}
