package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ThisaraSadesh/Threads-SL/internal/metrics"
	"go.uber.org/zap"
)

// moderationThreshold is the per-category rejection threshold. Any category
// score above it rejects the content.
const moderationThreshold = 0.1

// ModerationGate checks raw post text before any write happens. A nil error
// means the content passed. Rejection comes back as *ValidationRejectedError;
// a classifier response without usable scores comes back as
// ErrModerationUnavailable (fail closed).
type ModerationGate interface {
	Check(ctx context.Context, text string) error
}

// ModerationClient calls the external NSFW text classification API.
type ModerationClient struct {
	httpClient *http.Client
	url        string
	apiKey     string
	logger     *zap.Logger
}

// NewModerationClient creates a ModerationClient with a bounded request
// timeout, independent of the rest of the write path.
func NewModerationClient(url, apiKey string, logger *zap.Logger) *ModerationClient {
	return &ModerationClient{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		url:        url,
		apiKey:     apiKey,
		logger:     logger,
	}
}

type moderationRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type moderationResponse struct {
	ModerationClasses map[string]float64 `json:"moderation_classes"`
}

// Check classifies text and enforces the accept/reject thresholds.
func (c *ModerationClient) Check(ctx context.Context, text string) error {
	body, err := json.Marshal(moderationRequest{Text: text, Language: "en"})
	if err != nil {
		return fmt.Errorf("marshal moderation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build moderation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-rapidapi-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("moderation API unreachable", zap.Error(err))
		metrics.ModerationVerdicts.WithLabelValues("unavailable").Inc()
		return fmt.Errorf("%w: %v", ErrModerationUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("moderation API returned non-200", zap.Int("status", resp.StatusCode))
		metrics.ModerationVerdicts.WithLabelValues("unavailable").Inc()
		return fmt.Errorf("%w: status %d", ErrModerationUnavailable, resp.StatusCode)
	}

	var result moderationResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || len(result.ModerationClasses) == 0 {
		// No usable category scores: fail closed rather than letting
		// unchecked content through.
		metrics.ModerationVerdicts.WithLabelValues("unavailable").Inc()
		return fmt.Errorf("%w: response carried no category scores", ErrModerationUnavailable)
	}

	offending := make(map[string]float64)
	for category, score := range result.ModerationClasses {
		if score > moderationThreshold {
			offending[category] = score
		}
	}
	if len(offending) > 0 {
		metrics.ModerationVerdicts.WithLabelValues("rejected").Inc()
		return &ValidationRejectedError{Scores: offending}
	}

	metrics.ModerationVerdicts.WithLabelValues("accepted").Inc()
	return nil
}
