package guardian

import (
	"context"
	"errors"
	"time"

	"github.com/guardianai/client-go/internal/api"
	"github.com/guardianai/client-go/internal/redact"
)

// MaxTextBytes bounds the input accepted by Analyze. Longer inputs fail
// validation before any network activity.
const MaxTextBytes = 1 << 20

// Threat is one detected threat category with its confidence.
type Threat struct {
	Category        string
	ConfidenceScore float64
	Details         string
}

// AnalysisResult is the outcome of a successful analysis. It is
// immutable once returned.
type AnalysisResult struct {
	RequestID       string
	RiskScore       float64
	ThreatsDetected []Threat
	Metadata        map[string]any
}

// HealthStatus reports the service health.
type HealthStatus struct {
	Status string
}

// Analyze submits text for threat analysis. Validation failures
// surface immediately with KindValidation and zero network attempts;
// transient failures are retried internally, and only the final
// classified error or the parsed result crosses this boundary.
func (c *Client) Analyze(ctx context.Context, text string, opts ...AnalyzeOption) (*AnalysisResult, error) {
	apiClient, settings, err := c.snapshot()
	if err != nil {
		return nil, err
	}

	if text == "" {
		return nil, newValidationError(ErrEmptyText)
	}
	if len(text) > MaxTextBytes {
		return nil, newValidationError(ErrTextTooLong)
	}
	if settings.redactPII {
		text = redact.Text(text)
	}

	var callCfg analyzeConfig
	for _, opt := range opts {
		opt(&callCfg)
	}

	req := api.AnalyzeRequest{Text: text}
	if callCfg.modelVersion != "" || callCfg.complianceMode != "" {
		req.Config = &api.AnalyzeConfig{
			ModelVersion:   callCfg.modelVersion,
			ComplianceMode: callCfg.complianceMode,
		}
	}

	resp, err := apiClient.Analyze(ctx, req)
	if err != nil {
		return nil, c.finish("/v1/analyze", wrapError(err))
	}
	c.finish("/v1/analyze", nil)

	result := &AnalysisResult{
		RequestID: resp.RequestID,
		RiskScore: resp.RiskScore,
		Metadata:  resp.Metadata,
	}
	for _, t := range resp.ThreatsDetected {
		result.ThreatsDetected = append(result.ThreatsDetected, Threat{
			Category:        t.Category,
			ConfidenceScore: t.ConfidenceScore,
			Details:         t.Details,
		})
	}
	return result, nil
}

// Health checks the service health endpoint. It shares the client's
// transport, timeout, and retry behavior.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	apiClient, _, err := c.snapshot()
	if err != nil {
		return nil, err
	}

	resp, err := apiClient.Health(ctx)
	if err != nil {
		return nil, c.finish("/healthz", wrapError(err))
	}
	c.finish("/healthz", nil)
	return &HealthStatus{Status: resp.Status}, nil
}

// finish records the call outcome and emits the closing request event.
func (c *Client) finish(operation string, err error) error {
	c.mu.RLock()
	sink := c.sink
	c.mu.RUnlock()

	if err == nil {
		c.metrics.recordOutcome(operation, "")
		return nil
	}

	var gerr *Error
	if errors.As(err, &gerr) {
		c.metrics.recordOutcome(operation, gerr.Kind)
		sink.Emit(Event{
			Time:       time.Now(),
			Channel:    ChannelRequest,
			Message:    "call failed",
			Kind:       gerr.Kind,
			StatusCode: gerr.StatusCode,
		})
	} else {
		c.metrics.recordOutcome(operation, KindUnknown)
	}
	return err
}
