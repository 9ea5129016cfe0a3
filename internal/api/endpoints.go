package api

import "context"

// Analyze submits text for threat analysis.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	var result AnalyzeResponse
	if err := c.do(ctx, "POST", "/v1/analyze", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health checks the service health endpoint.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var result HealthResponse
	if err := c.do(ctx, "GET", "/healthz", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
