package api

// AnalyzeConfig carries optional per-call analysis settings. The zero
// value marshals to nothing; the request omits the config object
// entirely when no setting is present.
type AnalyzeConfig struct {
	ModelVersion   string `json:"model_version,omitempty"`
	ComplianceMode string `json:"compliance_mode,omitempty"`
}

// AnalyzeRequest represents the POST /v1/analyze request body.
type AnalyzeRequest struct {
	Text   string         `json:"text"`
	Config *AnalyzeConfig `json:"config,omitempty"`
}

// Threat is one detected threat in an analysis response.
type Threat struct {
	Category        string  `json:"category"`
	ConfidenceScore float64 `json:"confidence_score"`
	Details         string  `json:"details,omitempty"`
}

// AnalyzeResponse represents the POST /v1/analyze response body.
// risk_score is decoded as float64 to accept integer or fractional
// server representations.
type AnalyzeResponse struct {
	RequestID       string         `json:"request_id"`
	RiskScore       float64        `json:"risk_score"`
	ThreatsDetected []Threat       `json:"threats_detected"`
	Metadata        map[string]any `json:"metadata"`
}

// HealthResponse represents the GET /healthz response body.
type HealthResponse struct {
	Status string `json:"status"`
}
