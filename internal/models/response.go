package models

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ForecastPoint is a single forecast observation. Time is an RFC3339
// string for calendar panels or an integer index for index-frequency
// panels, matching the input encoding.
type ForecastPoint struct {
	Entity string             `json:"entity"`
	Time   interface{}        `json:"time"`
	Values map[string]float64 `json:"values"`
}

// ForecastResponse represents forecast response
type ForecastResponse struct {
	Columns []string        `json:"columns"`
	Points  []ForecastPoint `json:"points"`
	Count   int             `json:"count"`
}

// ModelResponse describes a stored model artifact
type ModelResponse struct {
	ModelID   string `json:"model_id"`
	Strategy  string `json:"strategy"`
	Horizon   int    `json:"horizon"`
	Entities  int    `json:"entities"`
	Censored  bool   `json:"censored"`
	CreatedAt string `json:"created_at"`
	SizeBytes int64  `json:"size_bytes"`
}

// ModelListResponse represents list models response
type ModelListResponse struct {
	Models []ModelResponse `json:"models"`
	Count  int             `json:"count"`
}

// EvaluateResponse carries per-entity metric scores.
type EvaluateResponse struct {
	Metric string             `json:"metric"`
	Scores map[string]float64 `json:"scores"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
