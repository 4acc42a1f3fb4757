package restserver

// PredictRequest is the body accepted by POST /predict
type PredictRequest struct {
	Last string `json:"last"`
}

// PredictResponse is returned by a successful POST /predict
type PredictResponse struct {
	NextRefill    string  `json:"next_refill"`
	IntervalHours float64 `json:"interval_hours"`
}

// HealthResponse is returned by GET /healthz
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type contextKey string

const requestIDContextKey contextKey = "request_id"

// RequestIDHeader carries the per-request id on requests and responses
const RequestIDHeader = "X-Request-ID"
