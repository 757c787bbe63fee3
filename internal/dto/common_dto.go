package dto

// SuccessResponse acknowledges an operation without a payload.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// HealthResponse is served at the API root.
type HealthResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}
