package dto

import (
	"crack-go/pkg/analyzer"
)

// UploadResponse describes a stored image and its analysis.
type UploadResponse struct {
	Success          bool             `json:"success"`
	Filename         string           `json:"filename"`
	OriginalFilename string           `json:"original_filename"`
	Path             string           `json:"path"`
	Analysis         *analyzer.Result `json:"analysis"`
}
