// Package analyzer measures cracks in images. Implementations are
// interchangeable behind Analyzer; every Result they return satisfies
// Result.Validate.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"math"

	"crack-go/internal/models"
)

// Analyzer measures the crack shown in image.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, contentType string) (*Result, error)
}

// Result is one crack measurement.
type Result struct {
	LengthMM       float64         `json:"length_mm"`
	WidthMM        float64         `json:"width_mm"`
	DepthMM        float64         `json:"depth_mm"`
	Severity       models.Severity `json:"severity"`
	Recommendation string          `json:"recommendation"`
	Confidence     float64         `json:"confidence"`
}

// ErrInvalidResult wraps every contract violation found by Validate.
var ErrInvalidResult = errors.New("invalid analysis result")

// Validate checks the value domains: positive finite measurements, a known
// severity, a non-empty recommendation and a confidence in [0,1].
func (r *Result) Validate() error {
	for name, v := range map[string]float64{
		"length_mm": r.LengthMM,
		"width_mm":  r.WidthMM,
		"depth_mm":  r.DepthMM,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("%w: %s must be a positive number, got %v", ErrInvalidResult, name, v)
		}
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("%w: unknown severity %q", ErrInvalidResult, r.Severity)
	}
	if r.Recommendation == "" {
		return fmt.Errorf("%w: empty recommendation", ErrInvalidResult)
	}
	if math.IsNaN(r.Confidence) || r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("%w: confidence out of range: %v", ErrInvalidResult, r.Confidence)
	}
	return nil
}
