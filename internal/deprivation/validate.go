package deprivation

import (
	"fmt"

	"depindex/internal/dataset"
	"depindex/internal/factor"
)

// ValidationError represents a configuration or data validation failure
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// Validate checks the run configuration. All checks happen before any data
// is read or computed; a failing configuration never produces output.
func (p Params) Validate() error {
	if len(p.Thresholds) == 0 {
		return &ValidationError{
			Field:   "thresholds",
			Message: "no indicators configured",
		}
	}

	for name, threshold := range p.Thresholds {
		if threshold <= 0 {
			// A zero threshold would divide by zero in the gap computation
			return &ValidationError{
				Field:   "thresholds." + name,
				Message: "threshold must be positive",
				Value:   threshold,
			}
		}
	}

	if p.Cutoff < 0 {
		return &ValidationError{
			Field:   "cutoff",
			Message: "cutoff k must be non-negative",
			Value:   p.Cutoff,
		}
	}

	if p.Factors < 1 {
		return &ValidationError{
			Field:   "factors",
			Message: "factor count must be positive",
			Value:   p.Factors,
		}
	}
	if p.Factors > len(p.Thresholds) {
		return &ValidationError{
			Field:   "factors",
			Message: fmt.Sprintf("factor count exceeds the %d configured indicators", len(p.Thresholds)),
			Value:   p.Factors,
		}
	}

	if !factor.ValidRotation(p.Rotation) {
		return &ValidationError{
			Field:   "rotation",
			Message: "unknown rotation method (expected varimax, quartimax or none)",
			Value:   p.Rotation,
		}
	}

	return nil
}

// validateIndicators checks that every configured indicator has a column in
// the merged dataset
func validateIndicators(frame *dataset.Frame, params Params) error {
	for _, name := range params.Indicators() {
		if !frame.Has(name) {
			return &ValidationError{
				Field:   "thresholds." + name,
				Message: "indicator column missing from merged dataset",
			}
		}
	}
	return nil
}
