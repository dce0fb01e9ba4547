// Package verification validates the automated analysis payload that
// accompanies every submission. The payload is produced by an external
// oracle; this package only checks its shape and never recomputes it.
package verification

import (
	"fmt"
	"math"

	"github.com/okian/podium/internal/domain/model"
)

// Confidence bounds for a well-formed payload.
const (
	minConfidence = 0.0
	maxConfidence = 1.0
)

// Validate checks that p is a well-formed verification payload.
// Confidence must be a real number in [0,1] and every metric value
// must be a real number. The payload itself is left untouched.
func Validate(p model.Verification) error {
	if math.IsNaN(p.Confidence) || math.IsInf(p.Confidence, 0) {
		return fmt.Errorf("%w: confidence is not a number", ErrInvalidPayload)
	}
	if p.Confidence < minConfidence || p.Confidence > maxConfidence {
		return fmt.Errorf("%w: confidence %v outside [0,1]", ErrInvalidPayload, p.Confidence)
	}
	for name, value := range p.Metrics {
		if name == "" {
			return fmt.Errorf("%w: empty metric name", ErrInvalidPayload)
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("%w: metric %q is not a number", ErrInvalidPayload, name)
		}
	}
	return nil
}

// Normalize returns a copy of p safe to persist: nil anomaly lists and
// metric maps become empty so the stored document always carries the
// full verification shape.
func Normalize(p model.Verification) model.Verification {
	if p.Anomalies == nil {
		p.Anomalies = []string{}
	}
	if p.Metrics == nil {
		p.Metrics = map[string]float64{}
	}
	return p
}
