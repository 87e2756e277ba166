// Package predictor estimates insurance premiums from a validated attribute
// set. Two implementations exist: a deterministic local estimator and a
// client for an external scoring endpoint.
package predictor

import (
	"context"

	"github.com/dmitrijs2005/premio/internal/server/models"
)

// Predictor produces a premium estimate for a validated attribute set.
// Implementations must not mutate the input.
type Predictor interface {
	Predict(ctx context.Context, a models.AttributeSet) (float64, error)
}
