package predictor

import (
	"context"
	"math"

	"github.com/dmitrijs2005/premio/internal/server/models"
)

// Pricing structure of the local estimator. The loads mirror the factors
// the remote model was originally fitted on.
const (
	basePremium       = 5000.0
	agePremiumPerYear = 50.0
	obeseBMILoad      = 200.0 // per BMI point above 30
	thinBMILoad       = 100.0 // per BMI point below 18.5
	smokerLoad        = 15000.0
	childLoad         = 1000.0
	maleLoad          = 500.0
	minPremium        = 1000.0
)

var regionMultipliers = map[string]float64{
	"northeast": 1.10,
	"southeast": 0.90,
	"southwest": 0.95,
	"northwest": 1.05,
}

// Heuristic is a deterministic local premium estimator. It stands in for the
// trained model when no remote scoring endpoint is configured.
type Heuristic struct{}

func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

func (h *Heuristic) Predict(_ context.Context, a models.AttributeSet) (float64, error) {
	premium := basePremium

	premium += float64(a.Age-18) * agePremiumPerYear

	switch {
	case a.BMI > 30:
		premium += (a.BMI - 30) * obeseBMILoad
	case a.BMI < 18.5:
		premium += (18.5 - a.BMI) * thinBMILoad
	}

	if a.Smoker == "yes" {
		premium += smokerLoad
	}

	premium += float64(a.Children) * childLoad

	if a.Gender == "male" {
		premium += maleLoad
	}

	if m, ok := regionMultipliers[a.Region]; ok {
		premium *= m
	}

	premium = math.Max(premium, minPremium)

	// round to cents
	return math.Round(premium*100) / 100, nil
}
