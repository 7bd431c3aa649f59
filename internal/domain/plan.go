package domain

import (
	"context"
	"fmt"
	"time"
)

// CompensationPlan is the versioned settings snapshot supplied by the
// identity/settings collaborator. A fresh snapshot is read at the start of
// each qualifying-event transaction.
type CompensationPlan struct {
	Version string

	// One amount per matrix depth, index 0 = depth 1.
	FastStartAmounts  []float64
	LevelBonusAmounts []float64

	// Percent of the billed amount per matrix depth.
	MatrixLevelPercent []float64
	MatrixMaxDepth     int
	// Depth-1 rate by the receiving ancestor's account category. Deeper
	// levels always use the standard table.
	CategoryL1Percent map[AccountCategory]float64

	// Percent of a beneficiary's cycle earnings per sponsor generation.
	// A zero third entry disables generation 3.
	MatchingPercent []float64
	// Optional generation-1 override by the sponsor's account category.
	CategoryMatchingL1Percent map[AccountCategory]float64

	MinimumPayout float64
	CoolingOff    time.Duration
}

// DefaultCompensationPlan is the plan the engine falls back to in tests and
// local runs; production snapshots come from the settings collaborator.
func DefaultCompensationPlan() *CompensationPlan {
	return &CompensationPlan{
		Version:            "default",
		FastStartAmounts:   []float64{25, 10, 5},
		LevelBonusAmounts:  []float64{25, 10, 5},
		MatrixLevelPercent: []float64{10, 8, 5, 3, 2},
		MatrixMaxDepth:     5,
		CategoryL1Percent: map[AccountCategory]float64{
			CategoryClient: 10,
			CategoryBarber: 12,
		},
		MatchingPercent: []float64{20, 10, 0},
		MinimumPayout:   50,
		CoolingOff:      30 * 24 * time.Hour,
	}
}

func (p *CompensationPlan) Validate() error {
	if len(p.FastStartAmounts) == 0 {
		return fmt.Errorf("%w: fast-start amounts missing", ErrInvalidConfiguration)
	}
	if len(p.LevelBonusAmounts) == 0 {
		return fmt.Errorf("%w: level-bonus amounts missing", ErrInvalidConfiguration)
	}
	if p.MatrixMaxDepth <= 0 || p.MatrixMaxDepth > len(p.MatrixLevelPercent) {
		return fmt.Errorf("%w: matrix max depth %d exceeds rate table of %d levels",
			ErrInvalidConfiguration, p.MatrixMaxDepth, len(p.MatrixLevelPercent))
	}
	for _, amounts := range [][]float64{p.FastStartAmounts, p.LevelBonusAmounts, p.MatrixLevelPercent, p.MatchingPercent} {
		for _, a := range amounts {
			if a < 0 {
				return fmt.Errorf("%w: negative amount %f", ErrInvalidConfiguration, a)
			}
		}
	}
	for category, rate := range p.CategoryL1Percent {
		if rate < 0 {
			return fmt.Errorf("%w: negative level-1 rate for category %s", ErrInvalidConfiguration, category)
		}
	}
	if p.MinimumPayout < 0 {
		return fmt.Errorf("%w: negative minimum payout", ErrInvalidConfiguration)
	}
	if p.CoolingOff < 0 {
		return fmt.Errorf("%w: negative cooling-off interval", ErrInvalidConfiguration)
	}
	return nil
}

// MatrixRateFor returns the percentage owed to an ancestor of the given
// category at the given depth.
func (p *CompensationPlan) MatrixRateFor(depth int, category AccountCategory) float64 {
	if depth < 1 || depth > len(p.MatrixLevelPercent) {
		return 0
	}
	if depth == 1 {
		if rate, ok := p.CategoryL1Percent[category]; ok && rate > 0 {
			return rate
		}
	}
	return p.MatrixLevelPercent[depth-1]
}

// MatchingRateFor returns the percentage owed to a sponsor of the given
// category at the given generation.
func (p *CompensationPlan) MatchingRateFor(generation int, category AccountCategory) float64 {
	if generation < 1 || generation > len(p.MatchingPercent) {
		return 0
	}
	if generation == 1 {
		if rate, ok := p.CategoryMatchingL1Percent[category]; ok && rate > 0 {
			return rate
		}
	}
	return p.MatchingPercent[generation-1]
}

type PlanSource interface {
	Snapshot(ctx context.Context) (*CompensationPlan, error)
}
