package commission

import (
	"context"
	"time"

	"github.com/fadehouse/compensation-service/internal/domain"
	"github.com/google/uuid"
)

// billingCycleCommissions computes the recurring commissions for one
// completed billing cycle: Level Bonus (depths 1-3), Matrix Commission
// (depths 1-5, rank-capped) and the Matching Bonus derived from both.
func (uc *DefaultCommissionUsecase) billingCycleCommissions(ctx context.Context, plan *domain.CompensationPlan, event *domain.QualifyingEvent) ([]*domain.CommissionEvent, []forfeiture, error) {
	maxDepth := plan.MatrixMaxDepth
	if len(plan.LevelBonusAmounts) > maxDepth {
		maxDepth = len(plan.LevelBonusAmounts)
	}
	chain, err := uc.matrix.AncestorChain(ctx, event.MemberID, maxDepth)
	if err != nil {
		return nil, nil, err
	}

	profiles := make(map[string]*domain.MemberProfile)
	now := time.Now()
	var events []*domain.CommissionEvent
	var forfeits []forfeiture

	// Cycle earnings per beneficiary, the base for the matching bonus.
	earned := make(map[string]float64)
	order := make([]string, 0, len(chain))

	for _, ancestor := range chain {
		if ancestor.Removed {
			continue
		}
		profile, err := uc.profileFor(ctx, profiles, ancestor.MemberID)
		if err != nil {
			return nil, nil, err
		}
		if !profile.Eligible() {
			continue
		}

		if ancestor.Depth <= len(plan.LevelBonusAmounts) {
			if amount := plan.LevelBonusAmounts[ancestor.Depth-1]; amount > 0 {
				amount = round2(amount)
				events = append(events, &domain.CommissionEvent{
					ID:             uuid.New().String(),
					MemberID:       ancestor.MemberID,
					Type:           domain.CommissionLevelBonus,
					SourceMemberID: event.MemberID,
					SourceEventID:  event.EventID,
					Level:          ancestor.Depth,
					Amount:         amount,
					Status:         domain.CommissionPending,
					DedupeKey:      domain.CommissionDedupeKey(event.EventID, ancestor.MemberID, domain.CommissionLevelBonus, ancestor.Depth),
					CreatedAt:      now,
				})
				if _, seen := earned[ancestor.MemberID]; !seen {
					order = append(order, ancestor.MemberID)
				}
				earned[ancestor.MemberID] += amount
			}
		}

		if ancestor.Depth <= plan.MatrixMaxDepth {
			rate := plan.MatrixRateFor(ancestor.Depth, profile.Category)
			if rate <= 0 {
				continue
			}
			amount := round2(event.AmountBilled * rate / 100)
			if amount <= 0 {
				continue
			}
			maxLevel, err := uc.ranks.MaxPayableLevel(ctx, ancestor.MemberID)
			if err != nil {
				return nil, nil, err
			}
			if ancestor.Depth > maxLevel {
				// Rank cap: the amount is forfeited outright, never
				// forwarded to a deeper ancestor.
				forfeits = append(forfeits, forfeiture{level: ancestor.Depth, amount: amount})
				continue
			}
			events = append(events, &domain.CommissionEvent{
				ID:             uuid.New().String(),
				MemberID:       ancestor.MemberID,
				Type:           domain.CommissionMatrix,
				SourceMemberID: event.MemberID,
				SourceEventID:  event.EventID,
				Level:          ancestor.Depth,
				Amount:         amount,
				Status:         domain.CommissionPending,
				DedupeKey:      domain.CommissionDedupeKey(event.EventID, ancestor.MemberID, domain.CommissionMatrix, ancestor.Depth),
				CreatedAt:      now,
			})
			if _, seen := earned[ancestor.MemberID]; !seen {
				order = append(order, ancestor.MemberID)
			}
			earned[ancestor.MemberID] += amount
		}
	}

	matching, err := uc.matchingCommissions(ctx, plan, event, profiles, earned, order, now)
	if err != nil {
		return nil, nil, err
	}
	events = append(events, matching...)

	return events, forfeits, nil
}
