package commission

import (
	"context"
	"time"

	"github.com/fadehouse/compensation-service/internal/domain"
	"github.com/google/uuid"
)

// matchingCommissions pays each enrolling sponsor a percentage of the Level
// Bonus and Matrix Commission amounts its enrollees earned in this cycle.
// Generations walk the sponsor line, not the matrix line. Amounts are
// aggregated per (sponsor, generation) so one ledger row per dedupe key is
// preserved even when a sponsor enrolled several of the cycle's earners.
func (uc *DefaultCommissionUsecase) matchingCommissions(
	ctx context.Context,
	plan *domain.CompensationPlan,
	event *domain.QualifyingEvent,
	profiles map[string]*domain.MemberProfile,
	earned map[string]float64,
	order []string,
	now time.Time,
) ([]*domain.CommissionEvent, error) {
	type slot struct {
		sponsorID string
		gen       int
	}
	totals := make(map[slot]float64)
	var slots []slot

	for _, beneficiary := range order {
		base := earned[beneficiary]
		if base <= 0 {
			continue
		}
		current := beneficiary
		for gen := 1; gen <= len(plan.MatchingPercent); gen++ {
			profile, err := uc.profileFor(ctx, profiles, current)
			if err != nil {
				return nil, err
			}
			sponsorID := profile.SponsorID
			if sponsorID == "" {
				break
			}
			sponsorProfile, err := uc.profileFor(ctx, profiles, sponsorID)
			if err != nil {
				return nil, err
			}
			if sponsorProfile.Eligible() {
				rate := plan.MatchingRateFor(gen, sponsorProfile.Category)
				if rate > 0 {
					s := slot{sponsorID: sponsorID, gen: gen}
					if _, seen := totals[s]; !seen {
						slots = append(slots, s)
					}
					totals[s] += base * rate / 100
				}
			}
			current = sponsorID
		}
	}

	var events []*domain.CommissionEvent
	for _, s := range slots {
		amount := round2(totals[s])
		if amount <= 0 {
			continue
		}
		events = append(events, &domain.CommissionEvent{
			ID:             uuid.New().String(),
			MemberID:       s.sponsorID,
			Type:           domain.CommissionMatching,
			SourceMemberID: event.MemberID,
			SourceEventID:  event.EventID,
			Level:          s.gen,
			Amount:         amount,
			Status:         domain.CommissionPending,
			DedupeKey:      domain.CommissionDedupeKey(event.EventID, s.sponsorID, domain.CommissionMatching, s.gen),
			CreatedAt:      now,
		})
	}
	return events, nil
}
