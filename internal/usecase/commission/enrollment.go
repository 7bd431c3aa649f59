package commission

import (
	"context"
	"errors"
	"time"

	"github.com/fadehouse/compensation-service/internal/domain"
	matrixdto "github.com/fadehouse/compensation-service/internal/usecase/dto/matrix"
	"github.com/google/uuid"
)

// enrollmentCommissions places the new member into the matrix and pays the
// one-time Fast-Start bonus to the matrix-line ancestors. An ancestor that is
// not active-paid at this moment is skipped, never deferred.
func (uc *DefaultCommissionUsecase) enrollmentCommissions(ctx context.Context, plan *domain.CompensationPlan, event *domain.QualifyingEvent) ([]*domain.CommissionEvent, error) {
	_, err := uc.matrix.Place(ctx, &matrixdto.PlaceInput{
		MemberID:  event.MemberID,
		SponsorID: event.SponsorID,
	})
	if err != nil && !errors.Is(err, domain.ErrAlreadyPlaced) {
		return nil, err
	}

	chain, err := uc.matrix.AncestorChain(ctx, event.MemberID, len(plan.FastStartAmounts))
	if err != nil {
		return nil, err
	}

	profiles := make(map[string]*domain.MemberProfile)
	now := time.Now()
	var events []*domain.CommissionEvent
	for _, ancestor := range chain {
		if ancestor.Removed {
			continue
		}
		amount := plan.FastStartAmounts[ancestor.Depth-1]
		if amount <= 0 {
			continue
		}
		profile, err := uc.profileFor(ctx, profiles, ancestor.MemberID)
		if err != nil {
			return nil, err
		}
		if !profile.Eligible() {
			continue
		}
		events = append(events, &domain.CommissionEvent{
			ID:             uuid.New().String(),
			MemberID:       ancestor.MemberID,
			Type:           domain.CommissionFastStart,
			SourceMemberID: event.MemberID,
			SourceEventID:  event.EventID,
			Level:          ancestor.Depth,
			Amount:         round2(amount),
			Status:         domain.CommissionPending,
			DedupeKey:      domain.CommissionDedupeKey(event.EventID, ancestor.MemberID, domain.CommissionFastStart, ancestor.Depth),
			CreatedAt:      now,
		})
	}
	return events, nil
}
