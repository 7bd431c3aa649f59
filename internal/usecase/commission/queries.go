package commission

import (
	"context"

	"github.com/fadehouse/compensation-service/internal/domain"
)

func (uc *DefaultCommissionUsecase) ListMemberCommissions(ctx context.Context, memberID string, status domain.CommissionStatus) ([]*domain.CommissionEvent, error) {
	return uc.ledgerRepo.ListByMemberID(ctx, memberID, status)
}
