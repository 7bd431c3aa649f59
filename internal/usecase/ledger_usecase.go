package usecase

import (
	"context"
	"log/slog"

	"github.com/fadehouse/compensation-service/internal/domain"
)

type LedgerUsecase interface {
	AvailableBalance(ctx context.Context, memberID string) (float64, error)
	PaidTotal(ctx context.Context, memberID string) (float64, error)
	MarkPaid(ctx context.Context, eventIDs []string) error
	Void(ctx context.Context, eventID, reason string) error
}

type DefaultLedgerUsecase struct {
	ledgerRepo domain.LedgerRepository
	txManager  domain.TxManager
}

func NewDefaultLedgerUsecase(ledgerRepo domain.LedgerRepository, txManager domain.TxManager) *DefaultLedgerUsecase {
	return &DefaultLedgerUsecase{
		ledgerRepo: ledgerRepo,
		txManager:  txManager,
	}
}

// AvailableBalance is the sum of the member's pending commission rows, the
// only balance payouts can draw against.
func (uc *DefaultLedgerUsecase) AvailableBalance(ctx context.Context, memberID string) (float64, error) {
	return uc.ledgerRepo.SumByStatus(ctx, memberID, domain.CommissionPending)
}

func (uc *DefaultLedgerUsecase) PaidTotal(ctx context.Context, memberID string) (float64, error) {
	return uc.ledgerRepo.SumByStatus(ctx, memberID, domain.CommissionPaid)
}

// MarkPaid transitions rows pending->paid on settlement confirmation.
func (uc *DefaultLedgerUsecase) MarkPaid(ctx context.Context, eventIDs []string) error {
	return uc.txManager.Do(ctx, func(ctx context.Context) error {
		for _, id := range eventIDs {
			if err := uc.ledgerRepo.UpdateStatus(ctx, id, domain.CommissionPending, domain.CommissionPaid, nil); err != nil {
				return err
			}
		}
		return nil
	})
}

// Void is the administrative reversal path (chargebacks). Only pending rows
// can be voided; paid and voided rows are immutable.
func (uc *DefaultLedgerUsecase) Void(ctx context.Context, eventID, reason string) error {
	err := uc.txManager.Do(ctx, func(ctx context.Context) error {
		return uc.ledgerRepo.UpdateStatus(ctx, eventID, domain.CommissionPending, domain.CommissionVoided, &reason)
	})
	if err != nil {
		return err
	}
	slog.Warn("commission voided", "commission_id", eventID, "reason", reason)
	return nil
}
