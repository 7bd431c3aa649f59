package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fadehouse/compensation-service/internal/domain"
	"github.com/fadehouse/compensation-service/internal/infrastructure/metrics"
	payoutdto "github.com/fadehouse/compensation-service/internal/usecase/dto/payout"
	"github.com/jaevor/go-nanoid"
)

type PayoutUsecase interface {
	RequestPayout(ctx context.Context, input *payoutdto.RequestPayoutInput) (*domain.PayoutRequest, error)
	Approve(ctx context.Context, input *payoutdto.SettleInput) error
	Reject(ctx context.Context, input *payoutdto.SettleInput) error
	MarkRequestPaid(ctx context.Context, input *payoutdto.SettleInput) error
	ListRequests(ctx context.Context, memberID string) ([]*domain.PayoutRequest, error)
}

type DefaultPayoutUsecase struct {
	payoutRepo domain.PayoutRepository
	ledgerRepo domain.LedgerRepository
	planSource domain.PlanSource
	txManager  domain.TxManager
	metrics    *metrics.CompensationMetrics
}

func NewDefaultPayoutUsecase(
	payoutRepo domain.PayoutRepository,
	ledgerRepo domain.LedgerRepository,
	planSource domain.PlanSource,
	txManager domain.TxManager,
	m *metrics.CompensationMetrics,
) *DefaultPayoutUsecase {
	return &DefaultPayoutUsecase{
		payoutRepo: payoutRepo,
		ledgerRepo: ledgerRepo,
		planSource: planSource,
		txManager:  txManager,
		metrics:    m,
	}
}

// RequestPayout validates and creates a pending payout request. All three
// preconditions are checked inside one serializable transaction so two
// concurrent callers cannot both succeed.
func (uc *DefaultPayoutUsecase) RequestPayout(ctx context.Context, input *payoutdto.RequestPayoutInput) (*domain.PayoutRequest, error) {
	plan, err := uc.planSource.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, err
	}

	var request *domain.PayoutRequest
	err = uc.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if _, err := uc.payoutRepo.GetPendingByMemberID(ctx, input.MemberID); err == nil {
			return domain.ErrPendingRequestExists
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		available, err := uc.ledgerRepo.SumByStatus(ctx, input.MemberID, domain.CommissionPending)
		if err != nil {
			return err
		}

		amount := available
		if input.Amount != nil {
			amount = *input.Amount
		}
		if amount < plan.MinimumPayout {
			return &domain.BelowMinimumPayoutError{Requested: amount, Minimum: plan.MinimumPayout}
		}
		if amount > available {
			return &domain.InsufficientBalanceError{Requested: amount, Available: available}
		}

		request = &domain.PayoutRequest{
			ID:            idGenerator(),
			MemberID:      input.MemberID,
			Amount:        amount,
			Method:        input.Method,
			MethodDetails: input.MethodDetails,
			Status:        domain.PayoutPending,
			RequestedAt:   time.Now(),
		}
		return uc.payoutRepo.CreateRequest(ctx, request)
	})
	if err != nil {
		uc.recordFailure(err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RecordPayoutRequest(string(domain.PayoutPending))
	}
	slog.Info("payout requested",
		"request_id", request.ID,
		"member_id", request.MemberID,
		"amount", request.Amount,
		"method", request.Method)
	return request, nil
}

func (uc *DefaultPayoutUsecase) recordFailure(err error) {
	if uc.metrics == nil {
		return
	}
	switch {
	case errors.Is(err, domain.ErrPendingRequestExists):
		uc.metrics.RecordPayoutError("pending_request_exists")
	case errors.Is(err, domain.ErrBelowMinimumPayout):
		uc.metrics.RecordPayoutError("below_minimum")
	case errors.Is(err, domain.ErrInsufficientBalance):
		uc.metrics.RecordPayoutError("insufficient_balance")
	default:
		uc.metrics.RecordPayoutError("internal")
	}
}

// Approve marks a pending request approved. Money movement stays with the
// settlement collaborator.
func (uc *DefaultPayoutUsecase) Approve(ctx context.Context, input *payoutdto.SettleInput) error {
	return uc.settle(ctx, input, domain.PayoutPending, domain.PayoutApproved)
}

func (uc *DefaultPayoutUsecase) Reject(ctx context.Context, input *payoutdto.SettleInput) error {
	return uc.settle(ctx, input, domain.PayoutPending, domain.PayoutRejected)
}

func (uc *DefaultPayoutUsecase) settle(ctx context.Context, input *payoutdto.SettleInput, from, to domain.PayoutStatus) error {
	err := uc.txManager.Do(ctx, func(ctx context.Context) error {
		return uc.payoutRepo.UpdateStatus(ctx, input.RequestID, from, to, input.AdminNote, time.Now())
	})
	if err != nil {
		return err
	}
	if uc.metrics != nil {
		uc.metrics.RecordPayoutRequest(string(to))
	}
	slog.Info("payout request settled", "request_id", input.RequestID, "status", to)
	return nil
}

// MarkRequestPaid finalizes settlement: the request goes approved->paid and
// the member's pending commission rows flip to paid, oldest first, until the
// request amount is covered. Settlement granularity is the commission row.
func (uc *DefaultPayoutUsecase) MarkRequestPaid(ctx context.Context, input *payoutdto.SettleInput) error {
	err := uc.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		request, err := uc.payoutRepo.GetRequestByID(ctx, input.RequestID)
		if err != nil {
			return err
		}
		if request.Status != domain.PayoutApproved {
			return domain.ErrInvalidTransition
		}

		pending, err := uc.ledgerRepo.ListPendingOldestFirst(ctx, request.MemberID)
		if err != nil {
			return err
		}
		covered := 0.0
		for _, event := range pending {
			if covered >= request.Amount {
				break
			}
			if err := uc.ledgerRepo.UpdateStatus(ctx, event.ID, domain.CommissionPending, domain.CommissionPaid, nil); err != nil {
				return err
			}
			covered += event.Amount
		}
		if covered < request.Amount {
			return &domain.InsufficientBalanceError{Requested: request.Amount, Available: covered}
		}

		return uc.payoutRepo.UpdateStatus(ctx, input.RequestID, domain.PayoutApproved, domain.PayoutPaid, input.AdminNote, time.Now())
	})
	if err != nil {
		return err
	}
	if uc.metrics != nil {
		uc.metrics.RecordPayoutRequest(string(domain.PayoutPaid))
	}
	slog.Info("payout request paid", "request_id", input.RequestID)
	return nil
}

func (uc *DefaultPayoutUsecase) ListRequests(ctx context.Context, memberID string) ([]*domain.PayoutRequest, error) {
	return uc.payoutRepo.ListByMemberID(ctx, memberID)
}
