package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fadehouse/compensation-service/internal/domain"
	payoutdto "github.com/fadehouse/compensation-service/internal/usecase/dto/payout"
)

func pendingCommission(id, memberID string, amount float64, at time.Time) *domain.CommissionEvent {
	return &domain.CommissionEvent{
		ID:        id,
		MemberID:  memberID,
		Type:      domain.CommissionLevelBonus,
		Amount:    amount,
		Status:    domain.CommissionPending,
		CreatedAt: at,
	}
}

func newPayoutUsecaseForTest(payoutRepo *fakePayoutRepo, ledgerRepo *fakeLedgerRepo) *DefaultPayoutUsecase {
	return NewDefaultPayoutUsecase(
		payoutRepo,
		ledgerRepo,
		&fakePlanSource{plan: domain.DefaultCompensationPlan()},
		passTxManager{},
		nil,
	)
}

func float64Ptr(v float64) *float64 { return &v }

func TestRequestPayoutBelowMinimumCreatesNothing(t *testing.T) {
	payoutRepo := &fakePayoutRepo{}
	ledgerRepo := &fakeLedgerRepo{events: []*domain.CommissionEvent{
		pendingCommission("c1", "alice", 120, time.Now()),
	}}
	uc := newPayoutUsecaseForTest(payoutRepo, ledgerRepo)

	_, err := uc.RequestPayout(context.Background(), &payoutdto.RequestPayoutInput{
		MemberID: "alice",
		Method:   domain.PayoutCashApp,
		Amount:   float64Ptr(40),
	})
	if !errors.Is(err, domain.ErrBelowMinimumPayout) {
		t.Fatalf("want ErrBelowMinimumPayout, got %v", err)
	}
	var typed *domain.BelowMinimumPayoutError
	if !errors.As(err, &typed) {
		t.Fatal("error should carry the requested and minimum amounts")
	}
	if typed.Requested != 40 || typed.Minimum != 50 {
		t.Fatalf("amounts = %v/%v, want 40/50", typed.Requested, typed.Minimum)
	}
	if len(payoutRepo.requests) != 0 {
		t.Fatal("a rejected request must leave no row behind")
	}
}

func TestRequestPayoutInsufficientBalance(t *testing.T) {
	payoutRepo := &fakePayoutRepo{}
	ledgerRepo := &fakeLedgerRepo{events: []*domain.CommissionEvent{
		pendingCommission("c1", "alice", 120, time.Now()),
	}}
	uc := newPayoutUsecaseForTest(payoutRepo, ledgerRepo)

	_, err := uc.RequestPayout(context.Background(), &payoutdto.RequestPayoutInput{
		MemberID: "alice",
		Method:   domain.PayoutPayPal,
		Amount:   float64Ptr(200),
	})
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance, got %v", err)
	}
}

func TestRequestPayoutDefaultsToFullBalance(t *testing.T) {
	payoutRepo := &fakePayoutRepo{}
	ledgerRepo := &fakeLedgerRepo{events: []*domain.CommissionEvent{
		pendingCommission("c1", "alice", 80, time.Now()),
		pendingCommission("c2", "alice", 40, time.Now()),
	}}
	uc := newPayoutUsecaseForTest(payoutRepo, ledgerRepo)

	request, err := uc.RequestPayout(context.Background(), &payoutdto.RequestPayoutInput{
		MemberID: "alice",
		Method:   domain.PayoutCashApp,
	})
	if err != nil {
		t.Fatalf("request payout: %v", err)
	}
	if request.Amount != 120 {
		t.Fatalf("amount = %v, want full balance 120", request.Amount)
	}
	if request.Status != domain.PayoutPending {
		t.Fatalf("status = %s, want PENDING", request.Status)
	}
	if request.ID == "" {
		t.Fatal("request should carry a generated id")
	}
}

func TestRequestPayoutRejectsSecondPending(t *testing.T) {
	payoutRepo := &fakePayoutRepo{}
	ledgerRepo := &fakeLedgerRepo{events: []*domain.CommissionEvent{
		pendingCommission("c1", "alice", 200, time.Now()),
	}}
	uc := newPayoutUsecaseForTest(payoutRepo, ledgerRepo)

	if _, err := uc.RequestPayout(context.Background(), &payoutdto.RequestPayoutInput{
		MemberID: "alice",
		Method:   domain.PayoutCashApp,
		Amount:   float64Ptr(60),
	}); err != nil {
		t.Fatalf("first request: %v", err)
	}

	_, err := uc.RequestPayout(context.Background(), &payoutdto.RequestPayoutInput{
		MemberID: "alice",
		Method:   domain.PayoutCashApp,
		Amount:   float64Ptr(60),
	})
	if !errors.Is(err, domain.ErrPendingRequestExists) {
		t.Fatalf("want ErrPendingRequestExists, got %v", err)
	}
}

func TestPayoutSettlementFlow(t *testing.T) {
	payoutRepo := &fakePayoutRepo{}
	base := time.Now().Add(-time.Hour)
	ledgerRepo := &fakeLedgerRepo{events: []*domain.CommissionEvent{
		pendingCommission("c1", "alice", 30, base),
		pendingCommission("c2", "alice", 40, base.Add(time.Minute)),
		pendingCommission("c3", "alice", 50, base.Add(2*time.Minute)),
	}}
	uc := newPayoutUsecaseForTest(payoutRepo, ledgerRepo)

	request, err := uc.RequestPayout(context.Background(), &payoutdto.RequestPayoutInput{
		MemberID: "alice",
		Method:   domain.PayoutCashApp,
		Amount:   float64Ptr(60),
	})
	if err != nil {
		t.Fatalf("request payout: %v", err)
	}

	if err := uc.Approve(context.Background(), &payoutdto.SettleInput{RequestID: request.ID}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := uc.MarkRequestPaid(context.Background(), &payoutdto.SettleInput{RequestID: request.ID}); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	stored, _ := payoutRepo.GetRequestByID(context.Background(), request.ID)
	if stored.Status != domain.PayoutPaid {
		t.Fatalf("status = %s, want PAID", stored.Status)
	}

	// Settlement consumes whole rows oldest first: c1 (30) + c2 (40) cover
	// the 60; c3 stays pending.
	paid, _ := ledgerRepo.SumByStatus(context.Background(), "alice", domain.CommissionPaid)
	if paid != 70 {
		t.Fatalf("paid sum = %v, want 70", paid)
	}
	remaining, _ := ledgerRepo.SumByStatus(context.Background(), "alice", domain.CommissionPending)
	if remaining != 50 {
		t.Fatalf("pending sum = %v, want 50", remaining)
	}
}

func TestMarkRequestPaidRequiresApproval(t *testing.T) {
	payoutRepo := &fakePayoutRepo{}
	ledgerRepo := &fakeLedgerRepo{events: []*domain.CommissionEvent{
		pendingCommission("c1", "alice", 100, time.Now()),
	}}
	uc := newPayoutUsecaseForTest(payoutRepo, ledgerRepo)

	request, err := uc.RequestPayout(context.Background(), &payoutdto.RequestPayoutInput{
		MemberID: "alice",
		Method:   domain.PayoutCashApp,
	})
	if err != nil {
		t.Fatalf("request payout: %v", err)
	}

	err = uc.MarkRequestPaid(context.Background(), &payoutdto.SettleInput{RequestID: request.ID})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition for a pending request, got %v", err)
	}
}

func TestRejectReleasesThePendingSlot(t *testing.T) {
	payoutRepo := &fakePayoutRepo{}
	ledgerRepo := &fakeLedgerRepo{events: []*domain.CommissionEvent{
		pendingCommission("c1", "alice", 100, time.Now()),
	}}
	uc := newPayoutUsecaseForTest(payoutRepo, ledgerRepo)

	request, err := uc.RequestPayout(context.Background(), &payoutdto.RequestPayoutInput{
		MemberID: "alice",
		Method:   domain.PayoutCashApp,
	})
	if err != nil {
		t.Fatalf("request payout: %v", err)
	}
	if err := uc.Reject(context.Background(), &payoutdto.SettleInput{RequestID: request.ID, AdminNote: "details mismatch"}); err != nil {
		t.Fatalf("reject: %v", err)
	}

	// The member can request again once the pending request is settled.
	if _, err := uc.RequestPayout(context.Background(), &payoutdto.RequestPayoutInput{
		MemberID: "alice",
		Method:   domain.PayoutPayPal,
	}); err != nil {
		t.Fatalf("second request after rejection: %v", err)
	}
}
