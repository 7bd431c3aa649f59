package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fadehouse/compensation-service/internal/domain"
)

func TestAvailableBalanceCountsOnlyPending(t *testing.T) {
	ledgerRepo := &fakeLedgerRepo{events: []*domain.CommissionEvent{
		pendingCommission("c1", "alice", 30, time.Now()),
		pendingCommission("c2", "alice", 20, time.Now()),
		pendingCommission("c3", "bob", 99, time.Now()),
	}}
	ledgerRepo.events[1].Status = domain.CommissionPaid
	uc := NewDefaultLedgerUsecase(ledgerRepo, passTxManager{})

	available, err := uc.AvailableBalance(context.Background(), "alice")
	if err != nil {
		t.Fatalf("available balance: %v", err)
	}
	if available != 30 {
		t.Fatalf("available = %v, want 30", available)
	}
	paid, err := uc.PaidTotal(context.Background(), "alice")
	if err != nil {
		t.Fatalf("paid total: %v", err)
	}
	if paid != 20 {
		t.Fatalf("paid = %v, want 20", paid)
	}
}

func TestVoidOnlyTouchesPendingRows(t *testing.T) {
	ledgerRepo := &fakeLedgerRepo{events: []*domain.CommissionEvent{
		pendingCommission("c1", "alice", 30, time.Now()),
		pendingCommission("c2", "alice", 20, time.Now()),
	}}
	ledgerRepo.events[1].Status = domain.CommissionPaid
	uc := NewDefaultLedgerUsecase(ledgerRepo, passTxManager{})

	if err := uc.Void(context.Background(), "c1", "chargeback"); err != nil {
		t.Fatalf("void pending: %v", err)
	}
	voided, _ := ledgerRepo.GetEventByID(context.Background(), "c1")
	if voided.Status != domain.CommissionVoided {
		t.Fatalf("status = %s, want VOIDED", voided.Status)
	}
	if voided.VoidReason == nil || *voided.VoidReason != "chargeback" {
		t.Fatal("void should record the reason")
	}

	err := uc.Void(context.Background(), "c2", "chargeback")
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("voiding a paid row should fail, got %v", err)
	}
}

func TestMarkPaidTransitionsEachRow(t *testing.T) {
	ledgerRepo := &fakeLedgerRepo{events: []*domain.CommissionEvent{
		pendingCommission("c1", "alice", 30, time.Now()),
		pendingCommission("c2", "alice", 20, time.Now()),
	}}
	uc := NewDefaultLedgerUsecase(ledgerRepo, passTxManager{})

	if err := uc.MarkPaid(context.Background(), []string{"c1", "c2"}); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	paid, _ := uc.PaidTotal(context.Background(), "alice")
	if paid != 50 {
		t.Fatalf("paid = %v, want 50", paid)
	}
}
