package domain

import (
	"context"
	"fmt"
	"time"
)

type CommissionType string

const (
	CommissionFastStart  CommissionType = "fast_start"
	CommissionLevelBonus CommissionType = "level_bonus"
	CommissionMatrix     CommissionType = "matrix_membership"
	CommissionMatching   CommissionType = "matching"
	CommissionProduct    CommissionType = "product_commission"
)

type CommissionStatus string

const (
	CommissionPending CommissionStatus = "PENDING"
	CommissionPaid    CommissionStatus = "PAID"
	CommissionVoided  CommissionStatus = "VOIDED"
)

// CommissionEvent is one append-only ledger row. Immutable once created except
// for the pending->paid and pending->voided status transitions.
type CommissionEvent struct {
	ID             string
	MemberID       string
	Type           CommissionType
	SourceMemberID string
	SourceEventID  string
	Level          int
	Amount         float64
	Status         CommissionStatus
	DedupeKey      string
	VoidReason     *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CommissionDedupeKey builds the stable idempotency key guaranteeing at most
// one row per (source event, beneficiary, type, level).
func CommissionDedupeKey(sourceEventID, beneficiaryID string, ctype CommissionType, level int) string {
	return fmt.Sprintf("%s:%s:%s:%d", sourceEventID, beneficiaryID, ctype, level)
}

type LedgerRepository interface {
	CreateEvents(ctx context.Context, events []*CommissionEvent) error
	GetEventByID(ctx context.Context, eventID string) (*CommissionEvent, error)
	SumByStatus(ctx context.Context, memberID string, status CommissionStatus) (float64, error)
	ListByMemberID(ctx context.Context, memberID string, status CommissionStatus) ([]*CommissionEvent, error)
	// ListPendingOldestFirst feeds settlement, which consumes pending rows in
	// accrual order.
	ListPendingOldestFirst(ctx context.Context, memberID string) ([]*CommissionEvent, error)
	// UpdateStatus transitions a row out of PENDING; ErrInvalidTransition if
	// the stored status is not the expected one.
	UpdateStatus(ctx context.Context, eventID string, from, to CommissionStatus, reason *string) error
}

// ProcessedEventRepository records billing-event ids that already produced
// commission rows, so at-least-once delivery stays idempotent.
type ProcessedEventRepository interface {
	// MarkProcessed returns ErrDuplicateEvent if the event id was seen before.
	MarkProcessed(ctx context.Context, eventID, eventType string) error
}
