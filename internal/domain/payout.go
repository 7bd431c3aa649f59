package domain

import (
	"context"
	"time"
)

type PayoutMethod string

const (
	PayoutCashApp PayoutMethod = "cashapp"
	PayoutPayPal  PayoutMethod = "paypal"
)

type PayoutStatus string

const (
	PayoutPending  PayoutStatus = "PENDING"
	PayoutApproved PayoutStatus = "APPROVED"
	PayoutRejected PayoutStatus = "REJECTED"
	PayoutPaid     PayoutStatus = "PAID"
)

type PayoutRequest struct {
	ID            string
	MemberID      string
	Amount        float64
	Method        PayoutMethod
	MethodDetails string
	Status        PayoutStatus
	Note          string
	RequestedAt   time.Time
	ProcessedAt   *time.Time
}

type PayoutRepository interface {
	CreateRequest(ctx context.Context, request *PayoutRequest) error
	GetRequestByID(ctx context.Context, requestID string) (*PayoutRequest, error)
	// GetPendingByMemberID returns ErrNotFound when the member has no pending
	// request.
	GetPendingByMemberID(ctx context.Context, memberID string) (*PayoutRequest, error)
	ListByMemberID(ctx context.Context, memberID string) ([]*PayoutRequest, error)
	UpdateStatus(ctx context.Context, requestID string, from, to PayoutStatus, note string, processedAt time.Time) error
}
