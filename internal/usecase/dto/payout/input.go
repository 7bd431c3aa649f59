package payoutdto

import "github.com/fadehouse/compensation-service/internal/domain"

type RequestPayoutInput struct {
	MemberID      string
	Method        domain.PayoutMethod
	MethodDetails string
	// Amount nil means "request the full available balance".
	Amount *float64
}

type SettleInput struct {
	RequestID string
	AdminNote string
}
