package http

import "time"

type placeMemberRequest struct {
	MemberID  string `json:"memberId" validate:"required"`
	SponsorID string `json:"sponsorId" validate:"required"`
}

type placementResponse struct {
	NodeID   string `json:"nodeId"`
	MemberID string `json:"memberId"`
	ParentID string `json:"parentId,omitempty"`
	Position int    `json:"position"`
	PlacedAt string `json:"placedAt"`
}

type removeConnectionRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type evaluateRankRequest struct {
	PersonallyEnrolledActive int             `json:"personallyEnrolledActive" validate:"min=0"`
	Gates                    map[string]bool `json:"gates"`
}

type rankResponse struct {
	MemberID string `json:"memberId"`
	Rank     string `json:"rank"`
}

type demoteRankRequest struct {
	To     string `json:"to" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

type rankProgressResponse struct {
	Current    string  `json:"current"`
	Next       string  `json:"next,omitempty"`
	Required   int     `json:"required"`
	Enrolled   int     `json:"enrolled"`
	Percentage float64 `json:"percentage"`
}

type balanceResponse struct {
	MemberID  string  `json:"memberId"`
	Available float64 `json:"available"`
	PaidTotal float64 `json:"paidTotal"`
}

type commissionResponse struct {
	ID             string  `json:"id"`
	MemberID       string  `json:"memberId"`
	Type           string  `json:"type"`
	SourceMemberID string  `json:"sourceMemberId"`
	SourceEventID  string  `json:"sourceEventId"`
	Level          int     `json:"level"`
	Amount         float64 `json:"amount"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"createdAt"`
}

type voidCommissionRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type requestPayoutRequest struct {
	MemberID      string   `json:"memberId" validate:"required"`
	Method        string   `json:"method" validate:"required,oneof=cashapp paypal"`
	MethodDetails string   `json:"methodDetails" validate:"required"`
	Amount        *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
}

type payoutResponse struct {
	ID          string     `json:"id"`
	MemberID    string     `json:"memberId"`
	Amount      float64    `json:"amount"`
	Method      string     `json:"method"`
	Status      string     `json:"status"`
	Note        string     `json:"note,omitempty"`
	RequestedAt time.Time  `json:"requestedAt"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
}

type settlePayoutRequest struct {
	AdminNote string `json:"adminNote"`
}

type billingEventRequest struct {
	EventID      string  `json:"eventId" validate:"required"`
	Type         string  `json:"type" validate:"required,oneof=ENROLLMENT_ACTIVATED BILLING_CYCLE_COMPLETED"`
	MemberID     string  `json:"memberId" validate:"required"`
	SponsorID    string  `json:"sponsorId"`
	AmountBilled float64 `json:"amountBilled" validate:"min=0"`
}

type billingEventResponse struct {
	EventID            string  `json:"eventId"`
	CommissionsCreated int     `json:"commissionsCreated"`
	TotalAccrued       float64 `json:"totalAccrued"`
	Duplicate          bool    `json:"duplicate"`
}

type errorResponse struct {
	Error string `json:"error"`
}
