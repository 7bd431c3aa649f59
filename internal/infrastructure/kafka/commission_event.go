package publisher

// CommissionAccruedEvent is published after a qualifying event commits, one
// message per ledger row, keyed by beneficiary.
type CommissionAccruedEvent struct {
	CommissionID   string  `json:"commission_id"`
	MemberID       string  `json:"member_id"`
	Type           string  `json:"type"`
	SourceMemberID string  `json:"source_member_id"`
	SourceEventID  string  `json:"source_event_id"`
	Level          int     `json:"level"`
	Amount         float64 `json:"amount"`
}

// BillingEvent is the wire shape of the billing collaborator's messages on
// the billing topic.
type BillingEvent struct {
	EventID      string  `json:"event_id"`
	Type         string  `json:"type"`
	MemberID     string  `json:"member_id"`
	SponsorID    string  `json:"sponsor_id,omitempty"`
	AmountBilled float64 `json:"amount_billed,omitempty"`
}
