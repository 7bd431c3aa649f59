package domain

type BillingEventType string

const (
	EventEnrollmentActivated   BillingEventType = "ENROLLMENT_ACTIVATED"
	EventBillingCycleCompleted BillingEventType = "BILLING_CYCLE_COMPLETED"
)

// QualifyingEvent is a billing-collaborator event that can produce commission
// rows. EventID is the collaborator's stable id and anchors idempotency.
// SponsorID is set on enrollment events only, AmountBilled on cycle events
// only.
type QualifyingEvent struct {
	EventID      string
	Type         BillingEventType
	MemberID     string
	SponsorID    string
	AmountBilled float64
}
