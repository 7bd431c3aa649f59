package domain

import (
	"context"
	"time"
)

type AccountCategory string

const (
	CategoryClient AccountCategory = "client"
	CategoryBarber AccountCategory = "barber"
)

type MemberStatus string

const (
	MemberActive    MemberStatus = "ACTIVE"
	MemberInactive  MemberStatus = "INACTIVE"
	MemberCancelled MemberStatus = "CANCELLED"
)

// Member is a read model owned by the identity subsystem. The engine only
// consumes sponsor linkage and account category.
type Member struct {
	ID        string
	SponsorID string
	Category  AccountCategory
	Status    MemberStatus
	CreatedAt time.Time
}

// MemberProfile is what the identity collaborator reports about a member at
// the moment of a qualifying event.
type MemberProfile struct {
	MemberID  string
	SponsorID string
	Category  AccountCategory
	Active    bool
	Paid      bool
}

// Eligible reports whether the member can receive commissions right now.
func (p *MemberProfile) Eligible() bool {
	return p.Active && p.Paid
}

type MemberDirectory interface {
	GetMemberProfile(ctx context.Context, memberID string) (*MemberProfile, error)
	GetEnrollmentFacts(ctx context.Context, memberID string) (*RankFacts, error)
}
