package domain

import (
	"context"
	"fmt"
	"time"
)

type Rank int

const (
	RankRookie Rank = iota
	RankHustla
	RankGrinder
	RankInfluencer
	RankExecutive
	RankPartner
)

var rankNames = map[Rank]string{
	RankRookie:     "ROOKIE",
	RankHustla:     "HUSTLA",
	RankGrinder:    "GRINDER",
	RankInfluencer: "INFLUENCER",
	RankExecutive:  "EXECUTIVE",
	RankPartner:    "PARTNER",
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

func ParseRank(name string) (Rank, error) {
	for rank, rankName := range rankNames {
		if rankName == name {
			return rank, nil
		}
	}
	return RankRookie, fmt.Errorf("unknown rank %q: %w", name, ErrNotFound)
}

// Gate is a qualitative rank requirement computed by external collaborators
// and handed to the engine as a verdict. The engine never computes gates.
type Gate string

const (
	GateTeamActivity     Gate = "team_activity"
	GateOrgVolume        Gate = "org_volume"
	GateLeadershipVolume Gate = "leadership_volume"
	GateOrgStability     Gate = "org_stability"
	GateElitePerformance Gate = "elite_performance"
	GateAdminApproval    Gate = "admin_approval"
)

// RankFacts is the externally sourced input to rank evaluation.
type RankFacts struct {
	PersonallyEnrolledActive int
	Gates                    map[Gate]bool
}

func (f *RankFacts) GatePassed(g Gate) bool {
	if f.Gates == nil {
		return false
	}
	return f.Gates[g]
}

// RankTier describes one tier of the compensation plan's rank ladder.
// Thresholds are strictly increasing, so at most one tier is the highest
// satisfiable one for any set of facts.
type RankTier struct {
	Rank                     Rank
	MinPersonallyEnrolledActive int
	RequiredGates            []Gate
	MaxPayableLevel          int
}

type RankModel []RankTier

// DefaultRankModel mirrors the production rank ladder.
func DefaultRankModel() RankModel {
	return RankModel{
		{Rank: RankRookie, MinPersonallyEnrolledActive: 0, MaxPayableLevel: 1},
		{Rank: RankHustla, MinPersonallyEnrolledActive: 2, MaxPayableLevel: 2},
		{Rank: RankGrinder, MinPersonallyEnrolledActive: 5, RequiredGates: []Gate{GateTeamActivity}, MaxPayableLevel: 3},
		{Rank: RankInfluencer, MinPersonallyEnrolledActive: 10, RequiredGates: []Gate{GateTeamActivity, GateOrgVolume}, MaxPayableLevel: 4},
		{Rank: RankExecutive, MinPersonallyEnrolledActive: 20, RequiredGates: []Gate{GateOrgVolume, GateLeadershipVolume, GateOrgStability}, MaxPayableLevel: 5},
		{Rank: RankPartner, MinPersonallyEnrolledActive: 40, RequiredGates: []Gate{GateLeadershipVolume, GateElitePerformance, GateAdminApproval}, MaxPayableLevel: 5},
	}
}

func (t *RankTier) Satisfied(facts *RankFacts) bool {
	if facts.PersonallyEnrolledActive < t.MinPersonallyEnrolledActive {
		return false
	}
	for _, g := range t.RequiredGates {
		if !facts.GatePassed(g) {
			return false
		}
	}
	return true
}

// Evaluate returns the highest tier satisfied by the facts. The base tier has
// a zero threshold and no gates, so there is always an answer.
func (m RankModel) Evaluate(facts *RankFacts) Rank {
	result := m[0].Rank
	for _, tier := range m {
		if tier.Satisfied(facts) {
			result = tier.Rank
		}
	}
	return result
}

func (m RankModel) TierFor(rank Rank) *RankTier {
	for i := range m {
		if m[i].Rank == rank {
			return &m[i]
		}
	}
	return nil
}

// NextTier returns the tier above the given rank, nil at the top.
func (m RankModel) NextTier(rank Rank) *RankTier {
	for i := range m {
		if m[i].Rank > rank {
			return &m[i]
		}
	}
	return nil
}

// MaxPayableLevel is the deepest matrix level a member of this rank is
// entitled to be paid for.
func (m RankModel) MaxPayableLevel(rank Rank) int {
	if tier := m.TierFor(rank); tier != nil {
		return tier.MaxPayableLevel
	}
	return m[0].MaxPayableLevel
}

// MemberRank is the stored current rank with an optimistic-lock version.
type MemberRank struct {
	MemberID  string
	Rank      Rank
	Version   int64
	UpdatedAt time.Time
}

// RankHistoryEntry is an immutable log row, written exactly once per rank
// transition.
type RankHistoryEntry struct {
	ID           string
	MemberID     string
	PreviousRank *Rank
	NewRank      Rank
	Reason       *string
	CreatedAt    time.Time
}

type RankRepository interface {
	// GetMemberRank returns the stored rank, creating the base record on
	// first read.
	GetMemberRank(ctx context.Context, memberID string) (*MemberRank, error)
	// UpdateMemberRank applies an optimistic-concurrency update; ErrConflict
	// when the stored version moved.
	UpdateMemberRank(ctx context.Context, memberID string, newRank Rank, expectedVersion int64) error
	AppendHistory(ctx context.Context, entry *RankHistoryEntry) error
	ListHistory(ctx context.Context, memberID string) ([]*RankHistoryEntry, error)
}
