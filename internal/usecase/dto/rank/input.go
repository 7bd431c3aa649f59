package rankdto

import "github.com/fadehouse/compensation-service/internal/domain"

type EvaluateInput struct {
	MemberID string
	Facts    domain.RankFacts
}

type DemoteInput struct {
	MemberID string
	To       domain.Rank
	Reason   string
}

type ProgressOutput struct {
	Current    domain.Rank
	Next       *domain.Rank
	Required   int
	Enrolled   int
	Percentage float64
}
