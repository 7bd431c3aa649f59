package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/fadehouse/compensation-service/internal/domain"
)

// passTxManager runs closures inline; the real serializable semantics are
// exercised against postgres, not here.
type passTxManager struct{}

func (passTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePlanSource struct {
	plan *domain.CompensationPlan
	err  error
}

func (f *fakePlanSource) Snapshot(ctx context.Context) (*domain.CompensationPlan, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.plan, nil
}

type fakeMatrixRepo struct {
	byID     map[string]*domain.MatrixNode
	byMember map[string]*domain.MatrixNode
}

func newFakeMatrixRepo() *fakeMatrixRepo {
	return &fakeMatrixRepo{
		byID:     make(map[string]*domain.MatrixNode),
		byMember: make(map[string]*domain.MatrixNode),
	}
}

func (f *fakeMatrixRepo) CreateNode(ctx context.Context, node *domain.MatrixNode) error {
	copied := *node
	f.byID[node.ID] = &copied
	f.byMember[node.MemberID] = &copied
	return nil
}

func (f *fakeMatrixRepo) GetNodeByID(ctx context.Context, nodeID string) (*domain.MatrixNode, error) {
	node, ok := f.byID[nodeID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *node
	return &copied, nil
}

func (f *fakeMatrixRepo) GetNodeByMemberID(ctx context.Context, memberID string) (*domain.MatrixNode, error) {
	node, ok := f.byMember[memberID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *node
	return &copied, nil
}

func (f *fakeMatrixRepo) GetChildren(ctx context.Context, nodeID string) ([]*domain.MatrixNode, error) {
	var children []*domain.MatrixNode
	for _, node := range f.byID {
		if node.ParentID != nil && *node.ParentID == nodeID {
			copied := *node
			children = append(children, &copied)
		}
	}
	sort.Slice(children, func(i, j int) bool {
		if children[i].Position != children[j].Position {
			return children[i].Position < children[j].Position
		}
		return children[i].PlacedAt.Before(children[j].PlacedAt)
	})
	return children, nil
}

func (f *fakeMatrixRepo) GetRoot(ctx context.Context) (*domain.MatrixNode, error) {
	for _, node := range f.byID {
		if node.ParentID == nil {
			copied := *node
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMatrixRepo) CountNodes(ctx context.Context) (int64, error) {
	return int64(len(f.byID)), nil
}

func (f *fakeMatrixRepo) MarkRemoved(ctx context.Context, nodeID string, at time.Time) error {
	node, ok := f.byID[nodeID]
	if !ok {
		return domain.ErrNotFound
	}
	node.RemovedAt = &at
	return nil
}

type fakeRankRepo struct {
	ranks       map[string]*domain.MemberRank
	history     []*domain.RankHistoryEntry
	conflictsOn int // UpdateMemberRank fails with ErrConflict this many times
}

func newFakeRankRepo() *fakeRankRepo {
	return &fakeRankRepo{ranks: make(map[string]*domain.MemberRank)}
}

func (f *fakeRankRepo) GetMemberRank(ctx context.Context, memberID string) (*domain.MemberRank, error) {
	if stored, ok := f.ranks[memberID]; ok {
		copied := *stored
		return &copied, nil
	}
	seeded := &domain.MemberRank{MemberID: memberID, Rank: domain.RankRookie, Version: 1, UpdatedAt: time.Now()}
	f.ranks[memberID] = seeded
	copied := *seeded
	return &copied, nil
}

func (f *fakeRankRepo) UpdateMemberRank(ctx context.Context, memberID string, newRank domain.Rank, expectedVersion int64) error {
	if f.conflictsOn > 0 {
		f.conflictsOn--
		return domain.ErrConflict
	}
	stored, ok := f.ranks[memberID]
	if !ok || stored.Version != expectedVersion {
		return domain.ErrConflict
	}
	stored.Rank = newRank
	stored.Version++
	stored.UpdatedAt = time.Now()
	return nil
}

func (f *fakeRankRepo) AppendHistory(ctx context.Context, entry *domain.RankHistoryEntry) error {
	f.history = append(f.history, entry)
	return nil
}

func (f *fakeRankRepo) ListHistory(ctx context.Context, memberID string) ([]*domain.RankHistoryEntry, error) {
	var entries []*domain.RankHistoryEntry
	for _, entry := range f.history {
		if entry.MemberID == memberID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

type fakeLedgerRepo struct {
	events []*domain.CommissionEvent
}

func (f *fakeLedgerRepo) CreateEvents(ctx context.Context, events []*domain.CommissionEvent) error {
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeLedgerRepo) GetEventByID(ctx context.Context, eventID string) (*domain.CommissionEvent, error) {
	for _, event := range f.events {
		if event.ID == eventID {
			return event, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeLedgerRepo) SumByStatus(ctx context.Context, memberID string, status domain.CommissionStatus) (float64, error) {
	total := 0.0
	for _, event := range f.events {
		if event.MemberID == memberID && event.Status == status {
			total += event.Amount
		}
	}
	return total, nil
}

func (f *fakeLedgerRepo) ListByMemberID(ctx context.Context, memberID string, status domain.CommissionStatus) ([]*domain.CommissionEvent, error) {
	var out []*domain.CommissionEvent
	for _, event := range f.events {
		if event.MemberID == memberID && (status == "" || event.Status == status) {
			out = append(out, event)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) ListPendingOldestFirst(ctx context.Context, memberID string) ([]*domain.CommissionEvent, error) {
	var out []*domain.CommissionEvent
	for _, event := range f.events {
		if event.MemberID == memberID && event.Status == domain.CommissionPending {
			out = append(out, event)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeLedgerRepo) UpdateStatus(ctx context.Context, eventID string, from, to domain.CommissionStatus, reason *string) error {
	for _, event := range f.events {
		if event.ID != eventID {
			continue
		}
		if event.Status != from {
			return domain.ErrInvalidTransition
		}
		event.Status = to
		event.VoidReason = reason
		return nil
	}
	return domain.ErrNotFound
}

type fakePayoutRepo struct {
	requests []*domain.PayoutRequest
}

func (f *fakePayoutRepo) CreateRequest(ctx context.Context, request *domain.PayoutRequest) error {
	copied := *request
	f.requests = append(f.requests, &copied)
	return nil
}

func (f *fakePayoutRepo) GetRequestByID(ctx context.Context, requestID string) (*domain.PayoutRequest, error) {
	for _, request := range f.requests {
		if request.ID == requestID {
			copied := *request
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakePayoutRepo) GetPendingByMemberID(ctx context.Context, memberID string) (*domain.PayoutRequest, error) {
	for _, request := range f.requests {
		if request.MemberID == memberID && request.Status == domain.PayoutPending {
			copied := *request
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakePayoutRepo) ListByMemberID(ctx context.Context, memberID string) ([]*domain.PayoutRequest, error) {
	var out []*domain.PayoutRequest
	for _, request := range f.requests {
		if request.MemberID == memberID {
			out = append(out, request)
		}
	}
	return out, nil
}

func (f *fakePayoutRepo) UpdateStatus(ctx context.Context, requestID string, from, to domain.PayoutStatus, note string, processedAt time.Time) error {
	for _, request := range f.requests {
		if request.ID != requestID {
			continue
		}
		if request.Status != from {
			return domain.ErrInvalidTransition
		}
		request.Status = to
		request.Note = note
		request.ProcessedAt = &processedAt
		return nil
	}
	return domain.ErrNotFound
}
