package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fadehouse/compensation-service/internal/domain"
	"github.com/fadehouse/compensation-service/internal/infrastructure/metrics"
	matrixdto "github.com/fadehouse/compensation-service/internal/usecase/dto/matrix"
	"github.com/google/uuid"
)

type MatrixUsecase interface {
	Place(ctx context.Context, input *matrixdto.PlaceInput) (*domain.MatrixNode, error)
	Node(ctx context.Context, memberID string) (*domain.MatrixNode, error)
	AncestorChain(ctx context.Context, memberID string, maxDepth int) ([]domain.Ancestor, error)
	RemoveConnection(ctx context.Context, input *matrixdto.RemoveConnectionInput) error
}

type DefaultMatrixUsecase struct {
	matrixRepo domain.MatrixRepository
	planSource domain.PlanSource
	txManager  domain.TxManager
	metrics    *metrics.CompensationMetrics
}

func NewDefaultMatrixUsecase(
	matrixRepo domain.MatrixRepository,
	planSource domain.PlanSource,
	txManager domain.TxManager,
	m *metrics.CompensationMetrics,
) *DefaultMatrixUsecase {
	return &DefaultMatrixUsecase{
		matrixRepo: matrixRepo,
		planSource: planSource,
		txManager:  txManager,
		metrics:    m,
	}
}

// Place assigns the member the lowest-numbered open slot under the sponsor,
// spilling over breadth-first through the sponsor's subtree when the sponsor's
// own slots are taken. The whole placement runs in one serializable
// transaction so no two members can win the same (parent, position) pair.
func (uc *DefaultMatrixUsecase) Place(ctx context.Context, input *matrixdto.PlaceInput) (*domain.MatrixNode, error) {
	plan, err := uc.planSource.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	var placed *domain.MatrixNode
	var spillover bool
	err = uc.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if _, err := uc.matrixRepo.GetNodeByMemberID(ctx, input.MemberID); err == nil {
			return domain.ErrAlreadyPlaced
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		sponsorNode, err := uc.matrixRepo.GetNodeByMemberID(ctx, input.SponsorID)
		if errors.Is(err, domain.ErrNotFound) {
			total, countErr := uc.matrixRepo.CountNodes(ctx)
			if countErr != nil {
				return countErr
			}
			if total > 0 {
				return fmt.Errorf("sponsor %s has no matrix node: %w", input.SponsorID, domain.ErrNotFound)
			}
			// Empty tree: the sponsor becomes the root.
			sponsorNode = &domain.MatrixNode{
				ID:       uuid.New().String(),
				MemberID: input.SponsorID,
				PlacedAt: time.Now(),
			}
			if err := uc.matrixRepo.CreateNode(ctx, sponsorNode); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		parent, position, err := uc.findOpenSlot(ctx, sponsorNode, plan.CoolingOff)
		if err != nil {
			return err
		}

		node := &domain.MatrixNode{
			ID:       uuid.New().String(),
			MemberID: input.MemberID,
			ParentID: &parent.ID,
			Position: position,
			PlacedAt: time.Now(),
		}
		if err := uc.matrixRepo.CreateNode(ctx, node); err != nil {
			return err
		}
		placed = node
		spillover = parent.ID != sponsorNode.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RecordPlacement(spillover)
	}
	slog.Info("matrix placement",
		"member_id", input.MemberID,
		"sponsor_id", input.SponsorID,
		"parent_node", *placed.ParentID,
		"position", placed.Position,
		"spillover", spillover)
	return placed, nil
}

// findOpenSlot walks the subtree level by level, children in position order,
// and returns the first node with a free slot. A slot whose previous occupant
// was removed stays locked until the cooling-off interval elapses.
func (uc *DefaultMatrixUsecase) findOpenSlot(ctx context.Context, start *domain.MatrixNode, coolingOff time.Duration) (*domain.MatrixNode, int, error) {
	now := time.Now()
	queue := []*domain.MatrixNode{start}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		children, err := uc.matrixRepo.GetChildren(ctx, node.ID)
		if err != nil {
			return nil, 0, err
		}

		var occupied, locked [domain.MatrixWidth]bool
		for _, child := range children {
			if child.Position < 0 || child.Position >= domain.MatrixWidth {
				continue
			}
			if !child.Removed() {
				occupied[child.Position] = true
			} else if now.Before(child.SlotReusableAt(coolingOff)) {
				locked[child.Position] = true
			}
		}
		for pos := 0; pos < domain.MatrixWidth; pos++ {
			if !occupied[pos] && !locked[pos] {
				return node, pos, nil
			}
		}
		for _, child := range children {
			if !child.Removed() {
				queue = append(queue, child)
			}
		}
	}
	// Reachable only when every frontier slot sits in its cooling-off window.
	return nil, 0, domain.ErrSlotLocked
}

// Node returns the member's placement, removed or not.
func (uc *DefaultMatrixUsecase) Node(ctx context.Context, memberID string) (*domain.MatrixNode, error) {
	return uc.matrixRepo.GetNodeByMemberID(ctx, memberID)
}

// AncestorChain returns up to maxDepth direct-line ancestors via parent links.
// The matrix line and the sponsor line can diverge after spillover; commission
// fan-out always follows this chain.
func (uc *DefaultMatrixUsecase) AncestorChain(ctx context.Context, memberID string, maxDepth int) ([]domain.Ancestor, error) {
	node, err := uc.matrixRepo.GetNodeByMemberID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	chain := make([]domain.Ancestor, 0, maxDepth)
	for depth := 1; depth <= maxDepth && node.ParentID != nil; depth++ {
		parent, err := uc.matrixRepo.GetNodeByID(ctx, *node.ParentID)
		if err != nil {
			return nil, err
		}
		chain = append(chain, domain.Ancestor{
			MemberID: parent.MemberID,
			NodeID:   parent.ID,
			Depth:    depth,
			Removed:  parent.Removed(),
		})
		node = parent
	}
	return chain, nil
}

// RemoveConnection voids future commission eligibility through the member's
// matrix link. The node itself is never deleted or relabeled; its slot opens
// for reuse once the cooling-off interval passes.
func (uc *DefaultMatrixUsecase) RemoveConnection(ctx context.Context, input *matrixdto.RemoveConnectionInput) error {
	err := uc.txManager.Do(ctx, func(ctx context.Context) error {
		node, err := uc.matrixRepo.GetNodeByMemberID(ctx, input.MemberID)
		if err != nil {
			return err
		}
		if node.Removed() {
			return fmt.Errorf("connection for member %s already removed: %w", input.MemberID, domain.ErrInvalidTransition)
		}
		return uc.matrixRepo.MarkRemoved(ctx, node.ID, time.Now())
	})
	if err != nil {
		return err
	}
	slog.Info("matrix connection removed", "member_id", input.MemberID, "reason", input.Reason)
	return nil
}
