package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fadehouse/compensation-service/internal/domain"
	"github.com/fadehouse/compensation-service/internal/infrastructure/metrics"
	rankdto "github.com/fadehouse/compensation-service/internal/usecase/dto/rank"
	"github.com/google/uuid"
)

// evaluateRetries bounds the optimistic-concurrency loop around a rank write.
const evaluateRetries = 3

type RankUsecase interface {
	Evaluate(ctx context.Context, input *rankdto.EvaluateInput) (domain.Rank, error)
	Demote(ctx context.Context, input *rankdto.DemoteInput) error
	ProgressToNext(ctx context.Context, memberID string, facts *domain.RankFacts) (*rankdto.ProgressOutput, error)
	CurrentRank(ctx context.Context, memberID string) (domain.Rank, error)
}

type DefaultRankUsecase struct {
	rankRepo  domain.RankRepository
	model     domain.RankModel
	txManager domain.TxManager
	metrics   *metrics.CompensationMetrics
}

func NewDefaultRankUsecase(
	rankRepo domain.RankRepository,
	model domain.RankModel,
	txManager domain.TxManager,
	m *metrics.CompensationMetrics,
) *DefaultRankUsecase {
	return &DefaultRankUsecase{
		rankRepo:  rankRepo,
		model:     model,
		txManager: txManager,
		metrics:   m,
	}
}

// Evaluate computes the member's rank from externally supplied facts and
// persists a promotion when the computed rank is higher than the stored one.
// Rank never decreases here; demotion is a separate administrative operation.
func (uc *DefaultRankUsecase) Evaluate(ctx context.Context, input *rankdto.EvaluateInput) (domain.Rank, error) {
	computed := uc.model.Evaluate(&input.Facts)

	var result domain.Rank
	var attemptErr error
	for attempt := 0; attempt < evaluateRetries; attempt++ {
		attemptErr = uc.txManager.Do(ctx, func(ctx context.Context) error {
			stored, err := uc.rankRepo.GetMemberRank(ctx, input.MemberID)
			if err != nil {
				return err
			}
			if computed <= stored.Rank {
				result = stored.Rank
				return nil
			}
			if err := uc.rankRepo.UpdateMemberRank(ctx, input.MemberID, computed, stored.Version); err != nil {
				return err
			}
			previous := stored.Rank
			if err := uc.rankRepo.AppendHistory(ctx, &domain.RankHistoryEntry{
				ID:           uuid.New().String(),
				MemberID:     input.MemberID,
				PreviousRank: &previous,
				NewRank:      computed,
				CreatedAt:    time.Now(),
			}); err != nil {
				return err
			}
			result = computed
			return nil
		})
		if attemptErr == nil {
			break
		}
		if !errors.Is(attemptErr, domain.ErrConflict) {
			return 0, attemptErr
		}
		// Lost the optimistic race: re-read and try again.
	}
	if attemptErr != nil {
		return 0, attemptErr
	}

	if result == computed && uc.metrics != nil {
		uc.metrics.RecordRankTransition("promotion", result.String())
	}
	if result == computed {
		slog.Info("rank promotion", "member_id", input.MemberID, "rank", result.String())
	}
	return result, nil
}

// Demote is the only path that lowers a stored rank. Always logged.
func (uc *DefaultRankUsecase) Demote(ctx context.Context, input *rankdto.DemoteInput) error {
	err := uc.txManager.Do(ctx, func(ctx context.Context) error {
		stored, err := uc.rankRepo.GetMemberRank(ctx, input.MemberID)
		if err != nil {
			return err
		}
		if input.To >= stored.Rank {
			return fmt.Errorf("demotion target %s not below current %s: %w",
				input.To, stored.Rank, domain.ErrInvalidTransition)
		}
		if err := uc.rankRepo.UpdateMemberRank(ctx, input.MemberID, input.To, stored.Version); err != nil {
			return err
		}
		previous := stored.Rank
		reason := input.Reason
		return uc.rankRepo.AppendHistory(ctx, &domain.RankHistoryEntry{
			ID:           uuid.New().String(),
			MemberID:     input.MemberID,
			PreviousRank: &previous,
			NewRank:      input.To,
			Reason:       &reason,
			CreatedAt:    time.Now(),
		})
	})
	if err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.RecordRankTransition("demotion", input.To.String())
	}
	slog.Warn("rank demotion", "member_id", input.MemberID, "rank", input.To.String(), "reason", input.Reason)
	return nil
}

// ProgressToNext is a pure read-side computation for display, not gating
// logic.
func (uc *DefaultRankUsecase) ProgressToNext(ctx context.Context, memberID string, facts *domain.RankFacts) (*rankdto.ProgressOutput, error) {
	stored, err := uc.rankRepo.GetMemberRank(ctx, memberID)
	if err != nil {
		return nil, err
	}

	out := &rankdto.ProgressOutput{
		Current:  stored.Rank,
		Enrolled: facts.PersonallyEnrolledActive,
	}
	next := uc.model.NextTier(stored.Rank)
	if next == nil {
		out.Percentage = 100
		return out, nil
	}
	out.Next = &next.Rank
	out.Required = next.MinPersonallyEnrolledActive
	if next.MinPersonallyEnrolledActive > 0 {
		pct := float64(facts.PersonallyEnrolledActive) / float64(next.MinPersonallyEnrolledActive) * 100
		if pct > 100 {
			pct = 100
		}
		out.Percentage = pct
	}
	return out, nil
}

func (uc *DefaultRankUsecase) CurrentRank(ctx context.Context, memberID string) (domain.Rank, error) {
	stored, err := uc.rankRepo.GetMemberRank(ctx, memberID)
	if err != nil {
		return 0, err
	}
	return stored.Rank, nil
}

// MaxPayableLevel exposes the rank-derived matrix depth cap to the engine.
func (uc *DefaultRankUsecase) MaxPayableLevel(ctx context.Context, memberID string) (int, error) {
	rank, err := uc.CurrentRank(ctx, memberID)
	if err != nil {
		return 0, err
	}
	return uc.model.MaxPayableLevel(rank), nil
}
