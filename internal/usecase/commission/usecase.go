package commission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/fadehouse/compensation-service/internal/domain"
	publisher "github.com/fadehouse/compensation-service/internal/infrastructure/kafka"
	"github.com/fadehouse/compensation-service/internal/infrastructure/metrics"
	matrixdto "github.com/fadehouse/compensation-service/internal/usecase/dto/matrix"
)

// MatrixPort is the slice of the matrix usecase the engine needs.
type MatrixPort interface {
	Place(ctx context.Context, input *matrixdto.PlaceInput) (*domain.MatrixNode, error)
	AncestorChain(ctx context.Context, memberID string, maxDepth int) ([]domain.Ancestor, error)
}

// RankPort supplies the rank-derived matrix depth cap per ancestor.
type RankPort interface {
	MaxPayableLevel(ctx context.Context, memberID string) (int, error)
}

// AccrualPublisher fans accrued commissions out to the commission topic.
type AccrualPublisher interface {
	PublishCommission(topic string, event publisher.CommissionAccruedEvent) error
}

type CommissionUsecase interface {
	OnQualifyingEvent(ctx context.Context, event *domain.QualifyingEvent) ([]*domain.CommissionEvent, error)
	ListMemberCommissions(ctx context.Context, memberID string, status domain.CommissionStatus) ([]*domain.CommissionEvent, error)
}

type DefaultCommissionUsecase struct {
	matrix        MatrixPort
	ranks         RankPort
	members       domain.MemberDirectory
	planSource    domain.PlanSource
	ledgerRepo    domain.LedgerRepository
	processedRepo domain.ProcessedEventRepository
	txManager     domain.TxManager
	publisher     AccrualPublisher
	topic         string
	metrics       *metrics.CompensationMetrics
}

func NewDefaultCommissionUsecase(
	matrix MatrixPort,
	ranks RankPort,
	members domain.MemberDirectory,
	planSource domain.PlanSource,
	ledgerRepo domain.LedgerRepository,
	processedRepo domain.ProcessedEventRepository,
	txManager domain.TxManager,
	pub AccrualPublisher,
	topic string,
	m *metrics.CompensationMetrics,
) *DefaultCommissionUsecase {
	return &DefaultCommissionUsecase{
		matrix:        matrix,
		ranks:         ranks,
		members:       members,
		planSource:    planSource,
		ledgerRepo:    ledgerRepo,
		processedRepo: processedRepo,
		txManager:     txManager,
		publisher:     pub,
		topic:         topic,
		metrics:       m,
	}
}

// forfeiture records an amount withheld from an ancestor above its rank cap.
type forfeiture struct {
	level  int
	amount float64
}

// OnQualifyingEvent computes every commission owed for one billing event
// inside a single serializable transaction. Redelivery of an already
// processed event id is a logged no-op.
func (uc *DefaultCommissionUsecase) OnQualifyingEvent(ctx context.Context, event *domain.QualifyingEvent) ([]*domain.CommissionEvent, error) {
	started := time.Now()

	plan, err := uc.planSource.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	var created []*domain.CommissionEvent
	var forfeits []forfeiture
	err = uc.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		created, forfeits = nil, nil
		if err := uc.processedRepo.MarkProcessed(ctx, event.EventID, string(event.Type)); err != nil {
			return err
		}

		var err error
		switch event.Type {
		case domain.EventEnrollmentActivated:
			created, err = uc.enrollmentCommissions(ctx, plan, event)
		case domain.EventBillingCycleCompleted:
			created, forfeits, err = uc.billingCycleCommissions(ctx, plan, event)
		default:
			return fmt.Errorf("unknown billing event type %q", event.Type)
		}
		if err != nil {
			return err
		}
		if len(created) == 0 {
			return nil
		}
		return uc.ledgerRepo.CreateEvents(ctx, created)
	})
	if errors.Is(err, domain.ErrDuplicateEvent) {
		slog.Info("duplicate billing event ignored", "event_id", event.EventID, "type", event.Type)
		if uc.metrics != nil {
			uc.metrics.RecordDuplicateEvent()
		}
		return nil, nil
	}
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.RecordEngineError("on_qualifying_event")
		}
		return nil, err
	}

	if uc.metrics != nil {
		for _, ev := range created {
			uc.metrics.RecordCommission(string(ev.Type), ev.Level, ev.Amount)
		}
		for _, f := range forfeits {
			uc.metrics.RecordForfeited(f.level, f.amount)
		}
		uc.metrics.RecordEventDuration(string(event.Type), time.Since(started).Seconds())
	}
	slog.Info("qualifying event processed",
		"event_id", event.EventID,
		"type", event.Type,
		"commissions", len(created))

	uc.publishAccruals(created)
	return created, nil
}

func (uc *DefaultCommissionUsecase) publishAccruals(events []*domain.CommissionEvent) {
	if uc.publisher == nil {
		return
	}
	go func(events []*domain.CommissionEvent) {
		for _, ev := range events {
			accrual := publisher.CommissionAccruedEvent{
				CommissionID:   ev.ID,
				MemberID:       ev.MemberID,
				Type:           string(ev.Type),
				SourceMemberID: ev.SourceMemberID,
				SourceEventID:  ev.SourceEventID,
				Level:          ev.Level,
				Amount:         ev.Amount,
			}
			if err := uc.publisher.PublishCommission(uc.topic, accrual); err != nil {
				slog.Error("failed to publish commission accrual", "commission_id", ev.ID, "error", err.Error())
			}
		}
	}(events)
}

// eligibleProfile fetches a profile once per event, skipping members the
// identity collaborator reports as not active-paid.
func (uc *DefaultCommissionUsecase) profileFor(ctx context.Context, cache map[string]*domain.MemberProfile, memberID string) (*domain.MemberProfile, error) {
	if profile, ok := cache[memberID]; ok {
		return profile, nil
	}
	profile, err := uc.members.GetMemberProfile(ctx, memberID)
	if err != nil {
		return nil, err
	}
	cache[memberID] = profile
	return profile, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
