package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fadehouse/compensation-service/internal/domain"
	"github.com/fadehouse/compensation-service/internal/infrastructure/postgres/mappers"
	"github.com/fadehouse/compensation-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultLedgerRepository struct {
	DB *gorm.DB
}

func NewDefaultLedgerRepository(db *gorm.DB) *DefaultLedgerRepository {
	return &DefaultLedgerRepository{DB: db}
}

func (r *DefaultLedgerRepository) CreateEvents(ctx context.Context, events []*domain.CommissionEvent) error {
	if len(events) == 0 {
		return nil
	}
	eventModels := make([]*models.CommissionEventModel, len(events))
	for i, event := range events {
		eventModels[i] = mappers.ToGORMCommissionEvent(event)
	}
	err := dbFromContext(ctx, r.DB).Create(eventModels).Error
	if uniqueViolation(err) {
		return fmt.Errorf("commission dedupe key collision: %w", domain.ErrDuplicateEvent)
	}
	return err
}

func (r *DefaultLedgerRepository) GetEventByID(ctx context.Context, eventID string) (*domain.CommissionEvent, error) {
	var model models.CommissionEventModel
	if err := dbFromContext(ctx, r.DB).First(&model, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("commission event %s: %w", eventID, domain.ErrNotFound)
		}
		return nil, err
	}
	return mappers.ToDomainCommissionEvent(&model), nil
}

func (r *DefaultLedgerRepository) SumByStatus(ctx context.Context, memberID string, status domain.CommissionStatus) (float64, error) {
	var total float64
	err := dbFromContext(ctx, r.DB).
		Model(&models.CommissionEventModel{}).
		Where("member_id = ? AND status = ?", memberID, string(status)).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *DefaultLedgerRepository) ListByMemberID(ctx context.Context, memberID string, status domain.CommissionStatus) ([]*domain.CommissionEvent, error) {
	query := dbFromContext(ctx, r.DB).Where("member_id = ?", memberID)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	var eventModels []models.CommissionEventModel
	if err := query.Order("created_at DESC").Find(&eventModels).Error; err != nil {
		return nil, err
	}
	return toDomainEvents(eventModels), nil
}

func (r *DefaultLedgerRepository) ListPendingOldestFirst(ctx context.Context, memberID string) ([]*domain.CommissionEvent, error) {
	var eventModels []models.CommissionEventModel
	err := dbFromContext(ctx, r.DB).
		Where("member_id = ? AND status = ?", memberID, string(domain.CommissionPending)).
		Order("created_at ASC").
		Find(&eventModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainEvents(eventModels), nil
}

// UpdateStatus performs the guarded pending->paid / pending->voided
// transition. Zero rows affected means the stored status was not the
// expected one.
func (r *DefaultLedgerRepository) UpdateStatus(ctx context.Context, eventID string, from, to domain.CommissionStatus, reason *string) error {
	updates := map[string]interface{}{
		"status":     string(to),
		"updated_at": time.Now(),
	}
	if reason != nil {
		updates["void_reason"] = *reason
	}
	result := dbFromContext(ctx, r.DB).
		Model(&models.CommissionEventModel{}).
		Where("id = ? AND status = ?", eventID, string(from)).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("commission event %s is not %s: %w", eventID, from, domain.ErrInvalidTransition)
	}
	return nil
}

func toDomainEvents(eventModels []models.CommissionEventModel) []*domain.CommissionEvent {
	events := make([]*domain.CommissionEvent, len(eventModels))
	for i := range eventModels {
		events[i] = mappers.ToDomainCommissionEvent(&eventModels[i])
	}
	return events
}
