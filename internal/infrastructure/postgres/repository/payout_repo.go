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

type DefaultPayoutRepository struct {
	DB *gorm.DB
}

func NewDefaultPayoutRepository(db *gorm.DB) *DefaultPayoutRepository {
	return &DefaultPayoutRepository{DB: db}
}

func (r *DefaultPayoutRepository) CreateRequest(ctx context.Context, request *domain.PayoutRequest) error {
	return dbFromContext(ctx, r.DB).Create(mappers.ToGORMPayoutRequest(request)).Error
}

func (r *DefaultPayoutRepository) GetRequestByID(ctx context.Context, requestID string) (*domain.PayoutRequest, error) {
	var model models.PayoutRequestModel
	if err := dbFromContext(ctx, r.DB).First(&model, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payout request %s: %w", requestID, domain.ErrNotFound)
		}
		return nil, err
	}
	return mappers.ToDomainPayoutRequest(&model), nil
}

func (r *DefaultPayoutRepository) GetPendingByMemberID(ctx context.Context, memberID string) (*domain.PayoutRequest, error) {
	var model models.PayoutRequestModel
	err := dbFromContext(ctx, r.DB).
		First(&model, "member_id = ? AND status = ?", memberID, string(domain.PayoutPending)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("pending payout for member %s: %w", memberID, domain.ErrNotFound)
		}
		return nil, err
	}
	return mappers.ToDomainPayoutRequest(&model), nil
}

func (r *DefaultPayoutRepository) ListByMemberID(ctx context.Context, memberID string) ([]*domain.PayoutRequest, error) {
	var requestModels []models.PayoutRequestModel
	err := dbFromContext(ctx, r.DB).
		Where("member_id = ?", memberID).
		Order("requested_at DESC").
		Find(&requestModels).Error
	if err != nil {
		return nil, err
	}

	requests := make([]*domain.PayoutRequest, len(requestModels))
	for i := range requestModels {
		requests[i] = mappers.ToDomainPayoutRequest(&requestModels[i])
	}
	return requests, nil
}

func (r *DefaultPayoutRepository) UpdateStatus(ctx context.Context, requestID string, from, to domain.PayoutStatus, note string, processedAt time.Time) error {
	result := dbFromContext(ctx, r.DB).
		Model(&models.PayoutRequestModel{}).
		Where("id = ? AND status = ?", requestID, string(from)).
		Updates(map[string]interface{}{
			"status":       string(to),
			"note":         note,
			"processed_at": processedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("payout request %s is not %s: %w", requestID, from, domain.ErrInvalidTransition)
	}
	return nil
}
