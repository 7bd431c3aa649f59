package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fadehouse/compensation-service/internal/domain"
	"github.com/fadehouse/compensation-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultProcessedEventRepository struct {
	DB *gorm.DB
}

func NewDefaultProcessedEventRepository(db *gorm.DB) *DefaultProcessedEventRepository {
	return &DefaultProcessedEventRepository{DB: db}
}

// MarkProcessed claims the billing event id. The primary key turns redelivery
// into ErrDuplicateEvent inside whatever transaction the engine is running.
func (r *DefaultProcessedEventRepository) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	err := dbFromContext(ctx, r.DB).Create(&models.ProcessedEventModel{
		EventID:     eventID,
		EventType:   eventType,
		ProcessedAt: time.Now(),
	}).Error
	if uniqueViolation(err) {
		return fmt.Errorf("billing event %s: %w", eventID, domain.ErrDuplicateEvent)
	}
	return err
}
