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

type DefaultRankRepository struct {
	DB *gorm.DB
}

func NewDefaultRankRepository(db *gorm.DB) *DefaultRankRepository {
	return &DefaultRankRepository{DB: db}
}

// GetMemberRank seeds the base record on first read so every member always
// has a stored rank.
func (r *DefaultRankRepository) GetMemberRank(ctx context.Context, memberID string) (*domain.MemberRank, error) {
	db := dbFromContext(ctx, r.DB)

	var model models.MemberRankModel
	err := db.First(&model, "member_id = ?", memberID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		model = models.MemberRankModel{
			MemberID:  memberID,
			Rank:      int(domain.RankRookie),
			Version:   1,
			UpdatedAt: time.Now(),
		}
		if createErr := db.Create(&model).Error; createErr != nil {
			if uniqueViolation(createErr) {
				return nil, fmt.Errorf("member rank %s: %w", memberID, domain.ErrConflict)
			}
			return nil, createErr
		}
	} else if err != nil {
		return nil, err
	}
	return mappers.ToDomainMemberRank(&model), nil
}

// UpdateMemberRank is an optimistic-concurrency write: no row moves unless
// the stored version still matches.
func (r *DefaultRankRepository) UpdateMemberRank(ctx context.Context, memberID string, newRank domain.Rank, expectedVersion int64) error {
	result := dbFromContext(ctx, r.DB).
		Model(&models.MemberRankModel{}).
		Where("member_id = ? AND version = ?", memberID, expectedVersion).
		Updates(map[string]interface{}{
			"rank":       int(newRank),
			"version":    expectedVersion + 1,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("member rank %s moved concurrently: %w", memberID, domain.ErrConflict)
	}
	return nil
}

func (r *DefaultRankRepository) AppendHistory(ctx context.Context, entry *domain.RankHistoryEntry) error {
	return dbFromContext(ctx, r.DB).Create(mappers.ToGORMRankHistory(entry)).Error
}

func (r *DefaultRankRepository) ListHistory(ctx context.Context, memberID string) ([]*domain.RankHistoryEntry, error) {
	var entryModels []models.RankHistoryModel
	err := dbFromContext(ctx, r.DB).
		Where("member_id = ?", memberID).
		Order("created_at ASC").
		Find(&entryModels).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.RankHistoryEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = mappers.ToDomainRankHistory(&entryModels[i])
	}
	return entries, nil
}
