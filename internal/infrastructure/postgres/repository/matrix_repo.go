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

type DefaultMatrixRepository struct {
	DB *gorm.DB
}

func NewDefaultMatrixRepository(db *gorm.DB) *DefaultMatrixRepository {
	return &DefaultMatrixRepository{DB: db}
}

func (r *DefaultMatrixRepository) CreateNode(ctx context.Context, node *domain.MatrixNode) error {
	err := dbFromContext(ctx, r.DB).Create(mappers.ToGORMMatrixNode(node)).Error
	if uniqueViolation(err) {
		// Either the member already has a node or another transaction won
		// the slot. Both resolve as a write conflict for the retry loop.
		return fmt.Errorf("matrix node for member %s: %w", node.MemberID, domain.ErrConflict)
	}
	return err
}

func (r *DefaultMatrixRepository) GetNodeByID(ctx context.Context, nodeID string) (*domain.MatrixNode, error) {
	var model models.MatrixNodeModel
	if err := dbFromContext(ctx, r.DB).First(&model, "id = ?", nodeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("matrix node %s: %w", nodeID, domain.ErrNotFound)
		}
		return nil, err
	}
	return mappers.ToDomainMatrixNode(&model), nil
}

func (r *DefaultMatrixRepository) GetNodeByMemberID(ctx context.Context, memberID string) (*domain.MatrixNode, error) {
	var model models.MatrixNodeModel
	if err := dbFromContext(ctx, r.DB).First(&model, "member_id = ?", memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("matrix node for member %s: %w", memberID, domain.ErrNotFound)
		}
		return nil, err
	}
	return mappers.ToDomainMatrixNode(&model), nil
}

func (r *DefaultMatrixRepository) GetChildren(ctx context.Context, nodeID string) ([]*domain.MatrixNode, error) {
	var childModels []models.MatrixNodeModel
	err := dbFromContext(ctx, r.DB).
		Where("parent_id = ?", nodeID).
		Order("position ASC, placed_at ASC").
		Find(&childModels).Error
	if err != nil {
		return nil, err
	}

	children := make([]*domain.MatrixNode, len(childModels))
	for i := range childModels {
		children[i] = mappers.ToDomainMatrixNode(&childModels[i])
	}
	return children, nil
}

func (r *DefaultMatrixRepository) GetRoot(ctx context.Context) (*domain.MatrixNode, error) {
	var model models.MatrixNodeModel
	if err := dbFromContext(ctx, r.DB).First(&model, "parent_id IS NULL").Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("matrix root: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	return mappers.ToDomainMatrixNode(&model), nil
}

func (r *DefaultMatrixRepository) CountNodes(ctx context.Context) (int64, error) {
	var total int64
	err := dbFromContext(ctx, r.DB).Model(&models.MatrixNodeModel{}).Count(&total).Error
	return total, err
}

func (r *DefaultMatrixRepository) MarkRemoved(ctx context.Context, nodeID string, at time.Time) error {
	result := dbFromContext(ctx, r.DB).
		Model(&models.MatrixNodeModel{}).
		Where("id = ? AND removed_at IS NULL", nodeID).
		Update("removed_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("matrix node %s: %w", nodeID, domain.ErrInvalidTransition)
	}
	return nil
}
