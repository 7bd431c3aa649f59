package mappers

import (
	"github.com/fadehouse/compensation-service/internal/domain"
	"github.com/fadehouse/compensation-service/internal/infrastructure/postgres/models"
)

func ToDomainMatrixNode(model *models.MatrixNodeModel) *domain.MatrixNode {
	return &domain.MatrixNode{
		ID:        model.ID,
		MemberID:  model.MemberID,
		ParentID:  model.ParentID,
		Position:  model.Position,
		PlacedAt:  model.PlacedAt,
		RemovedAt: model.RemovedAt,
	}
}

func ToGORMMatrixNode(node *domain.MatrixNode) *models.MatrixNodeModel {
	return &models.MatrixNodeModel{
		ID:        node.ID,
		MemberID:  node.MemberID,
		ParentID:  node.ParentID,
		Position:  node.Position,
		PlacedAt:  node.PlacedAt,
		RemovedAt: node.RemovedAt,
	}
}
