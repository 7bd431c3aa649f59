package mappers

import (
	"github.com/fadehouse/compensation-service/internal/domain"
	"github.com/fadehouse/compensation-service/internal/infrastructure/postgres/models"
)

func ToDomainCommissionEvent(model *models.CommissionEventModel) *domain.CommissionEvent {
	return &domain.CommissionEvent{
		ID:             model.ID,
		MemberID:       model.MemberID,
		Type:           domain.CommissionType(model.Type),
		SourceMemberID: model.SourceMemberID,
		SourceEventID:  model.SourceEventID,
		Level:          model.Level,
		Amount:         model.Amount,
		Status:         domain.CommissionStatus(model.Status),
		DedupeKey:      model.DedupeKey,
		VoidReason:     model.VoidReason,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

func ToGORMCommissionEvent(event *domain.CommissionEvent) *models.CommissionEventModel {
	return &models.CommissionEventModel{
		ID:             event.ID,
		MemberID:       event.MemberID,
		Type:           string(event.Type),
		SourceMemberID: event.SourceMemberID,
		SourceEventID:  event.SourceEventID,
		Level:          event.Level,
		Amount:         event.Amount,
		Status:         string(event.Status),
		DedupeKey:      event.DedupeKey,
		VoidReason:     event.VoidReason,
		CreatedAt:      event.CreatedAt,
		UpdatedAt:      event.UpdatedAt,
	}
}
