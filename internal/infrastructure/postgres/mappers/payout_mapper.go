package mappers

import (
	"github.com/fadehouse/compensation-service/internal/domain"
	"github.com/fadehouse/compensation-service/internal/infrastructure/postgres/models"
)

func ToDomainPayoutRequest(model *models.PayoutRequestModel) *domain.PayoutRequest {
	return &domain.PayoutRequest{
		ID:            model.ID,
		MemberID:      model.MemberID,
		Amount:        model.Amount,
		Method:        domain.PayoutMethod(model.Method),
		MethodDetails: model.MethodDetails,
		Status:        domain.PayoutStatus(model.Status),
		Note:          model.Note,
		RequestedAt:   model.RequestedAt,
		ProcessedAt:   model.ProcessedAt,
	}
}

func ToGORMPayoutRequest(request *domain.PayoutRequest) *models.PayoutRequestModel {
	return &models.PayoutRequestModel{
		ID:            request.ID,
		MemberID:      request.MemberID,
		Amount:        request.Amount,
		Method:        string(request.Method),
		MethodDetails: request.MethodDetails,
		Status:        string(request.Status),
		Note:          request.Note,
		RequestedAt:   request.RequestedAt,
		ProcessedAt:   request.ProcessedAt,
	}
}
