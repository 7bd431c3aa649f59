package mappers

import (
	"github.com/fadehouse/compensation-service/internal/domain"
	"github.com/fadehouse/compensation-service/internal/infrastructure/postgres/models"
)

func ToDomainMemberRank(model *models.MemberRankModel) *domain.MemberRank {
	return &domain.MemberRank{
		MemberID:  model.MemberID,
		Rank:      domain.Rank(model.Rank),
		Version:   model.Version,
		UpdatedAt: model.UpdatedAt,
	}
}

func ToDomainRankHistory(model *models.RankHistoryModel) *domain.RankHistoryEntry {
	entry := &domain.RankHistoryEntry{
		ID:        model.ID,
		MemberID:  model.MemberID,
		NewRank:   domain.Rank(model.NewRank),
		Reason:    model.Reason,
		CreatedAt: model.CreatedAt,
	}
	if model.PreviousRank != nil {
		previous := domain.Rank(*model.PreviousRank)
		entry.PreviousRank = &previous
	}
	return entry
}

func ToGORMRankHistory(entry *domain.RankHistoryEntry) *models.RankHistoryModel {
	model := &models.RankHistoryModel{
		ID:        entry.ID,
		MemberID:  entry.MemberID,
		NewRank:   int(entry.NewRank),
		Reason:    entry.Reason,
		CreatedAt: entry.CreatedAt,
	}
	if entry.PreviousRank != nil {
		previous := int(*entry.PreviousRank)
		model.PreviousRank = &previous
	}
	return model
}
