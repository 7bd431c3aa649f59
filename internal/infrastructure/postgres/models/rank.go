package models

import "time"

type MemberRankModel struct {
	MemberID  string `gorm:"primaryKey"`
	Rank      int    `gorm:"not null"`
	Version   int64  `gorm:"not null"`
	UpdatedAt time.Time
}

func (MemberRankModel) TableName() string {
	return "member_ranks"
}

type RankHistoryModel struct {
	ID           string `gorm:"primaryKey"`
	MemberID     string `gorm:"index;not null"`
	PreviousRank *int
	NewRank      int `gorm:"not null"`
	Reason       *string
	CreatedAt    time.Time
}

func (RankHistoryModel) TableName() string {
	return "rank_history"
}
