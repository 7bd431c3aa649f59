package models

import "time"

type PayoutRequestModel struct {
	ID            string `gorm:"primaryKey"`
	MemberID      string `gorm:"index;not null"`
	Amount        float64
	Method        string `gorm:"not null"`
	MethodDetails string
	Status        string `gorm:"index;not null"`
	Note          string
	RequestedAt   time.Time
	ProcessedAt   *time.Time
}

func (PayoutRequestModel) TableName() string {
	return "payout_requests"
}
