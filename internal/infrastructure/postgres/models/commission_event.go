package models

import "time"

// CommissionEventModel is the append-only ledger row. DedupeKey enforces at
// most one row per (source event, beneficiary, type, level) at the store
// level, whatever the engine does.
type CommissionEventModel struct {
	ID             string `gorm:"primaryKey"`
	MemberID       string `gorm:"index;not null"`
	Type           string `gorm:"not null"`
	SourceMemberID string `gorm:"not null"`
	SourceEventID  string `gorm:"index;not null"`
	Level          int
	Amount         float64 `gorm:"not null"`
	Status         string  `gorm:"index;not null"`
	DedupeKey      string  `gorm:"uniqueIndex;not null"`
	VoidReason     *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (CommissionEventModel) TableName() string {
	return "commission_events"
}

// ProcessedEventModel records billing-event ids already turned into
// commission rows.
type ProcessedEventModel struct {
	EventID     string `gorm:"primaryKey"`
	EventType   string `gorm:"not null"`
	ProcessedAt time.Time
}

func (ProcessedEventModel) TableName() string {
	return "processed_billing_events"
}
