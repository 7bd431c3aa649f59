package models

import "time"

// MatrixNodeModel rows are append-only; RemovedAt marks a voided connection.
// The partial unique index guarding one active occupant per (parent_id,
// position) lives in the SQL migrations, since slot reuse after cooling-off
// creates a second row for the same slot.
type MatrixNodeModel struct {
	ID        string  `gorm:"primaryKey"`
	MemberID  string  `gorm:"uniqueIndex;not null"`
	ParentID  *string `gorm:"index:idx_matrix_parent_position"`
	Position  int     `gorm:"index:idx_matrix_parent_position"`
	PlacedAt  time.Time
	RemovedAt *time.Time
}

func (MatrixNodeModel) TableName() string {
	return "matrix_nodes"
}
