package domain

import (
	"context"
	"time"
)

const MatrixWidth = 3

// MatrixNode is one slot assignment in the forced matrix. Parent and position
// are immutable once placed. A removed node keeps its row forever; only the
// slot it occupied becomes reusable after the cooling-off interval.
type MatrixNode struct {
	ID        string
	MemberID  string
	ParentID  *string
	Position  int
	PlacedAt  time.Time
	RemovedAt *time.Time
}

func (n *MatrixNode) IsRoot() bool {
	return n.ParentID == nil
}

func (n *MatrixNode) Removed() bool {
	return n.RemovedAt != nil
}

// SlotReusableAt returns the moment the node's slot opens up again after
// removal. Zero time for nodes that were never removed.
func (n *MatrixNode) SlotReusableAt(coolingOff time.Duration) time.Time {
	if n.RemovedAt == nil {
		return time.Time{}
	}
	return n.RemovedAt.Add(coolingOff)
}

// Ancestor is one hop of a matrix-line ancestor chain. Removed carries the
// voided-connection flag so commission fan-out can skip the link without the
// chain losing its shape.
type Ancestor struct {
	MemberID string
	NodeID   string
	Depth    int
	Removed  bool
}

type MatrixRepository interface {
	CreateNode(ctx context.Context, node *MatrixNode) error
	GetNodeByID(ctx context.Context, nodeID string) (*MatrixNode, error)
	GetNodeByMemberID(ctx context.Context, memberID string) (*MatrixNode, error)
	// GetChildren returns all children of a node, removed ones included,
	// ordered by position then placement time.
	GetChildren(ctx context.Context, nodeID string) ([]*MatrixNode, error)
	GetRoot(ctx context.Context) (*MatrixNode, error)
	CountNodes(ctx context.Context) (int64, error)
	MarkRemoved(ctx context.Context, nodeID string, at time.Time) error
}
