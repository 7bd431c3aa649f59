package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fadehouse/compensation-service/internal/domain"
	matrixdto "github.com/fadehouse/compensation-service/internal/usecase/dto/matrix"
)

func newMatrixUsecaseForTest(repo *fakeMatrixRepo) *DefaultMatrixUsecase {
	return NewDefaultMatrixUsecase(repo, &fakePlanSource{plan: domain.DefaultCompensationPlan()}, passTxManager{}, nil)
}

func place(t *testing.T, uc *DefaultMatrixUsecase, memberID, sponsorID string) *domain.MatrixNode {
	t.Helper()
	node, err := uc.Place(context.Background(), &matrixdto.PlaceInput{MemberID: memberID, SponsorID: sponsorID})
	if err != nil {
		t.Fatalf("placing %s under %s: %v", memberID, sponsorID, err)
	}
	return node
}

func TestPlaceSeedsRootOnEmptyTree(t *testing.T) {
	repo := newFakeMatrixRepo()
	uc := newMatrixUsecaseForTest(repo)

	node := place(t, uc, "alice", "root")

	rootNode, err := repo.GetNodeByMemberID(context.Background(), "root")
	if err != nil {
		t.Fatalf("root node missing: %v", err)
	}
	if !rootNode.IsRoot() {
		t.Fatal("sponsor of the first placement should become the root")
	}
	if node.ParentID == nil || *node.ParentID != rootNode.ID {
		t.Fatal("first member should sit directly under the root")
	}
	if node.Position != 0 {
		t.Fatalf("first child position = %d, want 0", node.Position)
	}
}

func TestPlaceFillsSlotsInOrderThenSpillsOver(t *testing.T) {
	repo := newFakeMatrixRepo()
	uc := newMatrixUsecaseForTest(repo)

	first := place(t, uc, "m1", "root")
	second := place(t, uc, "m2", "root")
	third := place(t, uc, "m3", "root")
	if first.Position != 0 || second.Position != 1 || third.Position != 2 {
		t.Fatalf("positions = %d,%d,%d, want 0,1,2", first.Position, second.Position, third.Position)
	}

	// Root is full: the fourth lands under the root's first child.
	fourth := place(t, uc, "m4", "root")
	if fourth.ParentID == nil || *fourth.ParentID != first.ID {
		t.Fatal("spillover should target the first child of the root")
	}
	if fourth.Position != 0 {
		t.Fatalf("spillover position = %d, want 0", fourth.Position)
	}
}

func TestPlaceWalksWholeLevelBeforeDescending(t *testing.T) {
	repo := newFakeMatrixRepo()
	uc := newMatrixUsecaseForTest(repo)

	for _, member := range []string{"m1", "m2", "m3", "m4"} {
		place(t, uc, member, "root")
	}
	// m4 went under m1; the next two must fill m1 before touching m2.
	fifth := place(t, uc, "m5", "root")
	sixth := place(t, uc, "m6", "root")
	seventh := place(t, uc, "m7", "root")

	m1, _ := repo.GetNodeByMemberID(context.Background(), "m1")
	m2, _ := repo.GetNodeByMemberID(context.Background(), "m2")
	if *fifth.ParentID != m1.ID || *sixth.ParentID != m1.ID {
		t.Fatal("level should fill left to right under the first child")
	}
	if *seventh.ParentID != m2.ID {
		t.Fatal("after the first child fills, placement moves to the second child")
	}
}

func TestPlaceRejectsSecondPlacement(t *testing.T) {
	repo := newFakeMatrixRepo()
	uc := newMatrixUsecaseForTest(repo)

	place(t, uc, "alice", "root")
	_, err := uc.Place(context.Background(), &matrixdto.PlaceInput{MemberID: "alice", SponsorID: "root"})
	if !errors.Is(err, domain.ErrAlreadyPlaced) {
		t.Fatalf("want ErrAlreadyPlaced, got %v", err)
	}
}

func TestPlaceRejectsUnknownSponsorInNonEmptyTree(t *testing.T) {
	repo := newFakeMatrixRepo()
	uc := newMatrixUsecaseForTest(repo)

	place(t, uc, "alice", "root")
	_, err := uc.Place(context.Background(), &matrixdto.PlaceInput{MemberID: "bob", SponsorID: "ghost"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestPlaceSkipsSlotDuringCoolingOff(t *testing.T) {
	repo := newFakeMatrixRepo()
	uc := newMatrixUsecaseForTest(repo)

	first := place(t, uc, "m1", "root")
	if err := uc.RemoveConnection(context.Background(), &matrixdto.RemoveConnectionInput{MemberID: "m1", Reason: "chargeback"}); err != nil {
		t.Fatalf("removing m1: %v", err)
	}

	// Slot 0 is cooling off; the next member takes slot 1.
	next := place(t, uc, "m2", "root")
	if next.Position != 1 {
		t.Fatalf("position = %d, want 1 while slot 0 cools off", next.Position)
	}
	if *next.ParentID != *first.ParentID {
		t.Fatal("placement should stay under the root")
	}
}

func TestPlaceReusesSlotAfterCoolingOff(t *testing.T) {
	repo := newFakeMatrixRepo()
	uc := newMatrixUsecaseForTest(repo)

	first := place(t, uc, "m1", "root")
	removedAt := time.Now().Add(-31 * 24 * time.Hour)
	if err := repo.MarkRemoved(context.Background(), first.ID, removedAt); err != nil {
		t.Fatalf("marking removed: %v", err)
	}

	next := place(t, uc, "m2", "root")
	if next.Position != 0 {
		t.Fatalf("position = %d, want 0 once cooling-off has passed", next.Position)
	}
}

func TestPlaceReturnsSlotLockedWhenFrontierCools(t *testing.T) {
	repo := newFakeMatrixRepo()
	plan := domain.DefaultCompensationPlan()
	uc := NewDefaultMatrixUsecase(repo, &fakePlanSource{plan: plan}, passTxManager{}, nil)

	// Leaf sponsor whose only open slots are all cooling off.
	place(t, uc, "m1", "root")
	for _, member := range []string{"c1", "c2", "c3"} {
		node := place(t, uc, member, "m1")
		if err := repo.MarkRemoved(context.Background(), node.ID, time.Now()); err != nil {
			t.Fatalf("marking removed: %v", err)
		}
	}

	_, err := uc.Place(context.Background(), &matrixdto.PlaceInput{MemberID: "m2", SponsorID: "m1"})
	if !errors.Is(err, domain.ErrSlotLocked) {
		t.Fatalf("want ErrSlotLocked, got %v", err)
	}
}

func TestAncestorChainFollowsParentLinks(t *testing.T) {
	repo := newFakeMatrixRepo()
	uc := newMatrixUsecaseForTest(repo)

	// root <- m1 <- m4 after spillover of m4's sponsor line.
	place(t, uc, "m1", "root")
	place(t, uc, "m2", "root")
	place(t, uc, "m3", "root")
	place(t, uc, "m4", "root")

	chain, err := uc.AncestorChain(context.Background(), "m4", 5)
	if err != nil {
		t.Fatalf("ancestor chain: %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("chain length = %d, want 2", len(chain))
	}
	if chain[0].MemberID != "m1" || chain[0].Depth != 1 {
		t.Fatalf("first ancestor = %s depth %d, want m1 depth 1", chain[0].MemberID, chain[0].Depth)
	}
	if chain[1].MemberID != "root" || chain[1].Depth != 2 {
		t.Fatalf("second ancestor = %s depth %d, want root depth 2", chain[1].MemberID, chain[1].Depth)
	}
}

func TestAncestorChainHonorsMaxDepth(t *testing.T) {
	repo := newFakeMatrixRepo()
	uc := newMatrixUsecaseForTest(repo)

	place(t, uc, "m1", "root")
	place(t, uc, "m2", "m1")
	place(t, uc, "m3", "m2")

	chain, err := uc.AncestorChain(context.Background(), "m3", 2)
	if err != nil {
		t.Fatalf("ancestor chain: %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("chain length = %d, want 2", len(chain))
	}
}

func TestRemoveConnectionIsIdempotentGuarded(t *testing.T) {
	repo := newFakeMatrixRepo()
	uc := newMatrixUsecaseForTest(repo)

	place(t, uc, "m1", "root")
	input := &matrixdto.RemoveConnectionInput{MemberID: "m1", Reason: "refund"}
	if err := uc.RemoveConnection(context.Background(), input); err != nil {
		t.Fatalf("first removal: %v", err)
	}
	if err := uc.RemoveConnection(context.Background(), input); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("second removal should be ErrInvalidTransition, got %v", err)
	}

	node, err := uc.Node(context.Background(), "m1")
	if err != nil {
		t.Fatalf("node lookup: %v", err)
	}
	if !node.Removed() {
		t.Fatal("node should stay in the tree, marked removed")
	}
}
