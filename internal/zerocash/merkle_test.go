package zerocash

import (
	"errors"
	"testing"
)

func TestLedgerWitnessesVerify(t *testing.T) {
	l := NewLedger(nil)
	var leaves []Hash
	for i := uint64(0); i < 5; i++ {
		cm := hashElements(uint64Element(i + 100))
		leaves = append(leaves, cm)
		if pos := l.AppendCommitment(cm); pos != i {
			t.Fatalf("expected position %d, got %d", i, pos)
		}
	}
	for i, leaf := range leaves {
		w, err := l.Witness(uint64(i))
		if err != nil {
			t.Fatalf("Witness(%d) failed: %v", i, err)
		}
		if len(w.AuthPath) != TreeDepth {
			t.Fatalf("expected %d path nodes, got %d", TreeDepth, len(w.AuthPath))
		}
		if w.Position() != uint64(i) {
			t.Fatalf("expected position %d, got %d", i, w.Position())
		}
		if w.Root != l.Root() {
			t.Fatal("witness root differs from ledger root")
		}
		if err := w.Verify(leaf); err != nil {
			t.Fatalf("Verify(%d) failed: %v", i, err)
		}
	}
	if _, err := l.Witness(5); !errors.Is(err, ErrWitnessPosition) {
		t.Fatalf("expected ErrWitnessPosition, got %v", err)
	}
}

func TestEmptyLedgerRoot(t *testing.T) {
	l := NewLedger(nil)
	if l.Root() != emptyRoots()[TreeDepth] {
		t.Fatal("empty ledger root is not the empty tree root")
	}
	if !l.HasRoot(l.Root()) {
		t.Fatal("empty root is not recorded")
	}
}

func TestWitnessVerifyRejections(t *testing.T) {
	l := NewLedger(nil)
	cm := hashElements(uint64Element(1))
	l.AppendCommitment(cm)
	w, err := l.Witness(0)
	if err != nil {
		t.Fatal(err)
	}

	short := *w
	short.AuthPath = w.AuthPath[:TreeDepth-1]
	if err := short.Verify(cm); !errors.Is(err, ErrWitnessDepth) {
		t.Fatalf("expected ErrWitnessDepth, got %v", err)
	}

	outside := *w
	outside.TreeSize = 0
	if err := outside.Verify(cm); !errors.Is(err, ErrWitnessPosition) {
		t.Fatalf("expected ErrWitnessPosition, got %v", err)
	}

	if err := w.Verify(hashElements(uint64Element(2))); !errors.Is(err, ErrWitnessRoot) {
		t.Fatalf("expected ErrWitnessRoot, got %v", err)
	}
}
