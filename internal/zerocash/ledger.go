// ledger.go - In-memory append-only ledger of commitments and nullifiers.
//
// The Ledger records output commitments in tree order, every root the tree has had and every
// spent nullifier. It verifies posted transactions before accepting them.
//
// NOTE: Ledger is not thread-safe by itself; use a sync.Mutex for concurrent access.

package zerocash

import "fmt"

// Ledger is the canonical, append-only shielded pool.
type Ledger struct {
	tree       commitmentTree
	roots      map[Hash]bool
	nullifiers map[Hash]bool
	txs        []*PostedTransaction
	verifier   Verifier
}

// NewLedger creates an empty ledger. A nil verifier skips proof checks.
func NewLedger(verifier Verifier) *Ledger {
	l := &Ledger{
		roots:      make(map[Hash]bool),
		nullifiers: make(map[Hash]bool),
		verifier:   verifier,
	}
	l.roots[l.tree.root()] = true
	return l
}

// AppendCommitment adds a note commitment and returns its tree position.
func (l *Ledger) AppendCommitment(cm Hash) uint64 {
	pos := l.tree.append(cm)
	l.roots[l.tree.root()] = true
	return pos
}

func (l *Ledger) Size() uint64 { return l.tree.size() }

func (l *Ledger) Root() Hash { return l.tree.root() }

// Witness returns the auth path for the commitment at position against the current root.
func (l *Ledger) Witness(position uint64) (*Witness, error) {
	return l.tree.witness(position)
}

func (l *Ledger) HasNullifier(nf Hash) bool { return l.nullifiers[nf] }

func (l *Ledger) HasRoot(root Hash) bool { return l.roots[root] }

// Transactions returns accepted transactions in order.
func (l *Ledger) Transactions() []*PostedTransaction { return l.txs }

// AppendTx verifies tx and appends its outputs. Output positions are returned in order.
func (l *Ledger) AppendTx(tx *PostedTransaction) ([]uint64, error) {
	// Step 1: signature and proofs
	if l.verifier != nil {
		if err := tx.Verify(l.verifier); err != nil {
			return nil, err
		}
	} else if err := tx.VerifySignature(); err != nil {
		return nil, err
	}

	// Step 2: anchors and double spends, including within tx
	seen := make(map[Hash]bool, len(tx.spends))
	for i, sp := range tx.spends {
		if !l.roots[sp.Root] {
			return nil, fmt.Errorf("spend %d: %w", i, ErrUnknownRoot)
		}
		if l.nullifiers[sp.Nullifier] || seen[sp.Nullifier] {
			return nil, fmt.Errorf("spend %d: %w", i, ErrDoubleSpend)
		}
		seen[sp.Nullifier] = true
	}

	// Step 3: commit
	for nf := range seen {
		l.nullifiers[nf] = true
	}
	positions := make([]uint64, 0, len(tx.outputs))
	for _, mn := range tx.outputs {
		positions = append(positions, l.AppendCommitment(mn.commitment))
	}
	l.txs = append(l.txs, tx)
	return positions, nil
}
