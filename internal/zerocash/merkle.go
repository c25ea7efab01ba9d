// merkle.go - Note commitment tree witnesses.
//
// The tree has fixed depth 32. Interior nodes are MiMC(left, right) and empty subtrees hash
// the zero leaf. A witness lists one node per level from the leaf upwards.

package zerocash

import (
	"fmt"
	"math"
	"sync"
)

// TreeDepth is the number of auth path nodes in every witness.
const TreeDepth = 32

// Side says which child the path node at this level is.
type Side uint8

const (
	// Left means the running hash is the left child and the sibling is on the right.
	Left Side = iota
	// Right means the running hash is the right child.
	Right
)

func (s Side) String() string {
	if s == Right {
		return "Right"
	}
	return "Left"
}

// WitnessNode is one level of an authentication path.
type WitnessNode struct {
	Side    Side
	Sibling Hash
}

// Witness proves a commitment's membership under Root.
type Witness struct {
	Root     Hash
	TreeSize uint64
	AuthPath []WitnessNode
}

func combineHash(left, right Hash) Hash {
	return hashElements(left.element(), right.element())
}

var emptyRoots = sync.OnceValue(func() [TreeDepth + 1]Hash {
	var out [TreeDepth + 1]Hash
	for i := 0; i < TreeDepth; i++ {
		out[i+1] = combineHash(out[i], out[i])
	}
	return out
})

// Position is the leaf index encoded by the path sides.
func (w *Witness) Position() uint64 {
	var pos uint64
	for i, node := range w.AuthPath {
		if node.Side == Right {
			pos |= 1 << uint(i)
		}
	}
	return pos
}

// RootFrom folds leaf up the auth path.
func (w *Witness) RootFrom(leaf Hash) Hash {
	cur := leaf
	for _, node := range w.AuthPath {
		if node.Side == Right {
			cur = combineHash(node.Sibling, cur)
		} else {
			cur = combineHash(cur, node.Sibling)
		}
	}
	return cur
}

// Verify checks that leaf sits inside the tree at the witness position.
func (w *Witness) Verify(leaf Hash) error {
	if len(w.AuthPath) != TreeDepth {
		return fmt.Errorf("%w: expected %d nodes, got %d", ErrWitnessDepth, TreeDepth, len(w.AuthPath))
	}
	if w.TreeSize > math.MaxUint32 {
		return fmt.Errorf("%w: tree size %d exceeds 32 bits", ErrWitnessPosition, w.TreeSize)
	}
	if pos := w.Position(); pos >= w.TreeSize {
		return fmt.Errorf("%w: position %d, tree size %d", ErrWitnessPosition, pos, w.TreeSize)
	}
	if w.RootFrom(leaf) != w.Root {
		return ErrWitnessRoot
	}
	return nil
}

// commitmentTree is the dense left-filled tree over a list of leaves.
type commitmentTree struct {
	leaves []Hash
}

func (t *commitmentTree) append(cm Hash) uint64 {
	t.leaves = append(t.leaves, cm)
	return uint64(len(t.leaves) - 1)
}

func (t *commitmentTree) size() uint64 { return uint64(len(t.leaves)) }

func (t *commitmentTree) root() Hash {
	root, _ := t.fold(-1)
	return root
}

func (t *commitmentTree) witness(position uint64) (*Witness, error) {
	if position >= t.size() {
		return nil, fmt.Errorf("%w: position %d, tree size %d", ErrWitnessPosition, position, t.size())
	}
	root, path := t.fold(int64(position))
	return &Witness{Root: root, TreeSize: t.size(), AuthPath: path}, nil
}

// fold hashes the tree level by level. When position is non-negative it also
// collects that leaf's auth path.
func (t *commitmentTree) fold(position int64) (Hash, []WitnessNode) {
	empty := emptyRoots()
	level := append([]Hash(nil), t.leaves...)
	var path []WitnessNode
	if position >= 0 {
		path = make([]WitnessNode, 0, TreeDepth)
	}
	pos := position
	for d := 0; d < TreeDepth; d++ {
		if pos >= 0 {
			sib := pos ^ 1
			node := WitnessNode{Side: Left, Sibling: empty[d]}
			if pos&1 == 1 {
				node.Side = Right
			}
			if sib < int64(len(level)) {
				node.Sibling = level[sib]
			}
			path = append(path, node)
			pos >>= 1
		}
		if len(level) == 0 {
			continue
		}
		next := make([]Hash, (len(level)+1)/2)
		for i := range next {
			left := level[2*i]
			right := empty[d]
			if 2*i+1 < len(level) {
				right = level[2*i+1]
			}
			next[i] = combineHash(left, right)
		}
		level = next
	}
	if len(level) == 0 {
		return empty[TreeDepth], path
	}
	return level[0], path
}
