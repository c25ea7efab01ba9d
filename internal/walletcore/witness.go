// witness.go - Rebuilding merkle witnesses from their wire form.

package walletcore

import "fmt"

// Side says whether the running hash is the left or the right child at a level.
type Side uint8

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideRight {
		return "Right"
	}
	return "Left"
}

// ParseSide accepts exactly "Left" or "Right".
func ParseSide(s string) (Side, error) {
	switch s {
	case "Left":
		return SideLeft, nil
	case "Right":
		return SideRight, nil
	default:
		return 0, fmt.Errorf("unknown side %q", s)
	}
}

// WitnessNode is one auth path level, leaf first.
type WitnessNode struct {
	Side    Side
	Sibling Hash
}

// Witness is a commitment tree inclusion proof in Library form.
type Witness struct {
	RootHash Hash
	TreeSize uint64
	AuthPath []WitnessNode
}

// WireWitnessNode is one auth path level as received from callers.
type WireWitnessNode struct {
	Side          string
	HashOfSibling []byte
}

// WireWitness is the flat witness record callers send with each spend.
type WireWitness struct {
	RootHash []byte
	TreeSize uint64
	AuthPath []WireWitnessNode
}

// ReconstructWitness converts a wire witness, node by node and in order.
// Root and tree size are copied as given; consistency is checked at posting.
func (c *Core) ReconstructWitness(w WireWitness) (Witness, error) {
	if len(w.RootHash) != HashSize {
		return Witness{}, newError(KindDecode, nil, "root hash must be %d bytes, got %d", HashSize, len(w.RootHash))
	}
	out := Witness{
		TreeSize: w.TreeSize,
		AuthPath: make([]WitnessNode, 0, len(w.AuthPath)),
	}
	copy(out.RootHash[:], w.RootHash)

	for i, node := range w.AuthPath {
		side, err := ParseSide(node.Side)
		if err != nil {
			return Witness{}, &Error{Kind: KindInvalidWitnessSide, Item: "node", Index: i, Err: err}
		}
		sibling, err := c.lib.DecodeHash(node.HashOfSibling)
		if err != nil {
			return Witness{}, &Error{Kind: KindDecode, Item: "node", Index: i, Msg: "sibling hash", Err: err}
		}
		out.AuthPath = append(out.AuthPath, WitnessNode{Side: side, Sibling: sibling})
	}
	return out, nil
}
