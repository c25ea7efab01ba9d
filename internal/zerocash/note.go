// note.go - Plaintext notes, commitments and nullifiers.

package zerocash

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

const (
	MemoSize    = 32
	AssetIDSize = 32
	// NoteSize is owner || asset || value || randomness || memo || sender.
	NoteSize = PublicAddressSize + AssetIDSize + 8 + HashSize + MemoSize + PublicAddressSize
)

// AssetID identifies the asset a note carries.
type AssetID [AssetIDSize]byte

// NativeAssetID is the asset fees are paid in.
var NativeAssetID = AssetID{
	81, 243, 58, 47, 20, 249, 39, 53, 229, 98, 220, 101, 138, 86, 57, 39,
	157, 220, 163, 213, 7, 154, 109, 18, 66, 178, 165, 136, 169, 203, 244, 76,
}

func (a AssetID) Hex() string { return hex.EncodeToString(a[:]) }

// Memo is a fixed 32-byte note memo.
type Memo [MemoSize]byte

// Note is the plaintext of a shielded note.
type Note struct {
	owner      PublicAddress
	asset      AssetID
	value      uint64
	randomness fr.Element
	memo       Memo
	sender     PublicAddress
}

// NewNote builds a note with fresh commitment randomness.
func NewNote(owner PublicAddress, value uint64, memo Memo, asset AssetID, sender PublicAddress) (*Note, error) {
	r, err := randomElement()
	if err != nil {
		return nil, fmt.Errorf("note randomness: %w", err)
	}
	return &Note{
		owner:      owner,
		asset:      asset,
		value:      value,
		randomness: r,
		memo:       memo,
		sender:     sender,
	}, nil
}

// ReadNote parses the NoteSize plaintext encoding.
func ReadNote(b []byte) (*Note, error) {
	if len(b) != NoteSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidNote, NoteSize, len(b))
	}
	n := &Note{}
	off := 0
	owner, err := PublicAddressFromBytes(b[off : off+PublicAddressSize])
	if err != nil {
		return nil, fmt.Errorf("%w: owner: %v", ErrInvalidNote, err)
	}
	n.owner = owner
	off += PublicAddressSize

	copy(n.asset[:], b[off:off+AssetIDSize])
	off += AssetIDSize

	n.value = binary.LittleEndian.Uint64(b[off : off+8])
	off += 8

	if err := n.randomness.SetBytesCanonical(b[off : off+HashSize]); err != nil {
		return nil, fmt.Errorf("%w: randomness: %v", ErrInvalidNote, err)
	}
	off += HashSize

	copy(n.memo[:], b[off:off+MemoSize])
	off += MemoSize

	sender, err := PublicAddressFromBytes(b[off : off+PublicAddressSize])
	if err != nil {
		return nil, fmt.Errorf("%w: sender: %v", ErrInvalidNote, err)
	}
	n.sender = sender
	return n, nil
}

// Serialize returns the NoteSize plaintext encoding.
func (n *Note) Serialize() []byte {
	out := make([]byte, 0, NoteSize)
	owner := n.owner.Bytes()
	out = append(out, owner[:]...)
	out = append(out, n.asset[:]...)
	out = binary.LittleEndian.AppendUint64(out, n.value)
	r := n.randomness.Bytes()
	out = append(out, r[:]...)
	out = append(out, n.memo[:]...)
	sender := n.sender.Bytes()
	out = append(out, sender[:]...)
	return out
}

func (n *Note) Owner() PublicAddress  { return n.owner }
func (n *Note) AssetID() AssetID      { return n.asset }
func (n *Note) Value() uint64         { return n.value }
func (n *Note) Memo() Memo            { return n.memo }
func (n *Note) Sender() PublicAddress { return n.sender }

// Commitment is MiMC(owner.X, owner.Y, value, asset, randomness). The asset id
// is reduced into the field.
func (n *Note) Commitment() Hash {
	return hashElements(
		n.owner.point.X,
		n.owner.point.Y,
		uint64Element(n.value),
		bytesElement(n.asset[:]),
		n.randomness,
	)
}

// Nullifier is MiMC(nk.X, nk.Y, cm, position). It is unique per note and
// tree position and cannot be linked to the commitment without nk.
func (n *Note) Nullifier(vk ViewKey, position uint64) Hash {
	return computeNullifier(vk.nk.X, vk.nk.Y, n.Commitment(), position)
}

func computeNullifier(nkX, nkY fr.Element, cm Hash, position uint64) Hash {
	return hashElements(nkX, nkY, cm.element(), uint64Element(position))
}
