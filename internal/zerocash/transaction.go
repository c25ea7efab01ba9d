// transaction.go - Proposed and posted shielded transactions.
//
// A proposed transaction collects spends (note + witness) and output notes. Posting checks
// ownership, witness consistency and per-asset balance, proves every spend, encrypts every
// output and signs the result with the spend authorizing key.
//
// Posted transaction wire format (little endian):
//
//	version u8 | spendCount u64 | outputCount u64 | fee u64 | expiration u32 | spenderKey [32]
//	spends:  root [32] | treeSize u32 | nullifier [32] | proofLen u32 | proof
//	outputs: merkle note [296]
//	signature [64]

package zerocash

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// TransactionVersion selects the posted wire format revision.
type TransactionVersion uint8

const (
	TransactionV1 TransactionVersion = 1
	TransactionV2 TransactionVersion = 2
)

func (v TransactionVersion) Valid() bool { return v == TransactionV1 || v == TransactionV2 }

const (
	txHeaderSize     = 1 + 8 + 8 + 8 + 4 + 32
	spendFixedSize   = HashSize + 4 + HashSize + 4
	tagSignatureHash = "Zerocash_TxSignatureHash"
)

// TransactionHash is the blake2b-256 digest of a posted transaction.
type TransactionHash [32]byte

func (h TransactionHash) Hex() string { return hex.EncodeToString(h[:]) }

type proposedSpend struct {
	note    *Note
	witness *Witness
}

// ProposedTransaction is a transaction under construction.
type ProposedTransaction struct {
	version    TransactionVersion
	spends     []proposedSpend
	outputs    []*Note
	expiration uint32
	prover     Prover
}

// NewProposedTransaction starts an empty transaction of the given version.
func NewProposedTransaction(version TransactionVersion, prover Prover) (*ProposedTransaction, error) {
	if !version.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	return &ProposedTransaction{version: version, prover: prover}, nil
}

func (t *ProposedTransaction) AddSpend(note *Note, witness *Witness) {
	t.spends = append(t.spends, proposedSpend{note: note, witness: witness})
}

func (t *ProposedTransaction) AddOutput(note *Note) {
	t.outputs = append(t.outputs, note)
}

func (t *ProposedTransaction) SetExpiration(sequence uint32) {
	t.expiration = sequence
}

// Post finalizes the transaction. When changeGoesTo is nil every asset must
// balance exactly, otherwise a change note is added per asset with a surplus.
func (t *ProposedTransaction) Post(key *SaplingKey, changeGoesTo *PublicAddress, fee uint64) (*PostedTransaction, error) {
	if t.prover == nil {
		return nil, errors.New("zerocash: no prover configured")
	}
	owner := key.PublicAddress()
	vk := key.ViewKey()

	// Step 1: every spend must be ours and anchored in its witness
	for i, sp := range t.spends {
		if !sp.note.owner.Equal(owner) {
			return nil, fmt.Errorf("spend %d: %w", i, ErrSpendNotOwned)
		}
		if sp.witness == nil {
			return nil, fmt.Errorf("spend %d: %w: missing witness", i, ErrWitnessDepth)
		}
		if err := sp.witness.Verify(sp.note.Commitment()); err != nil {
			return nil, fmt.Errorf("spend %d: %w", i, err)
		}
	}

	// Step 2: balance per asset, adding change
	outputs, err := t.balancedOutputs(owner, changeGoesTo, fee)
	if err != nil {
		return nil, err
	}

	posted := &PostedTransaction{
		version:    t.version,
		fee:        fee,
		expiration: t.expiration,
		spenderKey: encodePoint(&key.ak),
	}

	// Step 3: prove spends
	for i, sp := range t.spends {
		cm := sp.note.Commitment()
		position := sp.witness.Position()
		st := &SpendStatement{
			Root:       sp.witness.Root,
			Nullifier:  sp.note.Nullifier(vk, position),
			Commitment: cm,
			ViewKey:    vk,
			Witness:    sp.witness,
		}
		proof, err := t.prover.ProveSpend(st)
		if err != nil {
			return nil, fmt.Errorf("spend %d: %w", i, err)
		}
		posted.spends = append(posted.spends, SpendDescription{
			Root:      st.Root,
			TreeSize:  uint32(sp.witness.TreeSize),
			Nullifier: st.Nullifier,
			Proof:     proof,
		})
	}

	// Step 4: encrypt outputs
	for i, note := range outputs {
		mn, err := NewMerkleNote(note, key.ovk)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		posted.outputs = append(posted.outputs, mn)
	}

	// Step 5: binding signature
	sig, err := signMessage(key.ask, &key.ak, posted.signatureHash())
	if err != nil {
		return nil, fmt.Errorf("signing: %w", err)
	}
	posted.signature = sig
	return posted, nil
}

func (t *ProposedTransaction) balancedOutputs(sender PublicAddress, change *PublicAddress, fee uint64) ([]*Note, error) {
	order := []AssetID{NativeAssetID}
	seen := map[AssetID]bool{NativeAssetID: true}
	in := make(map[AssetID]*uint256.Int)
	out := make(map[AssetID]*uint256.Int)
	sum := func(m map[AssetID]*uint256.Int, asset AssetID, v uint64) {
		if !seen[asset] {
			seen[asset] = true
			order = append(order, asset)
		}
		if m[asset] == nil {
			m[asset] = new(uint256.Int)
		}
		m[asset].Add(m[asset], uint256.NewInt(v))
	}
	for _, sp := range t.spends {
		sum(in, sp.note.asset, sp.note.value)
	}
	for _, n := range t.outputs {
		sum(out, n.asset, n.value)
	}
	sum(out, NativeAssetID, fee)

	notes := append([]*Note(nil), t.outputs...)
	for _, asset := range order {
		have, want := orZero(in[asset]), orZero(out[asset])
		if have.Lt(want) {
			return nil, fmt.Errorf("%w: asset %s spends %s, outputs and fee %s", ErrValueImbalance, asset.Hex(), have.Dec(), want.Dec())
		}
		if !have.Gt(want) {
			continue
		}
		if change == nil {
			return nil, fmt.Errorf("%w: asset %s has %s left over and no change address", ErrValueImbalance, asset.Hex(), new(uint256.Int).Sub(have, want).Dec())
		}
		diff := new(uint256.Int).Sub(have, want)
		if !diff.IsUint64() {
			return nil, fmt.Errorf("%w: change for asset %s overflows", ErrValueImbalance, asset.Hex())
		}
		n, err := NewNote(*change, diff.Uint64(), Memo{}, asset, sender)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}

// SpendDescription is the public part of one spend.
type SpendDescription struct {
	Root      Hash
	TreeSize  uint32
	Nullifier Hash
	Proof     []byte
}

// PostedTransaction is a fully proven and signed transaction.
type PostedTransaction struct {
	version    TransactionVersion
	fee        uint64
	expiration uint32
	spenderKey [32]byte
	spends     []SpendDescription
	outputs    []*MerkleNote
	signature  [SignatureSize]byte
}

func (t *PostedTransaction) Version() TransactionVersion { return t.version }
func (t *PostedTransaction) Fee() uint64                 { return t.fee }
func (t *PostedTransaction) Expiration() uint32          { return t.expiration }
func (t *PostedTransaction) Spends() []SpendDescription  { return t.spends }
func (t *PostedTransaction) Outputs() []*MerkleNote      { return t.outputs }

func (t *PostedTransaction) Serialize() []byte {
	out := t.serializeUnsigned()
	return append(out, t.signature[:]...)
}

// Hash is blake2b-256 of the full serialized transaction.
func (t *PostedTransaction) Hash() TransactionHash {
	return TransactionHash(kdf("", t.Serialize()))
}

func (t *PostedTransaction) serializeUnsigned() []byte {
	size := txHeaderSize + len(t.outputs)*MerkleNoteSize + SignatureSize
	for _, sp := range t.spends {
		size += spendFixedSize + len(sp.Proof)
	}
	out := make([]byte, 0, size)
	out = append(out, byte(t.version))
	out = binary.LittleEndian.AppendUint64(out, uint64(len(t.spends)))
	out = binary.LittleEndian.AppendUint64(out, uint64(len(t.outputs)))
	out = binary.LittleEndian.AppendUint64(out, t.fee)
	out = binary.LittleEndian.AppendUint32(out, t.expiration)
	out = append(out, t.spenderKey[:]...)
	for _, sp := range t.spends {
		out = append(out, sp.Root[:]...)
		out = binary.LittleEndian.AppendUint32(out, sp.TreeSize)
		out = append(out, sp.Nullifier[:]...)
		out = binary.LittleEndian.AppendUint32(out, uint32(len(sp.Proof)))
		out = append(out, sp.Proof...)
	}
	for _, mn := range t.outputs {
		out = append(out, mn.Serialize()...)
	}
	return out
}

func (t *PostedTransaction) signatureHash() []byte {
	return kdf(tagSignatureHash, t.serializeUnsigned())
}

// VerifySignature checks the binding signature against the spender key.
func (t *PostedTransaction) VerifySignature() error {
	ak, err := decodePoint(t.spenderKey[:])
	if err != nil {
		return fmt.Errorf("%w: spender key: %v", ErrInvalidSignature, err)
	}
	return verifySignature(&ak, t.signatureHash(), t.signature)
}

// Verify checks the signature and every spend proof.
func (t *PostedTransaction) Verify(v Verifier) error {
	if err := t.VerifySignature(); err != nil {
		return err
	}
	for i, sp := range t.spends {
		if err := v.VerifySpend(sp.Root, sp.Nullifier, sp.Proof); err != nil {
			return fmt.Errorf("spend %d: %w", i, err)
		}
	}
	return nil
}

// ReadTransaction parses a posted transaction.
func ReadTransaction(b []byte) (*PostedTransaction, error) {
	r := &txReader{b: b}
	t := &PostedTransaction{}
	t.version = TransactionVersion(r.u8())
	spendCount := r.u64()
	outputCount := r.u64()
	t.fee = r.u64()
	t.expiration = r.u32()
	copy(t.spenderKey[:], r.next(32))
	if r.err != nil {
		return nil, r.err
	}
	if !t.version.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, t.version)
	}
	if spendCount > uint64(r.remaining()/spendFixedSize) || outputCount > uint64(r.remaining()/MerkleNoteSize) {
		return nil, fmt.Errorf("%w: counts exceed payload", ErrInvalidTransaction)
	}

	for i := uint64(0); i < spendCount; i++ {
		var sp SpendDescription
		copy(sp.Root[:], r.next(HashSize))
		sp.TreeSize = r.u32()
		copy(sp.Nullifier[:], r.next(HashSize))
		proofLen := r.u32()
		sp.Proof = append([]byte(nil), r.next(int(proofLen))...)
		if r.err != nil {
			return nil, r.err
		}
		if _, err := DecodeHash(sp.Root[:]); err != nil {
			return nil, fmt.Errorf("%w: spend %d root: %v", ErrInvalidTransaction, i, err)
		}
		if _, err := DecodeHash(sp.Nullifier[:]); err != nil {
			return nil, fmt.Errorf("%w: spend %d nullifier: %v", ErrInvalidTransaction, i, err)
		}
		t.spends = append(t.spends, sp)
	}
	for i := uint64(0); i < outputCount; i++ {
		raw := r.next(MerkleNoteSize)
		if r.err != nil {
			return nil, r.err
		}
		mn, err := ReadMerkleNote(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: output %d: %v", ErrInvalidTransaction, i, err)
		}
		t.outputs = append(t.outputs, mn)
	}
	copy(t.signature[:], r.next(SignatureSize))
	if r.err != nil {
		return nil, r.err
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidTransaction, r.remaining())
	}
	return t, nil
}

type txReader struct {
	b   []byte
	off int
	err error
}

func (r *txReader) remaining() int { return len(r.b) - r.off }

func (r *txReader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.remaining() < n {
		r.err = fmt.Errorf("%w: truncated at byte %d", ErrInvalidTransaction, r.off)
		return nil
	}
	out := r.b[r.off : r.off+n]
	r.off += n
	return out
}

func (r *txReader) u8() uint8 {
	if b := r.next(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *txReader) u32() uint32 {
	if b := r.next(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *txReader) u64() uint64 {
	if b := r.next(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}
