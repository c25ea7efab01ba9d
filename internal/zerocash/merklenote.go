// merklenote.go - Encrypted notes as they appear in transaction outputs.
//
// Layout: commitment(32) || ephemeral public key(32) || encrypted note(152) || note encryption keys(80).
// The note body is sealed to the owner with a Diffie-Hellman key on Jubjub. The owner address and
// ephemeral secret are sealed again under the sender's outgoing view key so the sender can recover it.

package zerocash

import (
	"bytes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/twistededwards"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	encryptedPlaintextSize = HashSize + 8 + MemoSize + AssetIDSize + PublicAddressSize
	EncryptedNoteSize      = encryptedPlaintextSize + chacha20poly1305.Overhead
	NoteEncryptionKeySize  = PublicAddressSize + 32 + chacha20poly1305.Overhead
	MerkleNoteSize         = HashSize + 32 + EncryptedNoteSize + NoteEncryptionKeySize
)

const (
	tagNoteKey = "Zerocash_NoteEncryptionKey"
	tagOutKey  = "Zerocash_OutgoingCipherKey"
)

// MerkleNote is the on-chain form of an output note.
type MerkleNote struct {
	commitment    Hash
	ephemeralKey  twistededwards.PointAffine
	encryptedNote [EncryptedNoteSize]byte
	encryptedKeys [NoteEncryptionKeySize]byte
}

// NewMerkleNote encrypts note to its owner and to ovk.
func NewMerkleNote(note *Note, ovk OutgoingViewKey) (*MerkleNote, error) {
	esk, err := randomScalar()
	if err != nil {
		return nil, fmt.Errorf("ephemeral key: %w", err)
	}
	m := &MerkleNote{
		commitment:   note.Commitment(),
		ephemeralKey: mulBase(esk),
	}
	epk := encodePoint(&m.ephemeralKey)

	// Step 1: seal the note body to the owner
	shared := mulPoint(&note.owner.point, esk)
	if err := m.sealNote(note, &shared, epk); err != nil {
		return nil, err
	}

	// Step 2: seal owner || esk for the sender
	owner := note.owner.Bytes()
	eskBytes := scalarBytes(esk)
	plain := append(owner[:], eskBytes[:]...)
	aead, err := chacha20poly1305.New(kdf(tagOutKey, ovk[:], m.commitment[:], epk[:]))
	if err != nil {
		return nil, err
	}
	copy(m.encryptedKeys[:], aead.Seal(nil, zeroNonce(), plain, nil))
	return m, nil
}

func (m *MerkleNote) sealNote(note *Note, shared *twistededwards.PointAffine, epk [32]byte) error {
	plain := make([]byte, 0, encryptedPlaintextSize)
	r := note.randomness.Bytes()
	plain = append(plain, r[:]...)
	plain = binary.LittleEndian.AppendUint64(plain, note.value)
	plain = append(plain, note.memo[:]...)
	plain = append(plain, note.asset[:]...)
	sender := note.sender.Bytes()
	plain = append(plain, sender[:]...)

	aead, err := noteCipher(shared, epk)
	if err != nil {
		return err
	}
	copy(m.encryptedNote[:], aead.Seal(nil, zeroNonce(), plain, m.commitment[:]))
	return nil
}

// ReadMerkleNote parses the MerkleNoteSize encoding.
func ReadMerkleNote(b []byte) (*MerkleNote, error) {
	if len(b) != MerkleNoteSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidMerkleNote, MerkleNoteSize, len(b))
	}
	cm, err := DecodeHash(b[:HashSize])
	if err != nil {
		return nil, fmt.Errorf("%w: commitment: %v", ErrInvalidMerkleNote, err)
	}
	epk, err := decodePoint(b[HashSize : HashSize+32])
	if err != nil {
		return nil, fmt.Errorf("%w: ephemeral key: %v", ErrInvalidMerkleNote, err)
	}
	m := &MerkleNote{commitment: cm, ephemeralKey: epk}
	off := HashSize + 32
	copy(m.encryptedNote[:], b[off:off+EncryptedNoteSize])
	off += EncryptedNoteSize
	copy(m.encryptedKeys[:], b[off:])
	return m, nil
}

func (m *MerkleNote) Serialize() []byte {
	var buf bytes.Buffer
	buf.Grow(MerkleNoteSize)
	buf.Write(m.commitment[:])
	epk := encodePoint(&m.ephemeralKey)
	buf.Write(epk[:])
	buf.Write(m.encryptedNote[:])
	buf.Write(m.encryptedKeys[:])
	return buf.Bytes()
}

func (m *MerkleNote) Commitment() Hash { return m.commitment }

// DecryptForOwner opens the note with the recipient's incoming view key.
func (m *MerkleNote) DecryptForOwner(ivk IncomingViewKey) (*Note, error) {
	if ivk.scalar == nil {
		return nil, fmt.Errorf("%w: empty incoming view key", ErrInvalidKey)
	}
	shared := mulPoint(&m.ephemeralKey, ivk.scalar)
	return m.openNote(ivk.PublicAddress(), &shared)
}

// DecryptForSpender opens the note with the sender's outgoing view key.
func (m *MerkleNote) DecryptForSpender(ovk OutgoingViewKey) (*Note, error) {
	epk := encodePoint(&m.ephemeralKey)
	aead, err := chacha20poly1305.New(kdf(tagOutKey, ovk[:], m.commitment[:], epk[:]))
	if err != nil {
		return nil, err
	}
	plain, err := aead.Open(nil, zeroNonce(), m.encryptedKeys[:], nil)
	if err != nil {
		return nil, ErrNoteMismatch
	}
	owner, err := PublicAddressFromBytes(plain[:PublicAddressSize])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMerkleNote, err)
	}
	esk := new(big.Int).SetBytes(plain[PublicAddressSize:])
	if check := mulBase(esk); !check.Equal(&m.ephemeralKey) {
		return nil, fmt.Errorf("%w: ephemeral secret does not match", ErrInvalidMerkleNote)
	}
	shared := mulPoint(&owner.point, esk)
	return m.openNote(owner, &shared)
}

func (m *MerkleNote) openNote(owner PublicAddress, shared *twistededwards.PointAffine) (*Note, error) {
	epk := encodePoint(&m.ephemeralKey)
	aead, err := noteCipher(shared, epk)
	if err != nil {
		return nil, err
	}
	plain, err := aead.Open(nil, zeroNonce(), m.encryptedNote[:], m.commitment[:])
	if err != nil {
		return nil, ErrNoteMismatch
	}

	n := &Note{owner: owner}
	off := 0
	if err := n.randomness.SetBytesCanonical(plain[off : off+HashSize]); err != nil {
		return nil, fmt.Errorf("%w: randomness: %v", ErrInvalidMerkleNote, err)
	}
	off += HashSize
	n.value = binary.LittleEndian.Uint64(plain[off : off+8])
	off += 8
	copy(n.memo[:], plain[off:off+MemoSize])
	off += MemoSize
	copy(n.asset[:], plain[off:off+AssetIDSize])
	off += AssetIDSize
	sender, err := PublicAddressFromBytes(plain[off : off+PublicAddressSize])
	if err != nil {
		return nil, fmt.Errorf("%w: sender: %v", ErrInvalidMerkleNote, err)
	}
	n.sender = sender

	if n.Commitment() != m.commitment {
		return nil, fmt.Errorf("%w: commitment mismatch", ErrInvalidMerkleNote)
	}
	return n, nil
}

func noteCipher(shared *twistededwards.PointAffine, epk [32]byte) (cipher.AEAD, error) {
	s := encodePoint(shared)
	return chacha20poly1305.New(kdf(tagNoteKey, s[:], epk[:]))
}

// Every note key is single use, derived from a fresh ephemeral secret.
func zeroNonce() []byte {
	return make([]byte, chacha20poly1305.NonceSize)
}
