// keys.go - Spending key hierarchy.
//
// A 32-byte spending key expands into a spend authorizing scalar (ask), a nullifier deriving
// scalar (nsk) and an outgoing view key (ovk). The view key is ak || nk, the incoming view key is
// a scalar derived from the view key, and the public address is ivk*G.

package zerocash

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/twistededwards"
	"golang.org/x/crypto/blake2b"
)

const (
	SpendingKeySize         = 32
	ViewKeySize             = 64
	IncomingViewKeySize     = 32
	OutgoingViewKeySize     = 32
	PublicAddressSize       = 32
	ProofAuthorizingKeySize = 32
)

const (
	tagExpandSeed = "Zerocash_ExpandSeed"
	tagIVK        = "Zerocash_IncomingViewKey"
)

// SaplingKey is a fully expanded spending key.
type SaplingKey struct {
	spendingKey [SpendingKeySize]byte
	ask         *big.Int
	nsk         *big.Int
	ovk         OutgoingViewKey
	ak          twistededwards.PointAffine
	nk          twistededwards.PointAffine
	ivk         IncomingViewKey
}

// GenerateKey returns a fresh random spending key.
func GenerateKey() *SaplingKey {
	for {
		var sk [SpendingKeySize]byte
		if _, err := rand.Read(sk[:]); err != nil {
			panic(fmt.Sprintf("zerocash: system randomness unavailable: %v", err))
		}
		key, err := NewSaplingKey(sk)
		if err == nil {
			return key
		}
	}
}

// NewSaplingKey expands a raw spending key.
func NewSaplingKey(sk [SpendingKeySize]byte) (*SaplingKey, error) {
	ask := scalarFromWide(expandSeed(tagExpandSeed, sk[:], 0))
	nsk := scalarFromWide(expandSeed(tagExpandSeed, sk[:], 1))
	if ask.Sign() == 0 || nsk.Sign() == 0 {
		return nil, fmt.Errorf("%w: spending key expands to a zero scalar", ErrInvalidKey)
	}
	key := &SaplingKey{
		spendingKey: sk,
		ask:         ask,
		nsk:         nsk,
		ak:          mulBase(ask),
		nk:          mulBase(nsk),
	}
	copy(key.ovk[:], expandSeed(tagExpandSeed, sk[:], 2))

	vk := key.ViewKey()
	ivk, err := vk.incomingViewKey()
	if err != nil {
		return nil, err
	}
	key.ivk = ivk
	return key, nil
}

// SaplingKeyFromHex parses a 64-character hex spending key.
func SaplingKeyFromHex(s string) (*SaplingKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(raw) != SpendingKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKey, SpendingKeySize, len(raw))
	}
	var sk [SpendingKeySize]byte
	copy(sk[:], raw)
	return NewSaplingKey(sk)
}

func (k *SaplingKey) SpendingKey() [SpendingKeySize]byte { return k.spendingKey }

func (k *SaplingKey) HexSpendingKey() string { return hex.EncodeToString(k.spendingKey[:]) }

func (k *SaplingKey) ViewKey() ViewKey { return ViewKey{ak: k.ak, nk: k.nk} }

func (k *SaplingKey) IncomingViewKey() IncomingViewKey { return k.ivk }

func (k *SaplingKey) OutgoingViewKey() OutgoingViewKey { return k.ovk }

func (k *SaplingKey) PublicAddress() PublicAddress { return k.ivk.PublicAddress() }

// ProofAuthorizingKey is nsk, the secret that lets a delegate prove spends
// without being able to sign them.
func (k *SaplingKey) ProofAuthorizingKey() [ProofAuthorizingKeySize]byte {
	return scalarBytes(k.nsk)
}

// ViewKey grants full read access to a key's notes: ak || nk.
type ViewKey struct {
	ak twistededwards.PointAffine
	nk twistededwards.PointAffine
}

// ViewKeyFromBytes parses a 64-byte view key.
func ViewKeyFromBytes(b []byte) (ViewKey, error) {
	var vk ViewKey
	if len(b) != ViewKeySize {
		return vk, fmt.Errorf("%w: view key must be %d bytes, got %d", ErrInvalidKey, ViewKeySize, len(b))
	}
	ak, err := decodePoint(b[:32])
	if err != nil {
		return vk, fmt.Errorf("%w: authorizing key: %v", ErrInvalidKey, err)
	}
	nk, err := decodePoint(b[32:])
	if err != nil {
		return vk, fmt.Errorf("%w: nullifier key: %v", ErrInvalidKey, err)
	}
	return ViewKey{ak: ak, nk: nk}, nil
}

func (v ViewKey) Bytes() [ViewKeySize]byte {
	var out [ViewKeySize]byte
	ak := encodePoint(&v.ak)
	nk := encodePoint(&v.nk)
	copy(out[:32], ak[:])
	copy(out[32:], nk[:])
	return out
}

// NullifierKey returns nk.
func (v ViewKey) NullifierKey() twistededwards.PointAffine { return v.nk }

func (v ViewKey) incomingViewKey() (IncomingViewKey, error) {
	b := v.Bytes()
	digest := blake2b.Sum512(append([]byte(tagIVK), b[:]...))
	s := scalarFromWide(digest[:])
	if s.Sign() == 0 {
		return IncomingViewKey{}, fmt.Errorf("%w: incoming view key is zero", ErrInvalidKey)
	}
	return IncomingViewKey{scalar: s}, nil
}

// IncomingViewKey decrypts notes sent to the matching public address.
type IncomingViewKey struct {
	scalar *big.Int
}

// IncomingViewKeyFromBytes parses a 32-byte big-endian scalar.
func IncomingViewKeyFromBytes(b []byte) (IncomingViewKey, error) {
	if len(b) != IncomingViewKeySize {
		return IncomingViewKey{}, fmt.Errorf("%w: incoming view key must be %d bytes, got %d", ErrInvalidKey, IncomingViewKeySize, len(b))
	}
	s := new(big.Int).SetBytes(b)
	if s.Sign() == 0 || s.Cmp(subgroupOrder()) >= 0 {
		return IncomingViewKey{}, fmt.Errorf("%w: incoming view key out of range", ErrInvalidKey)
	}
	return IncomingViewKey{scalar: s}, nil
}

func (k IncomingViewKey) Bytes() [IncomingViewKeySize]byte {
	if k.scalar == nil {
		return [IncomingViewKeySize]byte{}
	}
	return scalarBytes(k.scalar)
}

func (k IncomingViewKey) PublicAddress() PublicAddress {
	return PublicAddress{point: mulBase(k.scalar)}
}

// OutgoingViewKey lets the sender recover notes it created.
type OutgoingViewKey [OutgoingViewKeySize]byte

func OutgoingViewKeyFromBytes(b []byte) (OutgoingViewKey, error) {
	var k OutgoingViewKey
	if len(b) != OutgoingViewKeySize {
		return k, fmt.Errorf("%w: outgoing view key must be %d bytes, got %d", ErrInvalidKey, OutgoingViewKeySize, len(b))
	}
	copy(k[:], b)
	return k, nil
}

// PublicAddress is a compressed Jubjub point.
type PublicAddress struct {
	point twistededwards.PointAffine
}

// PublicAddressFromBytes validates and parses a 32-byte address.
func PublicAddressFromBytes(b []byte) (PublicAddress, error) {
	p, err := decodePoint(b)
	if err != nil {
		return PublicAddress{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return PublicAddress{point: p}, nil
}

func (a PublicAddress) Bytes() [PublicAddressSize]byte { return encodePoint(&a.point) }

func (a PublicAddress) Hex() string {
	b := a.Bytes()
	return hex.EncodeToString(b[:])
}

func (a PublicAddress) Equal(other PublicAddress) bool { return a.point.Equal(&other.point) }
