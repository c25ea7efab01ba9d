// crypto.go - Curve, field and hash primitives shared by the zerocash backend.
//
// Keys and addresses live on Jubjub (the twisted Edwards curve over the BLS12-381 scalar field).
// Commitments, merkle nodes and nullifiers are MiMC hashes over the same field so that the
// spend circuit can recompute them.

package zerocash

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	mimcNative "github.com/consensys/gnark-crypto/ecc/bls12-381/fr/mimc"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/twistededwards"
	"golang.org/x/crypto/blake2b"
)

// HashSize is the byte length of a field element encoding.
const HashSize = fr.Bytes

// A compressed Jubjub point is its y coordinate plus a sign bit.
const pointSize = fr.Bytes

// Hash is a canonical big-endian encoding of a BLS12-381 scalar field element.
type Hash [HashSize]byte

// DecodeHash parses a 32-byte canonical field element.
func DecodeHash(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidHash, HashSize, len(b))
	}
	var e fr.Element
	if err := e.SetBytesCanonical(b); err != nil {
		return h, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	copy(h[:], b)
	return h, nil
}

func hashFromElement(e *fr.Element) Hash {
	return Hash(e.Bytes())
}

func (h Hash) element() fr.Element {
	var e fr.Element
	e.SetBytes(h[:])
	return e
}

// BigInt returns the hash as an integer, suitable for circuit assignments.
func (h Hash) BigInt() *big.Int {
	return new(big.Int).SetBytes(h[:])
}

// hashElements computes MiMC over the given elements, one block per element.
// The in-circuit hasher absorbs the same blocks in the same order.
func hashElements(elems ...fr.Element) Hash {
	h := mimcNative.NewMiMC()
	for i := range elems {
		b := elems[i].Bytes()
		h.Write(b[:])
	}
	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return hashFromElement(&out)
}

// subgroupOrder is the prime order of the Jubjub subgroup generated by the base point.
func subgroupOrder() *big.Int {
	params := twistededwards.GetEdwardsCurve()
	return new(big.Int).Set(&params.Order)
}

func basePoint() twistededwards.PointAffine {
	return twistededwards.GetEdwardsCurve().Base
}

// mulBase returns s*G.
func mulBase(s *big.Int) twistededwards.PointAffine {
	g := basePoint()
	var p twistededwards.PointAffine
	p.ScalarMultiplication(&g, s)
	return p
}

func mulPoint(p *twistededwards.PointAffine, s *big.Int) twistededwards.PointAffine {
	var out twistededwards.PointAffine
	out.ScalarMultiplication(p, s)
	return out
}

// decodePoint parses a compressed point and checks it is a non-identity
// member of the prime order subgroup.
func decodePoint(b []byte) (twistededwards.PointAffine, error) {
	var p twistededwards.PointAffine
	if len(b) != pointSize {
		return p, fmt.Errorf("expected %d bytes, got %d", pointSize, len(b))
	}
	if _, err := p.SetBytes(b); err != nil {
		return p, err
	}
	if !p.IsOnCurve() {
		return p, fmt.Errorf("point is not on the curve")
	}
	if p.IsZero() {
		return p, fmt.Errorf("point is the identity")
	}
	check := mulPoint(&p, subgroupOrder())
	if !check.IsZero() {
		return p, fmt.Errorf("point is not in the prime order subgroup")
	}
	return p, nil
}

func encodePoint(p *twistededwards.PointAffine) [32]byte {
	return p.Bytes()
}

// scalarFromWide reduces a wide hash output into a subgroup scalar.
func scalarFromWide(b []byte) *big.Int {
	s := new(big.Int).SetBytes(b)
	return s.Mod(s, subgroupOrder())
}

func scalarBytes(s *big.Int) [32]byte {
	var out [32]byte
	s.FillBytes(out[:])
	return out
}

// randomScalar returns a uniformly random non-zero subgroup scalar.
func randomScalar() (*big.Int, error) {
	order := subgroupOrder()
	for {
		s, err := rand.Int(rand.Reader, order)
		if err != nil {
			return nil, err
		}
		if s.Sign() != 0 {
			return s, nil
		}
	}
}

// randomElement returns a uniformly random field element.
func randomElement() (fr.Element, error) {
	var e fr.Element
	_, err := e.SetRandom()
	return e, err
}

// expandSeed implements the PRF used for key derivation: blake2b-512 keyed
// by a domain tag over seed || t.
func expandSeed(tag string, seed []byte, t byte) []byte {
	h, _ := blake2b.New512([]byte(tag))
	h.Write(seed)
	h.Write([]byte{t})
	return h.Sum(nil)
}

// kdf derives a 32-byte symmetric key from the concatenated inputs.
func kdf(tag string, parts ...[]byte) []byte {
	h, _ := blake2b.New256([]byte(tag))
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

func uint64Element(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func bytesElement(b []byte) fr.Element {
	var e fr.Element
	e.SetBytes(b)
	return e
}
