package zerocash

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/twistededwards"
	"golang.org/x/crypto/blake2b"
)

const SignatureSize = 64

const tagChallenge = "Zerocash_SignatureChallenge"

// signMessage produces a Schnorr signature R || s over Jubjub.
func signMessage(secret *big.Int, public *twistededwards.PointAffine, msg []byte) ([SignatureSize]byte, error) {
	var sig [SignatureSize]byte
	k, err := randomScalar()
	if err != nil {
		return sig, err
	}
	r := mulBase(k)
	c := challenge(&r, public, msg)

	order := subgroupOrder()
	s := new(big.Int).Mul(c, secret)
	s.Add(s, k).Mod(s, order)

	rb := encodePoint(&r)
	sb := scalarBytes(s)
	copy(sig[:32], rb[:])
	copy(sig[32:], sb[:])
	return sig, nil
}

// verifySignature checks s*G == R + c*A.
func verifySignature(public *twistededwards.PointAffine, msg []byte, sig [SignatureSize]byte) error {
	r, err := decodePoint(sig[:32])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	s := new(big.Int).SetBytes(sig[32:])
	if s.Cmp(subgroupOrder()) >= 0 {
		return fmt.Errorf("%w: scalar out of range", ErrInvalidSignature)
	}
	c := challenge(&r, public, msg)

	lhs := mulBase(s)
	ca := mulPoint(public, c)
	var rhs twistededwards.PointAffine
	rhs.Add(&r, &ca)
	if !lhs.Equal(&rhs) {
		return ErrInvalidSignature
	}
	return nil
}

func challenge(r, public *twistededwards.PointAffine, msg []byte) *big.Int {
	h, _ := blake2b.New512([]byte(tagChallenge))
	rb := encodePoint(r)
	pb := encodePoint(public)
	h.Write(rb[:])
	h.Write(pb[:])
	h.Write(msg)
	return scalarFromWide(h.Sum(nil))
}
