package zerocash

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// SpendCircuit proves knowledge of a commitment inside the tree at Root and
// that Nullifier was derived from it with the spender's nullifier key.
type SpendCircuit struct {
	// Public inputs
	Root      frontend.Variable `gnark:",public"`
	Nullifier frontend.Variable `gnark:",public"`

	// Private inputs
	Commitment frontend.Variable
	NkX        frontend.Variable
	NkY        frontend.Variable
	Siblings   [TreeDepth]frontend.Variable
	Sides      [TreeDepth]frontend.Variable
}

func (c *SpendCircuit) Define(api frontend.API) error {
	hasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}

	// Step 1: fold the commitment up to the root, rebuilding the leaf position from the sides
	cur := c.Commitment
	position := frontend.Variable(0)
	for i := 0; i < TreeDepth; i++ {
		api.AssertIsBoolean(c.Sides[i])
		left := api.Select(c.Sides[i], c.Siblings[i], cur)
		right := api.Select(c.Sides[i], cur, c.Siblings[i])
		hasher.Reset()
		hasher.Write(left, right)
		cur = hasher.Sum()
		position = api.Add(position, api.Mul(c.Sides[i], new(big.Int).Lsh(big.NewInt(1), uint(i))))
	}
	api.AssertIsEqual(c.Root, cur)

	// Step 2: nullifier = MiMC(nk.X, nk.Y, cm, position)
	hasher.Reset()
	hasher.Write(c.NkX, c.NkY, c.Commitment, position)
	api.AssertIsEqual(c.Nullifier, hasher.Sum())
	return nil
}
