// prover.go - Groth16 proving and verification of spend statements.

package zerocash

import (
	"bytes"
	"fmt"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
)

// SpendStatement is everything needed to prove one spend.
type SpendStatement struct {
	Root       Hash
	Nullifier  Hash
	Commitment Hash
	ViewKey    ViewKey
	Witness    *Witness
}

// Prover produces spend proofs.
type Prover interface {
	ProveSpend(st *SpendStatement) ([]byte, error)
}

// Verifier checks spend proofs against their public inputs.
type Verifier interface {
	VerifySpend(root, nullifier Hash, proof []byte) error
}

// Groth16Prover holds the compiled spend circuit and its keys.
type Groth16Prover struct {
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
	vk  groth16.VerifyingKey
}

// CompileSpendCircuit compiles SpendCircuit to R1CS over the BLS12-381 scalar field.
func CompileSpendCircuit() (constraint.ConstraintSystem, error) {
	var circuit SpendCircuit
	ccs, err := frontend.Compile(ecc.BLS12_381.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		return nil, fmt.Errorf("circuit compilation failed: %w", err)
	}
	return ccs, nil
}

// NewGroth16Prover compiles the circuit and runs an in-memory setup.
func NewGroth16Prover() (*Groth16Prover, error) {
	ccs, err := CompileSpendCircuit()
	if err != nil {
		return nil, err
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("groth16 setup: %w", err)
	}
	return &Groth16Prover{ccs: ccs, pk: pk, vk: vk}, nil
}

// LoadGroth16Prover loads keys from disk, generating and saving them when either file is missing.
func LoadGroth16Prover(pkPath, vkPath string) (*Groth16Prover, error) {
	ccs, err := CompileSpendCircuit()
	if err != nil {
		return nil, err
	}
	pk, vk, err := SetupOrLoadKeys(ccs, pkPath, vkPath)
	if err != nil {
		return nil, err
	}
	return &Groth16Prover{ccs: ccs, pk: pk, vk: vk}, nil
}

// Constraints reports the circuit size.
func (p *Groth16Prover) Constraints() int { return p.ccs.GetNbConstraints() }

func (p *Groth16Prover) ProveSpend(st *SpendStatement) ([]byte, error) {
	if st.Witness == nil || len(st.Witness.AuthPath) != TreeDepth {
		return nil, ErrWitnessDepth
	}
	assignment := SpendCircuit{
		Root:       st.Root.BigInt(),
		Nullifier:  st.Nullifier.BigInt(),
		Commitment: st.Commitment.BigInt(),
		NkX:        hashFromElement(&st.ViewKey.nk.X).BigInt(),
		NkY:        hashFromElement(&st.ViewKey.nk.Y).BigInt(),
	}
	for i, node := range st.Witness.AuthPath {
		assignment.Siblings[i] = node.Sibling.BigInt()
		assignment.Sides[i] = int(node.Side)
	}
	w, err := frontend.NewWitness(&assignment, ecc.BLS12_381.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("witness creation failed: %w", err)
	}
	proof, err := groth16.Prove(p.ccs, p.pk, w)
	if err != nil {
		return nil, fmt.Errorf("proof generation failed: %w", err)
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("proof serialization failed: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *Groth16Prover) VerifySpend(root, nullifier Hash, proofBytes []byte) error {
	proof := groth16.NewProof(ecc.BLS12_381)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	public := SpendCircuit{
		Root:      root.BigInt(),
		Nullifier: nullifier.BigInt(),
	}
	w, err := frontend.NewWitness(&public, ecc.BLS12_381.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("public witness creation failed: %w", err)
	}
	if err := groth16.Verify(proof, p.vk, w); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	return nil
}

// SaveProvingKey saves a Groth16 proving key to disk.
func SaveProvingKey(path string, pk groth16.ProvingKey) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = pk.WriteTo(f)
	return err
}

// SaveVerifyingKey saves a Groth16 verifying key to disk.
func SaveVerifyingKey(path string, vk groth16.VerifyingKey) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = vk.WriteTo(f)
	return err
}

func LoadProvingKey(path string) (groth16.ProvingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pk := groth16.NewProvingKey(ecc.BLS12_381)
	_, err = pk.ReadFrom(f)
	return pk, err
}

func LoadVerifyingKey(path string) (groth16.VerifyingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vk := groth16.NewVerifyingKey(ecc.BLS12_381)
	_, err = vk.ReadFrom(f)
	return vk, err
}

// SetupOrLoadKeys loads both keys if present, otherwise runs setup and writes them.
func SetupOrLoadKeys(ccs constraint.ConstraintSystem, pkPath, vkPath string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	pk, pkErr := LoadProvingKey(pkPath)
	vk, vkErr := LoadVerifyingKey(vkPath)
	if pkErr == nil && vkErr == nil {
		return pk, vk, nil
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, err
	}
	if err := SaveProvingKey(pkPath, pk); err != nil {
		return nil, nil, err
	}
	if err := SaveVerifyingKey(vkPath, vk); err != nil {
		return nil, nil, err
	}
	return pk, vk, nil
}
