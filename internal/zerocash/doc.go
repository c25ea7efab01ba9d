// Package zerocash is the reference shielded-note backend used by the wallet core.
//
// Overview:
//   - Spending keys, viewing keys and public addresses on the Jubjub curve embedded in BLS12-381
//   - 24-word mnemonic encoding of spending keys over the standard BIP-39 wordlists
//   - Plaintext notes, MiMC note commitments, nullifiers and encrypted merkle notes
//   - A depth-32 commitment tree with authentication path witnesses
//   - Proposed transactions posted with a Groth16 spend proof per input and a Schnorr binding signature
//   - An in-memory ledger that verifies and accepts posted transactions
//
// Security Model:
//   - MiMC over the BLS12-381 scalar field for commitments, merkle nodes and nullifiers
//   - Diffie-Hellman on Jubjub with ChaCha20-Poly1305 for note encryption
//   - Zero-knowledge proofs are generated and verified using gnark (Groth16, BLS12-381)
//   - All randomness is generated using crypto/rand
//
// Usage:
//   - GenerateKey, SaplingKeyFromHex and SaplingKeyFromWords build keys
//   - NewNote, NewMerkleNote and ReadMerkleNote cover the note lifecycle
//   - NewProposedTransaction with a Groth16Prover assembles and posts transactions
//   - NewLedger tracks commitments and nullifiers for tests and local tooling
//
// WARNING: This package is for research and educational purposes. Use with caution in production environments.
package zerocash
