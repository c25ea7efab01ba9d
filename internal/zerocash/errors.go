package zerocash

import "errors"

// Sentinel errors returned (wrapped) by the backend. Callers match with errors.Is.
var (
	ErrInvalidKey         = errors.New("zerocash: invalid key")
	ErrInvalidAddress     = errors.New("zerocash: invalid public address")
	ErrInvalidHash        = errors.New("zerocash: invalid hash")
	ErrInvalidNote        = errors.New("zerocash: invalid note")
	ErrInvalidMerkleNote  = errors.New("zerocash: invalid merkle note")
	ErrNoteMismatch       = errors.New("zerocash: note not decryptable with this key")
	ErrUnsupportedLang    = errors.New("zerocash: unsupported mnemonic language")
	ErrMnemonicWordCount  = errors.New("zerocash: mnemonic must have 24 words")
	ErrMnemonicWord       = errors.New("zerocash: word not in wordlist")
	ErrMnemonicChecksum   = errors.New("zerocash: mnemonic checksum mismatch")
	ErrUnsupportedVersion = errors.New("zerocash: unsupported transaction version")
	ErrWitnessDepth       = errors.New("zerocash: witness has wrong depth")
	ErrWitnessPosition    = errors.New("zerocash: witness position outside tree")
	ErrWitnessRoot        = errors.New("zerocash: witness does not hash to its root")
	ErrSpendNotOwned      = errors.New("zerocash: spent note is not owned by the spending key")
	ErrValueImbalance     = errors.New("zerocash: transaction value does not balance")
	ErrInvalidTransaction = errors.New("zerocash: malformed transaction")
	ErrInvalidSignature   = errors.New("zerocash: invalid transaction signature")
	ErrInvalidProof       = errors.New("zerocash: invalid spend proof")
	ErrUnknownRoot        = errors.New("zerocash: spend anchors to an unknown root")
	ErrDoubleSpend        = errors.New("zerocash: nullifier already spent")
)
