// Package walletcore is the orchestration layer of a shielded wallet.
//
// It derives key material, encodes spending keys as mnemonics, decrypts batches of
// encrypted notes in parallel and assembles transactions from previously computed
// spend and output components. All cryptography is delegated to a Library; the
// reference implementation is NewZerocashLibrary.
//
// Every operation is a method on Core. A Core holds no mutable state and is safe
// for concurrent use.
package walletcore
