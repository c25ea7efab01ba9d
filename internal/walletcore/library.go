// library.go - The cryptography library boundary the core is written against.

package walletcore

// Sizes shared with every Library implementation.
const (
	HashSize    = 32
	MemoSize    = 32
	AssetIDSize = 32
)

// Hash is a 32-byte tree node, commitment or nullifier.
type Hash [HashSize]byte

// Language is a mnemonic wordlist understood by the Library.
type Language uint8

const (
	LanguageEnglish Language = iota + 1
	LanguageChineseSimplified
	LanguageChineseTraditional
	LanguageFrench
	LanguageItalian
	LanguageJapanese
	LanguageKorean
	LanguageSpanish
)

// Library is the note and transaction cryptography the core delegates to.
type Library interface {
	GenerateKey() Key
	KeyFromHex(hexKey string) (Key, error)
	KeyToWords(key Key, lang Language) (string, error)
	WordsToKey(phrase string, lang Language) (Key, error)

	PublicAddressFromBytes(b []byte) (PublicAddress, error)
	IncomingViewKeyFromHex(hexKey string) (IncomingViewKey, error)
	OutgoingViewKeyFromHex(hexKey string) (OutgoingViewKey, error)
	ViewKeyFromHex(hexKey string) (ViewKey, error)

	DecodeMerkleNote(b []byte) (MerkleNote, error)
	DecodeNote(b []byte) (Note, error)
	NewNote(owner PublicAddress, value uint64, memo [MemoSize]byte, assetID [AssetIDSize]byte, sender PublicAddress) (Note, error)
	DecodeHash(b []byte) (Hash, error)

	NewTransaction(version TransactionVersion) (ProposedTransaction, error)
	DecodeTransaction(b []byte) (PostedTransaction, error)
}

// Key is a spending key together with everything derived from it.
type Key interface {
	SpendingKey() []byte
	ViewKey() []byte
	IncomingViewKey() []byte
	OutgoingViewKey() []byte
	PublicAddress() []byte
	ProofAuthorizingKey() []byte
}

// PublicAddress is a payment address in its canonical byte form.
type PublicAddress interface {
	Bytes() []byte
}

type IncomingViewKey interface {
	PublicAddress() PublicAddress
}

type OutgoingViewKey interface {
	Bytes() []byte
}

type ViewKey interface {
	Bytes() []byte
}

// MerkleNote is an encrypted note as found in transaction outputs.
type MerkleNote interface {
	DecryptForOwner(ivk IncomingViewKey) (Note, error)
	DecryptForSpender(ovk OutgoingViewKey) (Note, error)
}

// Note is a plaintext note. Nullifier needs the owner's view key and the
// note's position in the commitment tree.
type Note interface {
	Serialize() ([]byte, error)
	Nullifier(vk ViewKey, position uint64) (Hash, error)
}

// ProposedTransaction accumulates spends and outputs until Post.
type ProposedTransaction interface {
	AddSpend(note Note, witness Witness) error
	AddOutput(note Note) error
	SetExpiration(sequence uint32)
	// Post proves and signs. A nil changeGoesTo requires exact balance.
	Post(key Key, changeGoesTo PublicAddress, fee uint64) (PostedTransaction, error)
}

// PostedTransaction is a proven and signed transaction.
type PostedTransaction interface {
	Serialize() ([]byte, error)
	Hash() []byte
	Fee() uint64
	Expiration() uint32
	SpendCount() int
	OutputCount() int
}
