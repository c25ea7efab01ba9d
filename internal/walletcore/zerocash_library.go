// zerocash_library.go - Library implementation over the zerocash reference backend.

package walletcore

import (
	"encoding/hex"
	"fmt"

	"shieldcore/internal/zerocash"
)

// ZerocashLibrary adapts the reference zerocash backend to Library.
type ZerocashLibrary struct {
	prover zerocash.Prover
}

// NewZerocashLibrary returns a Library backed by package zerocash. The prover
// is only needed for posting transactions.
func NewZerocashLibrary(prover zerocash.Prover) *ZerocashLibrary {
	return &ZerocashLibrary{prover: prover}
}

var _ Library = (*ZerocashLibrary)(nil)

func (l *ZerocashLibrary) GenerateKey() Key {
	return zcKey{zerocash.GenerateKey()}
}

func (l *ZerocashLibrary) KeyFromHex(hexKey string) (Key, error) {
	k, err := zerocash.SaplingKeyFromHex(hexKey)
	if err != nil {
		return nil, err
	}
	return zcKey{k}, nil
}

func (l *ZerocashLibrary) KeyToWords(key Key, lang Language) (string, error) {
	k, err := saplingKey(key)
	if err != nil {
		return "", err
	}
	zl, err := zerocashLanguage(lang)
	if err != nil {
		return "", err
	}
	return k.ToWords(zl)
}

func (l *ZerocashLibrary) WordsToKey(phrase string, lang Language) (Key, error) {
	zl, err := zerocashLanguage(lang)
	if err != nil {
		return nil, err
	}
	k, err := zerocash.SaplingKeyFromWords(phrase, zl)
	if err != nil {
		return nil, err
	}
	return zcKey{k}, nil
}

func (l *ZerocashLibrary) PublicAddressFromBytes(b []byte) (PublicAddress, error) {
	a, err := zerocash.PublicAddressFromBytes(b)
	if err != nil {
		return nil, err
	}
	return zcAddress{a}, nil
}

func (l *ZerocashLibrary) IncomingViewKeyFromHex(hexKey string) (IncomingViewKey, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", zerocash.ErrInvalidKey, err)
	}
	k, err := zerocash.IncomingViewKeyFromBytes(raw)
	if err != nil {
		return nil, err
	}
	return zcIncomingViewKey{k}, nil
}

func (l *ZerocashLibrary) OutgoingViewKeyFromHex(hexKey string) (OutgoingViewKey, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", zerocash.ErrInvalidKey, err)
	}
	k, err := zerocash.OutgoingViewKeyFromBytes(raw)
	if err != nil {
		return nil, err
	}
	return zcOutgoingViewKey{k}, nil
}

func (l *ZerocashLibrary) ViewKeyFromHex(hexKey string) (ViewKey, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", zerocash.ErrInvalidKey, err)
	}
	k, err := zerocash.ViewKeyFromBytes(raw)
	if err != nil {
		return nil, err
	}
	return zcViewKey{k}, nil
}

func (l *ZerocashLibrary) DecodeMerkleNote(b []byte) (MerkleNote, error) {
	m, err := zerocash.ReadMerkleNote(b)
	if err != nil {
		return nil, err
	}
	return zcMerkleNote{m}, nil
}

func (l *ZerocashLibrary) DecodeNote(b []byte) (Note, error) {
	n, err := zerocash.ReadNote(b)
	if err != nil {
		return nil, err
	}
	return zcNote{n}, nil
}

func (l *ZerocashLibrary) NewNote(owner PublicAddress, value uint64, memo [MemoSize]byte, assetID [AssetIDSize]byte, sender PublicAddress) (Note, error) {
	o, err := zerocashAddress(owner)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	s, err := zerocashAddress(sender)
	if err != nil {
		return nil, fmt.Errorf("sender: %w", err)
	}
	n, err := zerocash.NewNote(o, value, zerocash.Memo(memo), zerocash.AssetID(assetID), s)
	if err != nil {
		return nil, err
	}
	return zcNote{n}, nil
}

func (l *ZerocashLibrary) DecodeHash(b []byte) (Hash, error) {
	h, err := zerocash.DecodeHash(b)
	return Hash(h), err
}

func (l *ZerocashLibrary) NewTransaction(version TransactionVersion) (ProposedTransaction, error) {
	tx, err := zerocash.NewProposedTransaction(zerocash.TransactionVersion(version), l.prover)
	if err != nil {
		return nil, err
	}
	return &zcProposedTransaction{tx: tx}, nil
}

func (l *ZerocashLibrary) DecodeTransaction(b []byte) (PostedTransaction, error) {
	tx, err := zerocash.ReadTransaction(b)
	if err != nil {
		return nil, err
	}
	return zcPostedTransaction{tx}, nil
}

func zerocashLanguage(lang Language) (zerocash.Language, error) {
	switch lang {
	case LanguageEnglish:
		return zerocash.English, nil
	case LanguageChineseSimplified:
		return zerocash.ChineseSimplified, nil
	case LanguageChineseTraditional:
		return zerocash.ChineseTraditional, nil
	case LanguageFrench:
		return zerocash.French, nil
	case LanguageItalian:
		return zerocash.Italian, nil
	case LanguageJapanese:
		return zerocash.Japanese, nil
	case LanguageKorean:
		return zerocash.Korean, nil
	case LanguageSpanish:
		return zerocash.Spanish, nil
	default:
		return 0, fmt.Errorf("%w: %d", zerocash.ErrUnsupportedLang, lang)
	}
}

// Values from other Library implementations are accepted through their byte encodings.

func saplingKey(k Key) (*zerocash.SaplingKey, error) {
	if z, ok := k.(zcKey); ok {
		return z.k, nil
	}
	var sk [zerocash.SpendingKeySize]byte
	if len(k.SpendingKey()) != len(sk) {
		return nil, zerocash.ErrInvalidKey
	}
	copy(sk[:], k.SpendingKey())
	return zerocash.NewSaplingKey(sk)
}

func zerocashAddress(a PublicAddress) (zerocash.PublicAddress, error) {
	if z, ok := a.(zcAddress); ok {
		return z.a, nil
	}
	return zerocash.PublicAddressFromBytes(a.Bytes())
}

func zerocashNote(n Note) (*zerocash.Note, error) {
	if z, ok := n.(zcNote); ok {
		return z.n, nil
	}
	b, err := n.Serialize()
	if err != nil {
		return nil, err
	}
	return zerocash.ReadNote(b)
}

type zcKey struct{ k *zerocash.SaplingKey }

func (z zcKey) SpendingKey() []byte {
	b := z.k.SpendingKey()
	return b[:]
}

func (z zcKey) ViewKey() []byte {
	b := z.k.ViewKey().Bytes()
	return b[:]
}

func (z zcKey) IncomingViewKey() []byte {
	b := z.k.IncomingViewKey().Bytes()
	return b[:]
}

func (z zcKey) OutgoingViewKey() []byte {
	b := z.k.OutgoingViewKey()
	return b[:]
}

func (z zcKey) PublicAddress() []byte {
	b := z.k.PublicAddress().Bytes()
	return b[:]
}

func (z zcKey) ProofAuthorizingKey() []byte {
	b := z.k.ProofAuthorizingKey()
	return b[:]
}

type zcAddress struct{ a zerocash.PublicAddress }

func (z zcAddress) Bytes() []byte {
	b := z.a.Bytes()
	return b[:]
}

type zcIncomingViewKey struct{ k zerocash.IncomingViewKey }

func (z zcIncomingViewKey) PublicAddress() PublicAddress { return zcAddress{z.k.PublicAddress()} }

type zcOutgoingViewKey struct{ k zerocash.OutgoingViewKey }

func (z zcOutgoingViewKey) Bytes() []byte { return z.k[:] }

type zcViewKey struct{ k zerocash.ViewKey }

func (z zcViewKey) Bytes() []byte {
	b := z.k.Bytes()
	return b[:]
}

type zcMerkleNote struct{ m *zerocash.MerkleNote }

func (z zcMerkleNote) DecryptForOwner(ivk IncomingViewKey) (Note, error) {
	k, ok := ivk.(zcIncomingViewKey)
	if !ok {
		return nil, fmt.Errorf("%w: foreign incoming view key", zerocash.ErrInvalidKey)
	}
	n, err := z.m.DecryptForOwner(k.k)
	if err != nil {
		return nil, err
	}
	return zcNote{n}, nil
}

func (z zcMerkleNote) DecryptForSpender(ovk OutgoingViewKey) (Note, error) {
	k, err := zerocash.OutgoingViewKeyFromBytes(ovk.Bytes())
	if err != nil {
		return nil, err
	}
	n, err := z.m.DecryptForSpender(k)
	if err != nil {
		return nil, err
	}
	return zcNote{n}, nil
}

type zcNote struct{ n *zerocash.Note }

func (z zcNote) Serialize() ([]byte, error) { return z.n.Serialize(), nil }

func (z zcNote) Nullifier(vk ViewKey, position uint64) (Hash, error) {
	k, err := zerocash.ViewKeyFromBytes(vk.Bytes())
	if err != nil {
		return Hash{}, err
	}
	return Hash(z.n.Nullifier(k, position)), nil
}

type zcProposedTransaction struct {
	tx *zerocash.ProposedTransaction
}

func (z *zcProposedTransaction) AddSpend(note Note, witness Witness) error {
	n, err := zerocashNote(note)
	if err != nil {
		return err
	}
	w := &zerocash.Witness{
		Root:     zerocash.Hash(witness.RootHash),
		TreeSize: witness.TreeSize,
		AuthPath: make([]zerocash.WitnessNode, len(witness.AuthPath)),
	}
	for i, node := range witness.AuthPath {
		side := zerocash.Left
		if node.Side == SideRight {
			side = zerocash.Right
		}
		w.AuthPath[i] = zerocash.WitnessNode{Side: side, Sibling: zerocash.Hash(node.Sibling)}
	}
	z.tx.AddSpend(n, w)
	return nil
}

func (z *zcProposedTransaction) AddOutput(note Note) error {
	n, err := zerocashNote(note)
	if err != nil {
		return err
	}
	z.tx.AddOutput(n)
	return nil
}

func (z *zcProposedTransaction) SetExpiration(sequence uint32) { z.tx.SetExpiration(sequence) }

func (z *zcProposedTransaction) Post(key Key, changeGoesTo PublicAddress, fee uint64) (PostedTransaction, error) {
	k, err := saplingKey(key)
	if err != nil {
		return nil, err
	}
	var change *zerocash.PublicAddress
	if changeGoesTo != nil {
		a, err := zerocashAddress(changeGoesTo)
		if err != nil {
			return nil, fmt.Errorf("change address: %w", err)
		}
		change = &a
	}
	posted, err := z.tx.Post(k, change, fee)
	if err != nil {
		return nil, err
	}
	return zcPostedTransaction{posted}, nil
}

type zcPostedTransaction struct{ tx *zerocash.PostedTransaction }

func (z zcPostedTransaction) Serialize() ([]byte, error) { return z.tx.Serialize(), nil }

func (z zcPostedTransaction) Hash() []byte {
	h := z.tx.Hash()
	return h[:]
}

func (z zcPostedTransaction) Fee() uint64        { return z.tx.Fee() }
func (z zcPostedTransaction) Expiration() uint32 { return z.tx.Expiration() }
func (z zcPostedTransaction) SpendCount() int    { return len(z.tx.Spends()) }
func (z zcPostedTransaction) OutputCount() int   { return len(z.tx.Outputs()) }
