package walletcore

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// fakeLibrary is a deterministic Library with readable encodings. It does no
// cryptography: every derived value is a tagged SHA-256 of its parent.
type fakeLibrary struct {
	mu  sync.Mutex
	txs []*fakeProposed
}

var errFakeMismatch = errors.New("fake: not for this key")

const (
	fakeValueOffset  = 32
	fakeMemoOffset   = fakeValueOffset + 8
	fakeAssetOffset  = fakeMemoOffset + MemoSize
	fakeSenderOffset = fakeAssetOffset + AssetIDSize
	fakeNoteSize     = fakeSenderOffset + 32
	// Notes with this value refuse to serialize.
	fakeUnserializableValue = 666
)

func tagged(tag string, b []byte) []byte {
	sum := sha256.Sum256(append([]byte(tag), b...))
	return sum[:]
}

type fakeKey struct{ sk []byte }

func (k fakeKey) SpendingKey() []byte         { return k.sk }
func (k fakeKey) ViewKey() []byte             { return tagged("vk", k.sk) }
func (k fakeKey) IncomingViewKey() []byte     { return tagged("ivk", k.sk) }
func (k fakeKey) OutgoingViewKey() []byte     { return tagged("ovk", k.sk) }
func (k fakeKey) PublicAddress() []byte       { return tagged("addr", k.IncomingViewKey()) }
func (k fakeKey) ProofAuthorizingKey() []byte { return tagged("pak", k.sk) }

type fakeBytes []byte

func (b fakeBytes) Bytes() []byte { return b }

type fakeIVK []byte

func (k fakeIVK) PublicAddress() PublicAddress { return fakeBytes(tagged("addr", k)) }

func newFakeKey(seed byte) fakeKey {
	return fakeKey{sk: bytes.Repeat([]byte{seed}, 32)}
}

func decode32(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("fake: want 32 bytes, got %d", len(b))
	}
	return b, nil
}

func (l *fakeLibrary) GenerateKey() Key { return newFakeKey(7) }

func (l *fakeLibrary) KeyFromHex(s string) (Key, error) {
	b, err := decode32(s)
	if err != nil {
		return nil, err
	}
	return fakeKey{sk: b}, nil
}

func (l *fakeLibrary) KeyToWords(key Key, lang Language) (string, error) {
	if lang < LanguageEnglish || lang > LanguageSpanish {
		return "", fmt.Errorf("fake: language %d", lang)
	}
	return fmt.Sprintf("lang%d %x", lang, key.SpendingKey()), nil
}

func (l *fakeLibrary) WordsToKey(phrase string, lang Language) (Key, error) {
	fields := strings.Fields(phrase)
	if len(fields) != 2 || fields[0] != fmt.Sprintf("lang%d", lang) {
		return nil, errors.New("fake: bad phrase")
	}
	return l.KeyFromHex(fields[1])
}

func (l *fakeLibrary) PublicAddressFromBytes(b []byte) (PublicAddress, error) {
	if len(b) != 32 {
		return nil, errors.New("fake: address must be 32 bytes")
	}
	return fakeBytes(b), nil
}

func (l *fakeLibrary) IncomingViewKeyFromHex(s string) (IncomingViewKey, error) {
	b, err := decode32(s)
	if err != nil {
		return nil, err
	}
	return fakeIVK(b), nil
}

func (l *fakeLibrary) OutgoingViewKeyFromHex(s string) (OutgoingViewKey, error) {
	b, err := decode32(s)
	if err != nil {
		return nil, err
	}
	return fakeBytes(b), nil
}

func (l *fakeLibrary) ViewKeyFromHex(s string) (ViewKey, error) {
	b, err := decode32(s)
	if err != nil {
		return nil, err
	}
	return fakeBytes(b), nil
}

// Merkle note encoding: 'M' || recipient address || sender ovk || note.
type fakeMerkleNote struct {
	recipient []byte
	ovk       []byte
	note      []byte
}

func encodeFakeMerkleNote(recipient, sender fakeKey, note []byte) string {
	raw := append([]byte{'M'}, recipient.PublicAddress()...)
	raw = append(raw, sender.OutgoingViewKey()...)
	raw = append(raw, note...)
	return hex.EncodeToString(raw)
}

func (l *fakeLibrary) DecodeMerkleNote(b []byte) (MerkleNote, error) {
	if len(b) < 65 || b[0] != 'M' {
		return nil, errors.New("fake: malformed merkle note")
	}
	return fakeMerkleNote{recipient: b[1:33], ovk: b[33:65], note: b[65:]}, nil
}

func (m fakeMerkleNote) open(match bool) (Note, error) {
	if !match {
		return nil, errFakeMismatch
	}
	if string(m.note) == "PANIC" {
		panic("fake: library exploded")
	}
	return decodeFakeNote(m.note)
}

func (m fakeMerkleNote) DecryptForOwner(ivk IncomingViewKey) (Note, error) {
	return m.open(bytes.Equal(ivk.PublicAddress().Bytes(), m.recipient))
}

func (m fakeMerkleNote) DecryptForSpender(ovk OutgoingViewKey) (Note, error) {
	return m.open(bytes.Equal(ovk.Bytes(), m.ovk))
}

// Note encoding: owner || value u64 LE || memo || asset || sender.
type fakeNote struct {
	owner  []byte
	value  uint64
	memo   [MemoSize]byte
	asset  [AssetIDSize]byte
	sender []byte
}

func decodeFakeNote(b []byte) (*fakeNote, error) {
	if len(b) != fakeNoteSize {
		return nil, fmt.Errorf("fake: note must be %d bytes, got %d", fakeNoteSize, len(b))
	}
	n := &fakeNote{
		owner:  b[:fakeValueOffset],
		value:  binary.LittleEndian.Uint64(b[fakeValueOffset:fakeMemoOffset]),
		sender: b[fakeSenderOffset:],
	}
	copy(n.memo[:], b[fakeMemoOffset:fakeAssetOffset])
	copy(n.asset[:], b[fakeAssetOffset:fakeSenderOffset])
	return n, nil
}

func (n *fakeNote) bytes() []byte {
	out := append([]byte(nil), n.owner...)
	out = binary.LittleEndian.AppendUint64(out, n.value)
	out = append(out, n.memo[:]...)
	out = append(out, n.asset[:]...)
	return append(out, n.sender...)
}

func (n *fakeNote) Serialize() ([]byte, error) {
	if n.value == fakeUnserializableValue {
		return nil, errors.New("fake: refusing to serialize")
	}
	return n.bytes(), nil
}

func (n *fakeNote) Nullifier(vk ViewKey, position uint64) (Hash, error) {
	buf := append(append([]byte(nil), vk.Bytes()...), n.bytes()...)
	buf = binary.LittleEndian.AppendUint64(buf, position)
	return Hash(sha256.Sum256(buf)), nil
}

func fakeNoteBytes(owner, sender fakeKey, value uint64) []byte {
	n := &fakeNote{owner: owner.PublicAddress(), value: value, sender: sender.PublicAddress()}
	return n.bytes()
}

func (l *fakeLibrary) DecodeNote(b []byte) (Note, error) { return decodeFakeNote(b) }

func (l *fakeLibrary) NewNote(owner PublicAddress, value uint64, memo [MemoSize]byte, asset [AssetIDSize]byte, sender PublicAddress) (Note, error) {
	return &fakeNote{owner: owner.Bytes(), value: value, memo: memo, asset: asset, sender: sender.Bytes()}, nil
}

func (l *fakeLibrary) DecodeHash(b []byte) (Hash, error) {
	if len(b) != HashSize {
		return Hash{}, fmt.Errorf("fake: hash must be %d bytes", HashSize)
	}
	return Hash(b), nil
}

func (l *fakeLibrary) NewTransaction(v TransactionVersion) (ProposedTransaction, error) {
	tx := &fakeProposed{version: v}
	l.mu.Lock()
	l.txs = append(l.txs, tx)
	l.mu.Unlock()
	return tx, nil
}

func (l *fakeLibrary) lastTx() *fakeProposed {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.txs) == 0 {
		return nil
	}
	return l.txs[len(l.txs)-1]
}

type fakeProposed struct {
	version    TransactionVersion
	calls      []string
	spends     []*fakeNote
	witnesses  []Witness
	outputs    []*fakeNote
	expiration uint32
	posted     bool
}

func (t *fakeProposed) AddSpend(note Note, w Witness) error {
	n := note.(*fakeNote)
	t.calls = append(t.calls, fmt.Sprintf("spend:%d", n.value))
	t.spends = append(t.spends, n)
	t.witnesses = append(t.witnesses, w)
	return nil
}

func (t *fakeProposed) AddOutput(note Note) error {
	n := note.(*fakeNote)
	t.calls = append(t.calls, fmt.Sprintf("output:%d", n.value))
	t.outputs = append(t.outputs, n)
	return nil
}

func (t *fakeProposed) SetExpiration(seq uint32) {
	t.calls = append(t.calls, fmt.Sprintf("expiration:%d", seq))
	t.expiration = seq
}

func (t *fakeProposed) Post(key Key, change PublicAddress, fee uint64) (PostedTransaction, error) {
	t.calls = append(t.calls, fmt.Sprintf("post:%d", fee))
	if change != nil {
		return nil, errors.New("fake: unexpected change address")
	}
	var in, out uint64
	for i, n := range t.spends {
		if !bytes.Equal(n.owner, key.PublicAddress()) {
			return nil, fmt.Errorf("fake: spend %d not owned", i)
		}
		w := t.witnesses[i]
		if len(w.AuthPath) != 32 {
			return nil, fmt.Errorf("fake: witness depth %d", len(w.AuthPath))
		}
		var pos uint64
		for d, node := range w.AuthPath {
			if node.Side == SideRight {
				pos |= 1 << uint(d)
			}
		}
		if pos >= w.TreeSize {
			return nil, fmt.Errorf("fake: position %d outside tree of %d", pos, w.TreeSize)
		}
		in += n.value
	}
	for _, n := range t.outputs {
		out += n.value
	}
	if in != out+fee {
		return nil, fmt.Errorf("fake: imbalance in=%d out=%d fee=%d", in, out, fee)
	}
	t.posted = true
	return &fakePosted{
		version:    t.version,
		fee:        fee,
		expiration: t.expiration,
		spends:     uint32(len(t.spends)),
		outputs:    uint32(len(t.outputs)),
	}, nil
}

// Posted encoding: 'T' || version || fee u64 || expiration u32 || spends u32 || outputs u32.
type fakePosted struct {
	version    TransactionVersion
	fee        uint64
	expiration uint32
	spends     uint32
	outputs    uint32
}

func (p *fakePosted) Serialize() ([]byte, error) {
	out := []byte{'T', byte(p.version)}
	out = binary.LittleEndian.AppendUint64(out, p.fee)
	out = binary.LittleEndian.AppendUint32(out, p.expiration)
	out = binary.LittleEndian.AppendUint32(out, p.spends)
	return binary.LittleEndian.AppendUint32(out, p.outputs), nil
}

func (p *fakePosted) Hash() []byte {
	b, _ := p.Serialize()
	return tagged("tx", b)
}

func (p *fakePosted) Fee() uint64        { return p.fee }
func (p *fakePosted) Expiration() uint32 { return p.expiration }
func (p *fakePosted) SpendCount() int    { return int(p.spends) }
func (p *fakePosted) OutputCount() int   { return int(p.outputs) }

func (l *fakeLibrary) DecodeTransaction(b []byte) (PostedTransaction, error) {
	if len(b) != 22 || b[0] != 'T' {
		return nil, errors.New("fake: malformed transaction")
	}
	return &fakePosted{
		version:    TransactionVersion(b[1]),
		fee:        binary.LittleEndian.Uint64(b[2:10]),
		expiration: binary.LittleEndian.Uint32(b[10:14]),
		spends:     binary.LittleEndian.Uint32(b[14:18]),
		outputs:    binary.LittleEndian.Uint32(b[18:22]),
	}, nil
}

// wireWitness builds a depth-32 witness for position in a tree of treeSize leaves.
func wireWitness(position, treeSize uint64) WireWitness {
	w := WireWitness{RootHash: bytes.Repeat([]byte{0xaa}, 32), TreeSize: treeSize}
	for d := 0; d < 32; d++ {
		side := "Left"
		if position&(1<<uint(d)) != 0 {
			side = "Right"
		}
		w.AuthPath = append(w.AuthPath, WireWitnessNode{Side: side, HashOfSibling: bytes.Repeat([]byte{byte(d)}, 32)})
	}
	return w
}

func newFakeCore(opts ...Option) (*Core, *fakeLibrary) {
	lib := &fakeLibrary{}
	return New(lib, opts...), lib
}
