package walletcore

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNotePadsMemo(t *testing.T) {
	owner, sender := newFakeKey(1), newFakeKey(2)
	core, _ := newFakeCore()

	raw, err := core.CreateNote(NoteParams{
		Owner:   owner.PublicAddress(),
		Value:   42,
		Memo:    []byte("hi"),
		AssetID: bytes.Repeat([]byte{9}, AssetIDSize),
		Sender:  sender.PublicAddress(),
	})
	require.NoError(t, err)

	n, err := decodeFakeNote(raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), n.value)
	assert.Equal(t, append([]byte("hi"), make([]byte, MemoSize-2)...), n.memo[:])
	assert.Equal(t, owner.PublicAddress(), n.owner)
	assert.Equal(t, bytes.Repeat([]byte{9}, AssetIDSize), n.asset[:])
	assert.Equal(t, sender.PublicAddress(), n.sender)
	assert.Equal(t, raw, n.bytes())
}

func TestFakeNoteEncodingRoundTrip(t *testing.T) {
	owner, sender := newFakeKey(1), newFakeKey(3)
	raw := fakeNoteBytes(owner, sender, 101)
	require.Len(t, raw, fakeNoteSize)

	n, err := decodeFakeNote(raw)
	require.NoError(t, err)
	assert.Equal(t, owner.PublicAddress(), n.owner)
	assert.Equal(t, uint64(101), n.value)
	assert.Equal(t, sender.PublicAddress(), n.sender)
	assert.Equal(t, raw, n.bytes())
}

func TestCreateNoteMemoPolicy(t *testing.T) {
	owner := newFakeKey(1)
	params := NoteParams{
		Owner:   owner.PublicAddress(),
		Memo:    []byte(strings.Repeat("m", MemoSize+5)),
		AssetID: make([]byte, AssetIDSize),
		Sender:  owner.PublicAddress(),
	}

	truncating, _ := newFakeCore()
	raw, err := truncating.CreateNote(params)
	require.NoError(t, err)
	n, err := decodeFakeNote(raw)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("m", MemoSize), string(n.memo[:]))

	rejecting, _ := newFakeCore(WithMemoPolicy(MemoReject))
	_, err = rejecting.CreateNote(params)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestCreateNoteRejectsBadFields(t *testing.T) {
	owner := newFakeKey(1)
	core, _ := newFakeCore()
	good := NoteParams{Owner: owner.PublicAddress(), AssetID: make([]byte, AssetIDSize), Sender: owner.PublicAddress()}

	badOwner := good
	badOwner.Owner = []byte{1}
	_, err := core.CreateNote(badOwner)
	assert.ErrorIs(t, err, ErrDecode)

	badSender := good
	badSender.Sender = nil
	_, err = core.CreateNote(badSender)
	assert.ErrorIs(t, err, ErrDecode)

	badAsset := good
	badAsset.AssetID = []byte{1, 2, 3}
	_, err = core.CreateNote(badAsset)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestNullifier(t *testing.T) {
	owner := newFakeKey(1)
	core, _ := newFakeCore()
	noteHex := hex.EncodeToString(fakeNoteBytes(owner, owner, 5))
	vk := hex.EncodeToString(owner.ViewKey())

	a, err := core.Nullifier(noteHex, 3, vk)
	require.NoError(t, err)
	b, err := core.Nullifier(noteHex, 4, vk)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 2*HashSize)

	_, err = core.Nullifier("zz", 3, vk)
	assert.ErrorIs(t, err, ErrDecode)
	_, err = core.Nullifier(noteHex, 3, "zz")
	assert.ErrorIs(t, err, ErrInvalidKeyEncoding)
}
