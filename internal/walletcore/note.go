// note.go - Note creation and nullifier derivation.

package walletcore

import "encoding/hex"

// NoteParams describes a note to create.
type NoteParams struct {
	Owner   []byte
	Value   uint64
	Memo    []byte
	AssetID []byte
	Sender  []byte
}

// CreateNote builds a note with fresh randomness and returns its serialization.
func (c *Core) CreateNote(p NoteParams) ([]byte, error) {
	owner, err := c.lib.PublicAddressFromBytes(p.Owner)
	if err != nil {
		return nil, newError(KindDecode, err, "owner")
	}
	sender, err := c.lib.PublicAddressFromBytes(p.Sender)
	if err != nil {
		return nil, newError(KindDecode, err, "sender")
	}
	if len(p.AssetID) != AssetIDSize {
		return nil, newError(KindDecode, nil, "asset id must be %d bytes, got %d", AssetIDSize, len(p.AssetID))
	}
	memo, err := c.memo(p.Memo)
	if err != nil {
		return nil, err
	}
	var asset [AssetIDSize]byte
	copy(asset[:], p.AssetID)

	note, err := c.lib.NewNote(owner, p.Value, memo, asset, sender)
	if err != nil {
		return nil, newError(KindDecode, err, "note")
	}
	b, err := note.Serialize()
	if err != nil {
		return nil, newError(KindDecode, err, "serialize note")
	}
	return b, nil
}

// memo zero pads to MemoSize and applies the memo policy to longer input.
func (c *Core) memo(b []byte) ([MemoSize]byte, error) {
	var out [MemoSize]byte
	if len(b) > MemoSize {
		if c.memoPolicy == MemoReject {
			return out, newError(KindDecode, nil, "memo is %d bytes, limit %d", len(b), MemoSize)
		}
		c.log.Debug().Int("length", len(b)).Msg("memo truncated")
	}
	copy(out[:], b)
	return out, nil
}

// Nullifier computes the hex nullifier of a note at a tree position.
func (c *Core) Nullifier(noteHex string, position uint64, viewKeyHex string) (string, error) {
	raw, err := hex.DecodeString(noteHex)
	if err != nil {
		return "", newError(KindDecode, err, "note hex")
	}
	note, err := c.lib.DecodeNote(raw)
	if err != nil {
		return "", newError(KindDecode, err, "note")
	}
	vk, err := c.lib.ViewKeyFromHex(viewKeyHex)
	if err != nil {
		return "", newError(KindInvalidKeyEncoding, err, "view key")
	}
	nf, err := note.Nullifier(vk, position)
	if err != nil {
		return "", newError(KindDecode, err, "nullifier at position %d", position)
	}
	return hex.EncodeToString(nf[:]), nil
}
