package walletcore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesSentinelByKind(t *testing.T) {
	err := newError(KindDecode, errors.New("boom"), "note")
	assert.ErrorIs(t, err, ErrDecode)
	assert.NotErrorIs(t, err, ErrInvalidKeyEncoding)

	wrapped := fmt.Errorf("outer: %w", err)
	assert.ErrorIs(t, wrapped, ErrDecode)
	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindDecode, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestErrorMessage(t *testing.T) {
	inner := &Error{Kind: KindInvalidWitnessSide, Item: "node", Index: 3, Err: errors.New(`unknown side "Up"`)}
	outer := atItem(KindDecode, "spend", 1, inner)

	assert.Equal(t, KindInvalidWitnessSide, outer.Kind)
	assert.Equal(t, `InvalidWitnessSide: spend 1: node 3: unknown side "Up"`, outer.Error())
	assert.ErrorIs(t, outer, ErrInvalidWitnessSide)
}

func TestKindStrings(t *testing.T) {
	want := map[Kind]string{
		KindInvalidKeyEncoding:            "InvalidKeyEncoding",
		KindInvalidLanguageCode:           "InvalidLanguageCode",
		KindMnemonicEncoding:              "MnemonicEncodingError",
		KindMnemonicDecoding:              "MnemonicDecodingError",
		KindInvalidWitnessSide:            "InvalidWitnessSide",
		KindDecode:                        "DecodeError",
		KindUnsupportedTransactionVersion: "UnsupportedTransactionVersion",
		KindTransactionPosting:            "TransactionPostingError",
	}
	for k, s := range want {
		assert.Equal(t, s, k.String())
	}
}
