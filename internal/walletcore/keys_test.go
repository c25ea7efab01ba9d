package walletcore

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyBundleIsHex(t *testing.T) {
	core, _ := newFakeCore()
	b := core.GenerateKey()
	for name, v := range map[string]string{
		"spendingKey":         b.SpendingKey,
		"viewKey":             b.ViewKey,
		"incomingViewKey":     b.IncomingViewKey,
		"outgoingViewKey":     b.OutgoingViewKey,
		"publicAddress":       b.PublicAddress,
		"proofAuthorizingKey": b.ProofAuthorizingKey,
	} {
		_, err := hex.DecodeString(v)
		assert.NoError(t, err, name)
		assert.Equal(t, strings.ToLower(v), v, name)
	}
	assert.True(t, core.IsValidPublicAddress(b.PublicAddress))
}

func TestDeriveFromPrivateKey(t *testing.T) {
	core, _ := newFakeCore()
	generated := core.GenerateKey()

	derived, err := core.DeriveFromPrivateKey(generated.SpendingKey)
	require.NoError(t, err)
	assert.Equal(t, generated, derived)

	_, err = core.DeriveFromPrivateKey("not-hex")
	assert.ErrorIs(t, err, ErrInvalidKeyEncoding)

	_, err = core.DeriveFromPrivateKey("abcd")
	assert.ErrorIs(t, err, ErrInvalidKeyEncoding)
}

func TestIsValidPublicAddressNeverFails(t *testing.T) {
	core, _ := newFakeCore()
	for _, in := range []string{"not-hex", "", "abc", strings.Repeat("00", 31), strings.Repeat("zz", 32)} {
		assert.False(t, core.IsValidPublicAddress(in), in)
	}
	assert.True(t, core.IsValidPublicAddress(strings.Repeat("11", 32)))
}

func TestPublicAddressFromIncomingViewKey(t *testing.T) {
	core, _ := newFakeCore()
	b := core.GenerateKey()

	addr, err := core.PublicAddressFromIncomingViewKey(b.IncomingViewKey)
	require.NoError(t, err)
	assert.Equal(t, b.PublicAddress, addr)

	_, err = core.PublicAddressFromIncomingViewKey("xyz")
	assert.ErrorIs(t, err, ErrInvalidKeyEncoding)
}
