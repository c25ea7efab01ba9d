// keys.go - Key generation and derivation of the hex key bundle.

package walletcore

import "encoding/hex"

// KeyBundle is a spending key and all key material derived from it, hex encoded.
type KeyBundle struct {
	SpendingKey         string `json:"spendingKey"`
	ViewKey             string `json:"viewKey"`
	IncomingViewKey     string `json:"incomingViewKey"`
	OutgoingViewKey     string `json:"outgoingViewKey"`
	PublicAddress       string `json:"publicAddress"`
	ProofAuthorizingKey string `json:"proofAuthorizingKey"`
}

func bundleOf(k Key) KeyBundle {
	return KeyBundle{
		SpendingKey:         hex.EncodeToString(k.SpendingKey()),
		ViewKey:             hex.EncodeToString(k.ViewKey()),
		IncomingViewKey:     hex.EncodeToString(k.IncomingViewKey()),
		OutgoingViewKey:     hex.EncodeToString(k.OutgoingViewKey()),
		PublicAddress:       hex.EncodeToString(k.PublicAddress()),
		ProofAuthorizingKey: hex.EncodeToString(k.ProofAuthorizingKey()),
	}
}

// GenerateKey returns a fresh random key bundle.
func (c *Core) GenerateKey() KeyBundle {
	return bundleOf(c.lib.GenerateKey())
}

// DeriveFromPrivateKey rebuilds the bundle for a hex spending key.
func (c *Core) DeriveFromPrivateKey(spendingKeyHex string) (KeyBundle, error) {
	k, err := c.lib.KeyFromHex(spendingKeyHex)
	if err != nil {
		return KeyBundle{}, newError(KindInvalidKeyEncoding, err, "spending key")
	}
	return bundleOf(k), nil
}

// IsValidPublicAddress reports whether s is a hex encoded address the Library accepts.
func (c *Core) IsValidPublicAddress(s string) bool {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return false
	}
	_, err = c.lib.PublicAddressFromBytes(raw)
	return err == nil
}

// PublicAddressFromIncomingViewKey derives the hex address an incoming view key decrypts for.
func (c *Core) PublicAddressFromIncomingViewKey(ivkHex string) (string, error) {
	ivk, err := c.lib.IncomingViewKeyFromHex(ivkHex)
	if err != nil {
		return "", newError(KindInvalidKeyEncoding, err, "incoming view key")
	}
	return hex.EncodeToString(ivk.PublicAddress().Bytes()), nil
}
