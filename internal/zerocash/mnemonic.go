// mnemonic.go - 24-word mnemonic encoding of spending keys.
//
// The spending key is used directly as 256 bits of BIP-39 entropy: an 8-bit SHA-256 checksum is
// appended and the 264 bits are split into 24 indexes of 11 bits each.

package zerocash

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"

	"github.com/tyler-smith/go-bip39/wordlists"
	"golang.org/x/text/unicode/norm"
)

// Language selects a BIP-39 wordlist.
type Language int

const (
	English Language = iota
	ChineseSimplified
	ChineseTraditional
	French
	Italian
	Japanese
	Korean
	Spanish
)

const (
	MnemonicWords = 24
	bitsPerWord   = 11
	checksumBits  = 8
)

func (l Language) String() string {
	switch l {
	case English:
		return "english"
	case ChineseSimplified:
		return "chinese_simplified"
	case ChineseTraditional:
		return "chinese_traditional"
	case French:
		return "french"
	case Italian:
		return "italian"
	case Japanese:
		return "japanese"
	case Korean:
		return "korean"
	case Spanish:
		return "spanish"
	default:
		return fmt.Sprintf("language(%d)", int(l))
	}
}

func (l Language) wordlist() ([]string, error) {
	switch l {
	case English:
		return wordlists.English, nil
	case ChineseSimplified:
		return wordlists.ChineseSimplified, nil
	case ChineseTraditional:
		return wordlists.ChineseTraditional, nil
	case French:
		return wordlists.French, nil
	case Italian:
		return wordlists.Italian, nil
	case Japanese:
		return wordlists.Japanese, nil
	case Korean:
		return wordlists.Korean, nil
	case Spanish:
		return wordlists.Spanish, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLang, l)
	}
}

// ToWords encodes the spending key as a space-separated 24-word phrase.
func (k *SaplingKey) ToWords(lang Language) (string, error) {
	list, err := lang.wordlist()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(k.spendingKey[:])

	v := new(big.Int).SetBytes(k.spendingKey[:])
	v.Lsh(v, checksumBits)
	v.Or(v, big.NewInt(int64(sum[0])))

	mask := big.NewInt(1<<bitsPerWord - 1)
	words := make([]string, MnemonicWords)
	idx := new(big.Int)
	for i := MnemonicWords - 1; i >= 0; i-- {
		idx.And(v, mask)
		words[i] = list[idx.Int64()]
		v.Rsh(v, bitsPerWord)
	}
	return strings.Join(words, " "), nil
}

// SaplingKeyFromWords decodes a phrase produced by ToWords. The phrase is NFKD
// normalized and split on any run of whitespace.
func SaplingKeyFromWords(phrase string, lang Language) (*SaplingKey, error) {
	list, err := lang.wordlist()
	if err != nil {
		return nil, err
	}
	words := strings.Fields(norm.NFKD.String(phrase))
	if len(words) != MnemonicWords {
		return nil, fmt.Errorf("%w: got %d", ErrMnemonicWordCount, len(words))
	}

	index := make(map[string]int64, len(list))
	for i, w := range list {
		index[norm.NFKD.String(w)] = int64(i)
	}

	v := new(big.Int)
	for i, w := range words {
		n, ok := index[w]
		if !ok {
			return nil, fmt.Errorf("%w: word %d %q", ErrMnemonicWord, i, w)
		}
		v.Lsh(v, bitsPerWord)
		v.Or(v, big.NewInt(n))
	}

	checksum := byte(v.Uint64() & 0xff)
	v.Rsh(v, checksumBits)
	var sk [SpendingKeySize]byte
	v.FillBytes(sk[:])

	sum := sha256.Sum256(sk[:])
	if sum[0] != checksum {
		return nil, ErrMnemonicChecksum
	}
	return NewSaplingKey(sk)
}
