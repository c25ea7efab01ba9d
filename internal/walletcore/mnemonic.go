// mnemonic.go - Spending key mnemonics and the language code mapping.

package walletcore

// LanguageCode is the caller-facing mnemonic language selector.
type LanguageCode int32

const (
	LanguageCodeEnglish LanguageCode = iota
	LanguageCodeChineseSimplified
	LanguageCodeChineseTraditional
	LanguageCodeFrench
	LanguageCodeItalian
	LanguageCodeJapanese
	LanguageCodeKorean
	LanguageCodeSpanish
)

// Language maps the code to a Library wordlist. Codes outside 0..7 fail.
func (c LanguageCode) Language() (Language, error) {
	switch c {
	case LanguageCodeEnglish:
		return LanguageEnglish, nil
	case LanguageCodeChineseSimplified:
		return LanguageChineseSimplified, nil
	case LanguageCodeChineseTraditional:
		return LanguageChineseTraditional, nil
	case LanguageCodeFrench:
		return LanguageFrench, nil
	case LanguageCodeItalian:
		return LanguageItalian, nil
	case LanguageCodeJapanese:
		return LanguageJapanese, nil
	case LanguageCodeKorean:
		return LanguageKorean, nil
	case LanguageCodeSpanish:
		return LanguageSpanish, nil
	default:
		return 0, newError(KindInvalidLanguageCode, nil, "language code %d", int32(c))
	}
}

// SpendingKeyToWords encodes a hex spending key as a mnemonic phrase.
func (c *Core) SpendingKeyToWords(spendingKeyHex string, code LanguageCode) (string, error) {
	k, err := c.lib.KeyFromHex(spendingKeyHex)
	if err != nil {
		return "", newError(KindInvalidKeyEncoding, err, "spending key")
	}
	lang, err := code.Language()
	if err != nil {
		return "", err
	}
	phrase, err := c.lib.KeyToWords(k, lang)
	if err != nil {
		return "", newError(KindMnemonicEncoding, err, "")
	}
	return phrase, nil
}

// WordsToSpendingKey decodes a mnemonic phrase into a hex spending key.
func (c *Core) WordsToSpendingKey(phrase string, code LanguageCode) (string, error) {
	lang, err := code.Language()
	if err != nil {
		return "", err
	}
	k, err := c.lib.WordsToKey(phrase, lang)
	if err != nil {
		return "", newError(KindMnemonicDecoding, err, "")
	}
	return bundleOf(k).SpendingKey, nil
}
