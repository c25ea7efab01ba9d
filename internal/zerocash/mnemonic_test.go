package zerocash

import (
	"errors"
	"strings"
	"testing"
)

var allLanguages = []Language{English, ChineseSimplified, ChineseTraditional, French, Italian, Japanese, Korean, Spanish}

func TestMnemonicRoundTrip(t *testing.T) {
	key := GenerateKey()
	for _, lang := range allLanguages {
		t.Run(lang.String(), func(t *testing.T) {
			phrase, err := key.ToWords(lang)
			if err != nil {
				t.Fatalf("ToWords failed: %v", err)
			}
			if n := len(strings.Fields(phrase)); n != MnemonicWords {
				t.Fatalf("expected %d words, got %d", MnemonicWords, n)
			}
			back, err := SaplingKeyFromWords(phrase, lang)
			if err != nil {
				t.Fatalf("SaplingKeyFromWords failed: %v", err)
			}
			if back.SpendingKey() != key.SpendingKey() {
				t.Fatal("spending key changed across the round trip")
			}
		})
	}
}

func TestMnemonicToleratesWhitespace(t *testing.T) {
	key := GenerateKey()
	phrase, err := key.ToWords(English)
	if err != nil {
		t.Fatal(err)
	}
	messy := "  " + strings.ReplaceAll(phrase, " ", " \n\t ") + "\n"
	back, err := SaplingKeyFromWords(messy, English)
	if err != nil {
		t.Fatalf("SaplingKeyFromWords failed: %v", err)
	}
	if back.SpendingKey() != key.SpendingKey() {
		t.Fatal("spending key changed")
	}
}

func TestMnemonicRejections(t *testing.T) {
	key := GenerateKey()
	phrase, err := key.ToWords(English)
	if err != nil {
		t.Fatal(err)
	}
	words := strings.Fields(phrase)

	t.Run("word count", func(t *testing.T) {
		_, err := SaplingKeyFromWords(strings.Join(words[:23], " "), English)
		if !errors.Is(err, ErrMnemonicWordCount) {
			t.Fatalf("expected ErrMnemonicWordCount, got %v", err)
		}
	})

	t.Run("unknown word", func(t *testing.T) {
		bad := append([]string{"notaword"}, words[1:]...)
		_, err := SaplingKeyFromWords(strings.Join(bad, " "), English)
		if !errors.Is(err, ErrMnemonicWord) {
			t.Fatalf("expected ErrMnemonicWord, got %v", err)
		}
	})

	t.Run("wrong language", func(t *testing.T) {
		_, err := SaplingKeyFromWords(phrase, Japanese)
		if !errors.Is(err, ErrMnemonicWord) {
			t.Fatalf("expected ErrMnemonicWord, got %v", err)
		}
	})

	t.Run("checksum", func(t *testing.T) {
		list, _ := English.wordlist()
		found := false
		for _, candidate := range list {
			if candidate == words[23] {
				continue
			}
			bad := append(append([]string(nil), words[:23]...), candidate)
			_, err := SaplingKeyFromWords(strings.Join(bad, " "), English)
			if errors.Is(err, ErrMnemonicChecksum) {
				found = true
				break
			}
		}
		if !found {
			t.Fatal("no substitution of the last word produced a checksum failure")
		}
	})

	t.Run("unsupported language", func(t *testing.T) {
		if _, err := key.ToWords(Language(42)); !errors.Is(err, ErrUnsupportedLang) {
			t.Fatalf("expected ErrUnsupportedLang, got %v", err)
		}
	})
}
