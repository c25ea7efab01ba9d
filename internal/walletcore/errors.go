// errors.go - Typed errors returned by every Core operation.

package walletcore

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies every error the core returns.
type Kind uint8

const (
	KindInvalidKeyEncoding Kind = iota + 1
	KindInvalidLanguageCode
	KindMnemonicEncoding
	KindMnemonicDecoding
	KindInvalidWitnessSide
	KindDecode
	KindUnsupportedTransactionVersion
	KindTransactionPosting
)

func (k Kind) String() string {
	switch k {
	case KindInvalidKeyEncoding:
		return "InvalidKeyEncoding"
	case KindInvalidLanguageCode:
		return "InvalidLanguageCode"
	case KindMnemonicEncoding:
		return "MnemonicEncodingError"
	case KindMnemonicDecoding:
		return "MnemonicDecodingError"
	case KindInvalidWitnessSide:
		return "InvalidWitnessSide"
	case KindDecode:
		return "DecodeError"
	case KindUnsupportedTransactionVersion:
		return "UnsupportedTransactionVersion"
	case KindTransactionPosting:
		return "TransactionPostingError"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrInvalidKeyEncoding            = &Error{Kind: KindInvalidKeyEncoding}
	ErrInvalidLanguageCode           = &Error{Kind: KindInvalidLanguageCode}
	ErrMnemonicEncoding              = &Error{Kind: KindMnemonicEncoding}
	ErrMnemonicDecoding              = &Error{Kind: KindMnemonicDecoding}
	ErrInvalidWitnessSide            = &Error{Kind: KindInvalidWitnessSide}
	ErrDecode                        = &Error{Kind: KindDecode}
	ErrUnsupportedTransactionVersion = &Error{Kind: KindUnsupportedTransactionVersion}
	ErrTransactionPosting            = &Error{Kind: KindTransactionPosting}
)

// Error is the single error type returned by Core. Item and Index name the
// input element the failure belongs to ("spend", "output", "node") when there is one.
type Error struct {
	Kind  Kind
	Item  string
	Index int
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.detail()
}

func (e *Error) detail() string {
	var parts []string
	if e.Item != "" {
		parts = append(parts, fmt.Sprintf("%s %d", e.Item, e.Index))
	}
	if e.Msg != "" {
		parts = append(parts, e.Msg)
	}
	var inner *Error
	if errors.As(e.Err, &inner) {
		parts = append(parts, inner.detail())
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// atItem ties err to one input element, keeping the Kind of an inner *Error.
func atItem(kind Kind, item string, index int, err error) *Error {
	var inner *Error
	if errors.As(err, &inner) {
		kind = inner.Kind
	}
	return &Error{Kind: kind, Item: item, Index: index, Err: err}
}

// KindOf reports the Kind of err if it is, or wraps, an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
