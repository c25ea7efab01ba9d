// transaction.go - Transaction assembly and hashing.

package walletcore

import (
	"encoding/hex"
	"time"

	"github.com/rs/zerolog"
)

// TransactionVersion is the posted transaction format revision.
type TransactionVersion uint8

const (
	TransactionV1 TransactionVersion = 1
	TransactionV2 TransactionVersion = 2
)

// ParseTransactionVersion accepts only known versions.
func ParseTransactionVersion(v uint8) (TransactionVersion, error) {
	switch TransactionVersion(v) {
	case TransactionV1, TransactionV2:
		return TransactionVersion(v), nil
	default:
		return 0, newError(KindUnsupportedTransactionVersion, nil, "version %d", v)
	}
}

// SpendComponents is one input: a serialized note and its wire witness.
type SpendComponents struct {
	Note    []byte
	Witness WireWitness
}

// CreateTransaction assembles, proves and signs a transaction. Spends and
// outputs are added in the order given. No change output is ever added, so
// inputs must cover outputs plus fee exactly.
func (c *Core) CreateTransaction(version uint8, fee uint64, expirationSequence uint32, spends []SpendComponents, outputs [][]byte, spendingKeyHex string) (raw []byte, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if kind, ok := KindOf(err); ok {
			outcome = kind.String()
		}
		c.observer.TransactionAssembled(outcome, time.Since(start))
		var ev *zerolog.Event
		if err != nil {
			ev = c.log.Warn().Err(err)
		} else {
			ev = c.log.Info()
		}
		ev.Uint8("version", version).
			Int("spends", len(spends)).
			Int("outputs", len(outputs)).
			Uint64("fee", fee).
			Dur("elapsed", time.Since(start)).
			Msg("transaction assembly")
	}()

	// Step 1: version
	v, err := ParseTransactionVersion(version)
	if err != nil {
		return nil, err
	}

	// Step 2: empty proposal
	tx, err := c.lib.NewTransaction(v)
	if err != nil {
		return nil, newError(KindTransactionPosting, err, "new transaction")
	}

	// Step 3: spends in order
	for i, sp := range spends {
		note, err := c.lib.DecodeNote(sp.Note)
		if err != nil {
			return nil, atItem(KindDecode, "spend", i, newError(KindDecode, err, "note"))
		}
		witness, err := c.ReconstructWitness(sp.Witness)
		if err != nil {
			return nil, atItem(KindDecode, "spend", i, err)
		}
		if err := tx.AddSpend(note, witness); err != nil {
			return nil, atItem(KindTransactionPosting, "spend", i, err)
		}
	}

	// Step 4: outputs in order
	for i, out := range outputs {
		note, err := c.lib.DecodeNote(out)
		if err != nil {
			return nil, atItem(KindDecode, "output", i, newError(KindDecode, err, "note"))
		}
		if err := tx.AddOutput(note); err != nil {
			return nil, atItem(KindTransactionPosting, "output", i, err)
		}
	}

	// Step 5: expiration
	tx.SetExpiration(expirationSequence)

	// Step 6: spending key
	key, err := c.lib.KeyFromHex(spendingKeyHex)
	if err != nil {
		return nil, newError(KindInvalidKeyEncoding, err, "spending key")
	}

	// Step 7: prove and sign, no change address
	posted, err := tx.Post(key, nil, fee)
	if err != nil {
		return nil, newError(KindTransactionPosting, err, "")
	}

	// Step 8: serialize
	raw, err = posted.Serialize()
	if err != nil {
		return nil, newError(KindTransactionPosting, err, "serialize")
	}
	return raw, nil
}

// HashTransaction returns the hex hash of a serialized posted transaction.
func (c *Core) HashTransaction(raw []byte) (string, error) {
	tx, err := c.lib.DecodeTransaction(raw)
	if err != nil {
		return "", newError(KindDecode, err, "transaction")
	}
	return hex.EncodeToString(tx.Hash()), nil
}
