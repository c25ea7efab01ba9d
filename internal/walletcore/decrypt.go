// decrypt.go - Parallel trial decryption of note batches.

package walletcore

import (
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DecryptedNote is a note recovered from a batch, tagged with its input position.
type DecryptedNote struct {
	Index uint32 `json:"index"`
	Note  string `json:"note"`
}

// SortByIndex orders notes by their input position.
func SortByIndex(notes []DecryptedNote) {
	sort.Slice(notes, func(i, j int) bool { return notes[i].Index < notes[j].Index })
}

// DecryptNotesForOwner returns every ciphertext the incoming view key opens.
// Items that fail for any reason are left out. Results arrive in completion order.
func (c *Core) DecryptNotesForOwner(ciphertexts []string, ivkHex string) ([]DecryptedNote, error) {
	ivk, err := c.lib.IncomingViewKeyFromHex(ivkHex)
	if err != nil {
		return nil, newError(KindInvalidKeyEncoding, err, "incoming view key")
	}
	return c.decryptBatch(DirectionOwner, ciphertexts, func(m MerkleNote) (Note, error) {
		return m.DecryptForOwner(ivk)
	}), nil
}

// DecryptNotesForSpender returns every ciphertext the outgoing view key opens.
func (c *Core) DecryptNotesForSpender(ciphertexts []string, ovkHex string) ([]DecryptedNote, error) {
	ovk, err := c.lib.OutgoingViewKeyFromHex(ovkHex)
	if err != nil {
		return nil, newError(KindInvalidKeyEncoding, err, "outgoing view key")
	}
	return c.decryptBatch(DirectionSpender, ciphertexts, func(m MerkleNote) (Note, error) {
		return m.DecryptForSpender(ovk)
	}), nil
}

func (c *Core) decryptBatch(dir Direction, ciphertexts []string, open func(MerkleNote) (Note, error)) []DecryptedNote {
	start := time.Now()
	if len(ciphertexts) == 0 {
		c.observer.DecryptBatch(dir, 0, 0, time.Since(start))
		return []DecryptedNote{}
	}

	workers := c.workers
	if workers > len(ciphertexts) {
		workers = len(ciphertexts)
	}
	jobs := make(chan int)
	found := make(chan DecryptedNote, len(ciphertexts))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if note, ok := c.decryptOne(dir, i, ciphertexts[i], open); ok {
					found <- note
				}
			}
		}()
	}
	for i := range ciphertexts {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	close(found)

	out := make([]DecryptedNote, 0, len(found))
	for note := range found {
		out = append(out, note)
	}
	c.observer.DecryptBatch(dir, len(ciphertexts), len(out), time.Since(start))
	c.log.Debug().
		Str("direction", string(dir)).
		Int("items", len(ciphertexts)).
		Int("decrypted", len(out)).
		Dur("elapsed", time.Since(start)).
		Msg("decrypt batch finished")
	return out
}

// decryptOne never fails the batch: every problem, including a panic inside
// the Library, drops the item.
func (c *Core) decryptOne(dir Direction, index int, ciphertext string, open func(MerkleNote) (Note, error)) (note DecryptedNote, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.skip(dir, index, "panic", fmt.Errorf("%v", r))
			ok = false
		}
	}()

	raw, err := hex.DecodeString(ciphertext)
	if err != nil {
		c.skip(dir, index, "hex", err)
		return note, false
	}
	mn, err := c.lib.DecodeMerkleNote(raw)
	if err != nil {
		c.skip(dir, index, "decode", err)
		return note, false
	}
	plain, err := open(mn)
	if err != nil {
		c.skip(dir, index, "decrypt", err)
		return note, false
	}
	b, err := plain.Serialize()
	if err != nil {
		c.skip(dir, index, "serialize", err)
		return note, false
	}
	return DecryptedNote{Index: uint32(index), Note: hex.EncodeToString(b)}, true
}

func (c *Core) skip(dir Direction, index int, stage string, err error) {
	c.observer.DecryptSkipped(dir, stage)
	var ev *zerolog.Event
	if stage == "decrypt" {
		// Most notes in a scan belong to someone else.
		ev = c.diag.Debug()
	} else {
		ev = c.diag.Warn()
	}
	ev.Str("direction", string(dir)).
		Int("index", index).
		Str("stage", stage).
		Err(err).
		Msg("note skipped")
}
