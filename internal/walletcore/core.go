// core.go - Core construction, options and the measurement observer.

package walletcore

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// MemoPolicy decides what happens to memos longer than MemoSize.
type MemoPolicy uint8

const (
	// MemoTruncate drops bytes beyond MemoSize.
	MemoTruncate MemoPolicy = iota
	// MemoReject fails note creation with a DecodeError.
	MemoReject
)

func (p MemoPolicy) String() string {
	if p == MemoReject {
		return "reject"
	}
	return "truncate"
}

// Direction names the key a decrypt batch is run with.
type Direction string

const (
	// DirectionOwner decrypts with an incoming view key.
	DirectionOwner Direction = "owner"
	// DirectionSpender decrypts with an outgoing view key.
	DirectionSpender Direction = "spender"
)

// Observer receives operational measurements. Implementations must be safe for concurrent use.
type Observer interface {
	DecryptBatch(dir Direction, items, decrypted int, elapsed time.Duration)
	DecryptSkipped(dir Direction, stage string)
	TransactionAssembled(outcome string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) DecryptBatch(Direction, int, int, time.Duration) {}
func (nopObserver) DecryptSkipped(Direction, string)                {}
func (nopObserver) TransactionAssembled(string, time.Duration)      {}

// Core exposes every wallet operation over one Library.
type Core struct {
	lib        Library
	log        zerolog.Logger
	diag       zerolog.Logger
	workers    int
	memoPolicy MemoPolicy
	observer   Observer
}

// Option configures a Core in New.
type Option func(*Core)

// WithLogger sets the operational logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Core) { c.log = l }
}

// WithDiagnostics sets where swallowed per-item decrypt failures are reported.
func WithDiagnostics(l zerolog.Logger) Option {
	return func(c *Core) { c.diag = l }
}

// WithWorkers bounds decrypt parallelism. Values below 1 mean runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(c *Core) {
		if n < 1 {
			n = runtime.NumCPU()
		}
		c.workers = n
	}
}

// WithMemoPolicy sets how CreateNote treats memos longer than MemoSize.
func WithMemoPolicy(p MemoPolicy) Option {
	return func(c *Core) { c.memoPolicy = p }
}

// WithObserver installs o for batch and assembly measurements. A nil o keeps the no-op observer.
func WithObserver(o Observer) Option {
	return func(c *Core) {
		if o != nil {
			c.observer = o
		}
	}
}

// New builds a Core. Logging is off unless WithLogger is given.
func New(lib Library, opts ...Option) *Core {
	c := &Core{
		lib:        lib,
		log:        zerolog.Nop(),
		diag:       zerolog.Nop(),
		workers:    runtime.NumCPU(),
		memoPolicy: MemoTruncate,
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Workers returns the decrypt pool size.
func (c *Core) Workers() int { return c.workers }
