// logger.go - Structured logging for the wallet daemon
package main

import (
	"fmt"
	"io"
	"os"

	gnarklogger "github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logs holds the operational and diagnostic loggers and the files behind them.
type Logs struct {
	Main    zerolog.Logger
	Diag    zerolog.Logger
	closers []io.Closer
}

// NewLogs builds the loggers described by config. Console output always goes
// to stderr; when a log file is set, entries are also written there with rotation.
func NewLogs(config *Config) (*Logs, error) {
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}
	logs := &Logs{}
	if config.LogFile != "" {
		rotating := &lumberjack.Logger{
			Filename: config.LogFile,
			MaxSize:  config.LogMaxSizeMB,
			MaxAge:   config.LogMaxAgeDays,
		}
		logs.closers = append(logs.closers, rotating)
		out = zerolog.MultiLevelWriter(out, rotating)
	}
	logs.Main = zerolog.New(out).Level(level).With().Timestamp().Str("component", "walletd").Logger()

	switch config.Diagnostics {
	case "stdout":
		logs.Diag = zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("component", "decrypt").Logger()
	case "stderr":
		logs.Diag = zerolog.New(os.Stderr).Level(level).With().Timestamp().Str("component", "decrypt").Logger()
	default:
		logs.Diag = zerolog.Nop()
	}

	// Route gnark's compiler and prover output through the same logger
	gnarkLevel := level
	if gnarkLevel < zerolog.WarnLevel {
		gnarkLevel = zerolog.WarnLevel
	}
	gnarklogger.Set(logs.Main.With().Str("component", "gnark").Logger().Level(gnarkLevel))
	return logs, nil
}

// Close closes any log files
func (l *Logs) Close() error {
	var first error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
