// main.go - walletd serves the shielded wallet core over HTTP.
//
// Usage:
//
//	walletd serve --config walletd.yaml
//	walletd keygen
//	walletd words encode <spending-key-hex> [--lang 0]
//	walletd words decode "<phrase>" [--lang 0]
//	walletd setup-prover --pk keys/spend_pk.bin --vk keys/spend_vk.bin
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"shieldcore/internal/walletcore"
	"shieldcore/internal/zerocash"
)

const version = "0.3.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "walletd",
	Short:         "Shielded wallet core daemon",
	Long:          "Key management, note decryption and transaction assembly for a shielded-note ledger.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "walletd.yaml", "path to the YAML config file")
	rootCmd.AddCommand(newServeCmd(), newKeygenCmd(), newWordsCmd(), newSetupProverCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "walletd:", err)
		os.Exit(1)
	}
}

func loadValidConfig() (*Config, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return config, nil
}

func memoPolicy(name string) walletcore.MemoPolicy {
	if name == "reject" {
		return walletcore.MemoReject
	}
	return walletcore.MemoTruncate
}

// newCore builds a Core for offline commands. They never prove, so no prover is loaded.
func newCore() *walletcore.Core {
	return walletcore.New(walletcore.NewZerocashLibrary(nil))
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadValidConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), config)
		},
	}
}

func serve(ctx context.Context, config *Config) error {
	logs, err := NewLogs(config)
	if err != nil {
		return err
	}
	defer logs.Close()
	log := logs.Main

	health := NewHealthChecker(version)

	var prover *zerocash.Groth16Prover
	start := time.Now()
	if config.ProvingKeyPath != "" {
		health.ProverLoading(config.ProvingKeyPath)
		prover, err = zerocash.LoadGroth16Prover(config.ProvingKeyPath, config.VerifyingKeyPath)
	} else {
		health.ProverLoading("in-memory setup")
		prover, err = zerocash.NewGroth16Prover()
	}
	if err != nil {
		health.ProverFailed(err)
		return fmt.Errorf("prover: %w", err)
	}
	health.ProverReady(prover.Constraints(), time.Since(start))
	log.Info().Int("constraints", prover.Constraints()).Dur("elapsed", time.Since(start)).Msg("prover ready")

	metrics := NewMetricsCollector()
	core := walletcore.New(walletcore.NewZerocashLibrary(prover),
		walletcore.WithLogger(log.With().Str("component", "core").Logger()),
		walletcore.WithDiagnostics(logs.Diag),
		walletcore.WithWorkers(config.DecryptWorkers),
		walletcore.WithMemoPolicy(memoPolicy(config.MemoPolicy)),
		walletcore.WithObserver(metrics),
	)
	health.AddSelfTest("core", CoreSelfTest(core))

	limiter := NewClientRateLimiter(config.RateLimitBurst, config.RateLimitRefill, config.rateLimitPeriod())
	api := NewWalletAPI(core, health, metrics, limiter, log)

	srv := &http.Server{
		Addr:         config.ListenAddr,
		Handler:      api.GetRouter(),
		ReadTimeout:  time.Duration(config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.WriteTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", config.ListenAddr).Int("workers", core.Workers()).Str("memo_policy", config.MemoPolicy).Msg("listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		limiter.Run(gctx, time.Minute, config.rateLimitIdle())
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a spending key and print its derived key material",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, newCore().GenerateKey())
		},
	}
}

func newWordsCmd() *cobra.Command {
	var lang int32
	words := &cobra.Command{
		Use:   "words",
		Short: "Convert between spending keys and mnemonic phrases",
	}
	words.PersistentFlags().Int32Var(&lang, "lang", 0, "language code (0 English .. 7 Spanish)")

	words.AddCommand(&cobra.Command{
		Use:   "encode <spending-key-hex>",
		Short: "Print the mnemonic for a spending key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			phrase, err := newCore().SpendingKeyToWords(args[0], walletcore.LanguageCode(lang))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), phrase)
			return nil
		},
	}, &cobra.Command{
		Use:   "decode <phrase>",
		Short: "Print the spending key for a mnemonic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := newCore().WordsToSpendingKey(args[0], walletcore.LanguageCode(lang))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	})
	return words
}

func newSetupProverCmd() *cobra.Command {
	var pkPath, vkPath string
	cmd := &cobra.Command{
		Use:   "setup-prover",
		Short: "Compile the spend circuit and write Groth16 keys if they are missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			prover, err := zerocash.LoadGroth16Prover(pkPath, vkPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "spend circuit: %d constraints, keys at %s and %s (%s)\n",
				prover.Constraints(), pkPath, vkPath, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	defaults := DefaultConfig()
	cmd.Flags().StringVar(&pkPath, "pk", defaults.ProvingKeyPath, "proving key path")
	cmd.Flags().StringVar(&vkPath, "vk", defaults.VerifyingKeyPath, "verifying key path")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
