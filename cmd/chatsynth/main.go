package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatsynth/internal/config"
	"chatsynth/internal/logging"
	"chatsynth/internal/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose    bool
	configPath string
	dotEnvPath string
	timeout    time.Duration

	// Run overrides
	sessions   int
	seed       uint64
	rawDir     string
	resultsDir string
	charts     bool
	dbPath     string

	cfg    *config.Config
	logger *zap.Logger

	newLogger = logging.New
)

// rootCmd generates one synthetic dataset
var rootCmd = &cobra.Command{
	Use:   "chatsynth",
	Short: "Generate a synthetic chat-session dataset",
	Long: `chatsynth checks that this host can produce and write a small dataset.

One run fabricates chat sessions and messages, writes them as delimited
files, renders text charts and a JSON summary, then optionally copies the
dataset into SQLite and uploads the files to an S3-compatible bucket.

CHATSYNTH_* variables override the config file; flags override both.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(dotEnvPath); err != nil {
			return err
		}
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		applyFlagOverrides(cmd)

		logger, err = newLogger(cfg.Logging.Level, verbose)
		if err != nil {
			return err
		}
		logging.SetLogger(logger)
		logging.BootDebug("Config loaded from %s", configPath)
		return nil
	},
	RunE: runGenerate,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath, "Config file")
	rootCmd.PersistentFlags().StringVar(&dotEnvPath, "env-file", ".env", "Environment file loaded before the config")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Run timeout")

	rootCmd.Flags().IntVar(&sessions, "sessions", 0, "Number of sessions to generate")
	rootCmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (0 picks one from the clock)")
	rootCmd.Flags().StringVar(&rawDir, "raw-dir", "", "Directory for the tabular files")
	rootCmd.Flags().StringVar(&resultsDir, "results-dir", "", "Directory for the summary and charts")
	rootCmd.Flags().BoolVar(&charts, "charts", true, "Render text charts")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "Also save the dataset to this SQLite database")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// applyFlagOverrides copies explicitly set flags over the loaded config.
func applyFlagOverrides(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("sessions") {
		cfg.Dataset.Sessions = sessions
	}
	if flags.Changed("seed") {
		cfg.Dataset.Seed = seed
	}
	if flags.Changed("raw-dir") {
		cfg.Output.RawDir = rawDir
	}
	if flags.Changed("results-dir") {
		cfg.Output.ResultsDir = resultsDir
	}
	if flags.Changed("charts") {
		cfg.Output.Charts = charts
	}
	if flags.Changed("db") {
		cfg.Store.DatabasePath = dbPath
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes the command tree and flushes the logger on every exit path;
// cobra skips post-run hooks when a command fails.
func run() error {
	defer syncLogger()
	return rootCmd.Execute()
}

func syncLogger() {
	if logger != nil {
		_ = logger.Sync()
	}
}

// runGenerate executes one pipeline run
func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
	defer cancelTimeout()

	logging.Boot("Starting run: %d sessions into %s", cfg.Dataset.Sessions, cfg.Output.RawDir)
	res, err := pipeline.Run(ctx, cfg, pipeline.Options{})
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), renderResult(res))
	return nil
}
