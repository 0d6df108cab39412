package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"plandeck/internal/adapters/filesystem"
	"plandeck/internal/adapters/sqlite"
	"plandeck/internal/config"
	"plandeck/internal/logging"
)

var (
	plansDir string
	logLevel string

	cfg    *config.Config
	repo   *filesystem.Repository
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "plandeck",
	Short: "Keep a directory of YAML plans consistent",
	Long: `plandeck manages a directory of YAML plan files that reference each other
by numeric id through parent and dependency fields.

It repairs duplicate or missing ids, reorders parent/child families so
parents and prerequisites carry the lower ids, and answers which plan is
ready to work on next.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to resolve working directory: %w", err)
		}
		cfg, err = config.Load(cwd)
		if err != nil {
			return err
		}
		if plansDir != "" {
			cfg.PlansDir = plansDir
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		logger = logging.New(logging.Config{
			Level:  logging.ParseLevel(cfg.LogLevel),
			Format: logging.ParseFormat(cfg.LogFormat),
			Output: os.Stderr,
		})
		logging.SetDefault(logger)

		opts := []filesystem.Option{filesystem.WithLogger(logger)}
		if cfg.Schema != "" {
			opts = append(opts, filesystem.WithSchema(cfg.Schema))
		}
		repo = filesystem.NewRepository(cfg.PlansDir, opts...)
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&plansDir, "dir", "d", "", "plans directory (default from .plandeck.yml, $PLANDECK_DIR or ./plans)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// openIndex opens the plan index. With mustExist set it returns nil when no
// index has been built yet.
func openIndex(mustExist bool) (*sqlite.Index, error) {
	dbPath := cfg.IndexPath
	if dbPath == "" {
		dbPath = sqlite.DefaultDatabasePath(repo.Root())
	}
	if mustExist {
		if _, err := os.Stat(dbPath); err != nil {
			return nil, nil
		}
	}

	idx := sqlite.NewIndex(repo, dbPath)
	if err := idx.Open(repo.Root()); err != nil {
		return nil, err
	}
	return idx, nil
}
