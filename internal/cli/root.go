// Package cli implements the smartdocs command line.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	appanalysis "github.com/bryanwahyu/smartdocs/internal/application/analysis"
	"github.com/bryanwahyu/smartdocs/internal/bootstrap"
	"github.com/bryanwahyu/smartdocs/internal/config"
	domain "github.com/bryanwahyu/smartdocs/internal/domain/analysis"
	"github.com/bryanwahyu/smartdocs/internal/logger"
)

// localTenant owns every analysis started from the command line.
const localTenant = "local"

var (
	configPath string
	verbose    bool

	cfg *config.Config
	log *slog.Logger
)

// Analyzer runs one document through the pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, req appanalysis.Request) (domain.Result, error)
}

// newAnalyzer builds the real service; tests swap it for a fake.
var newAnalyzer = func(ctx context.Context, cfg *config.Config, log *slog.Logger) (Analyzer, func(), error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, nil, err
	}
	failures, db, err := bootstrap.OpenFailureLog(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	svc := bootstrap.NewService(cfg, bootstrap.Options{Failures: failures, Logger: log})
	return svc, func() { closeDB(db) }, nil
}

func closeDB(db *sql.DB) {
	if db != nil {
		_ = db.Close()
	}
}

var rootCmd = &cobra.Command{
	Use:   "smartdocs",
	Short: "Flag risky clauses in LMA loan agreements",
	Long: `smartdocs reads a loan agreement (PDF or text), asks the model for a
clause-by-clause risk review and enforces the house severity rules on the
answer.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		log = logger.New(cmd.ErrOrStderr(), level)

		path := configPath
		if path == "" {
			path = config.Path()
		}
		c, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $CONFIG_PATH or config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
