// Package cli provides the nl2sqlctl command-line interface. Its subcommands run
// generation, reflection and correction against the configured models without the HTTP server.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Rrens/nl2sql/internal/app"
	"github.com/Rrens/nl2sql/internal/config"
	"github.com/Rrens/nl2sql/internal/logging"
	"github.com/Rrens/nl2sql/internal/service"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time using -ldflags
var Version = "0.0.0-dev"

// serviceFactory builds the SQL service; the returned func releases it
type serviceFactory func(ctx context.Context) (*service.SQLService, func(), error)

type options struct {
	schemaFile   string
	examplesFile string
	question     string
}

func defaultFactory(logLevel *string) serviceFactory {
	return func(ctx context.Context) (*service.SQLService, func(), error) {
		_ = godotenv.Load()

		cfg, err := config.Load()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config: %w", err)
		}

		logCfg := cfg.Logging
		logCfg.Format = "console"
		logCfg.File = ""
		if *logLevel != "" {
			logCfg.Level = *logLevel
		}
		if _, err := logging.Setup(logCfg); err != nil {
			return nil, nil, err
		}

		a, err := app.New(ctx, cfg, nil)
		if err != nil {
			return nil, nil, err
		}
		return a.SQLService, a.Close, nil
	}
}

// NewRootCmd creates the nl2sqlctl command tree
func NewRootCmd() *cobra.Command {
	var logLevel string
	return newRootCmd(defaultFactory(&logLevel), &logLevel)
}

func newRootCmd(factory serviceFactory, logLevel *string) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "nl2sqlctl",
		Short:         "Generate, explain and correct BigQuery SQL from natural language",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.schemaFile, "schema-file", "", "file holding the table schema (required)")
	root.PersistentFlags().StringVar(&opts.examplesFile, "examples-file", "", "JSON file with similar questions: [{\"question\": ..., \"sql_query\": ...}]")
	root.PersistentFlags().StringVarP(&opts.question, "question", "q", "", "natural language question (required)")
	root.PersistentFlags().StringVar(logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		newGenerateCmd(factory, opts),
		newExplainCmd(factory, opts),
		newCorrectCmd(factory, opts),
	)

	return root
}

// Execute runs the CLI application
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
