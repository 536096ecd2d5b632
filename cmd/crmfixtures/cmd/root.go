// Package cmd implements the crmfixtures command line.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forgo/crmfixtures/internal/config"
)

var (
	cfg        *config.Config
	backend    string
	schemaFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "crmfixtures",
	Short: "Seed CRM test data",
	Long: `crmfixtures creates linked CRM records for end-to-end test runs.

Records are written to an in-memory store (dry run) or to SurrealDB,
selected with FIXTURE_BACKEND or --backend. Every generated name, email
and phone number carries a random token, so runs never collide.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if backend != "" {
			loaded.Fixture.Backend = backend
		}
		if schemaFile != "" {
			loaded.Fixture.SchemaFile = schemaFile
		}
		if verbose {
			loaded.Log.Level = "debug"
		}
		if err := loaded.Validate(); err != nil {
			printError("invalid configuration", err)
			return err
		}
		cfg = loaded
		slog.SetDefault(newLogger(cfg.Log))
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "store backend: memory or surreal (default: $FIXTURE_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&schemaFile, "schema", "", "YAML file of extra record types (default: $FIXTURE_SCHEMA_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every persisted record")
}

// newLogger builds the process logger. Logs go to stderr so stdout carries
// only command output.
func newLogger(c config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.Level)}
	if c.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
}
