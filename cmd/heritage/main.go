package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/heritage"
	"github.com/jward/heritage/internal/logging"
)

var (
	flagDB     string
	flagFormat string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "heritage",
	Short:         "Compose classes by mirroring members across prototype chains",
	Long:          "Heritage loads JavaScript and TypeScript class declarations, composes them with the cloning engine, and journals every composition to SQLite.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run: prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "journal database path (empty disables journaling)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
}

// openJournal opens the --db journal, or returns nil when journaling is off.
func openJournal() (*heritage.JournalStore, error) {
	if flagDB == "" {
		return nil, nil
	}
	j, err := heritage.OpenJournal(flagDB)
	if err != nil {
		return nil, err
	}
	return j, nil
}

// newCloner builds the engine for one command, logging through the
// process logger and journaling when --db is set.
func newCloner(j *heritage.JournalStore) *heritage.Cloner {
	opts := []heritage.Option{heritage.WithLogger(logging.ConfigureRuntime())}
	if j != nil {
		opts = append(opts, heritage.WithJournal(j))
	}
	return heritage.New(opts...)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
