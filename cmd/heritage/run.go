package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/heritage/internal/logging"
	"github.com/jward/heritage/internal/runtime"
)

var runCmd = &cobra.Command{
	Use:   "run <script.risor>",
	Short: "Run a composition script",
	Long:  "Executes a Risor script with the composition builtins. With --db, the script's compositions are journaled and the history builtins are available.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	start := time.Now()

	j, err := openJournal()
	if err != nil {
		return outputError("run", err)
	}
	opts := []runtime.RuntimeOption{runtime.WithLogger(logging.ConfigureRuntime())}
	if j != nil {
		defer j.Close()
		opts = append(opts, runtime.WithJournal(j))
	}

	rt := runtime.NewRuntime("", opts...)
	if err := rt.RunScript(commandContext(cmd), args[0], nil); err != nil {
		return outputError("run", err)
	}
	fmt.Fprintf(os.Stderr, "Ran %s in %s\n", args[0], time.Since(start).Round(time.Millisecond))
	return nil
}
