package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/heritage/internal/logging"
	"github.com/jward/heritage/internal/plan"
)

var flagWorkers int

var planCmd = &cobra.Command{
	Use:   "plan <plan.toml>...",
	Short: "Execute composition plans",
	Long:  "Runs each plan against its own declarations. Plans execute in parallel; journal writes are committed serially once all plans finish.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().IntVar(&flagWorkers, "workers", 0, "parallel plan workers (default: GOMAXPROCS)")
}

func runPlan(cmd *cobra.Command, args []string) error {
	start := time.Now()

	plans := make([]*plan.Plan, 0, len(args))
	for _, path := range args {
		p, err := plan.Load(path)
		if err != nil {
			return outputError("plan", err)
		}
		plans = append(plans, p)
	}

	j, err := openJournal()
	if err != nil {
		return outputError("plan", err)
	}
	opts := plan.Options{Logger: logging.ConfigureRuntime(), Workers: flagWorkers}
	if j != nil {
		defer j.Close()
		opts.Journal = j
	}

	reports, err := plan.ExecuteAll(commandContext(cmd), plans, opts)
	if outErr := outputResult(CLIResult{Command: "plan", Results: reports}); outErr != nil {
		return outErr
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range reports {
		if !r.OK() {
			failed++
		}
	}
	fmt.Fprintf(os.Stderr, "Executed %d plan(s) in %s\n", len(reports), time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		return fmt.Errorf("%d plan(s) had refused compositions", failed)
	}
	return nil
}
