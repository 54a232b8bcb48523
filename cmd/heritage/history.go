package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jward/heritage"
)

var (
	flagHistoryHost string
	flagRefusals    bool
	flagHosts       bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show journaled compositions",
	Long:  "Lists the compositions recorded in the --db journal, oldest first, with every member outcome. --refusals lists only refused members.",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&flagHistoryHost, "host", "", "only compositions onto this host (default: all)")
	historyCmd.Flags().BoolVar(&flagRefusals, "refusals", false, "list refused members instead of compositions")
	historyCmd.Flags().BoolVar(&flagHosts, "hosts", false, "list the journaled host names")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if flagDB == "" {
		return outputError("history", fmt.Errorf("history requires --db"))
	}
	j, err := openJournal()
	if err != nil {
		return outputError("history", err)
	}
	defer j.Close()

	if flagHosts {
		hosts, err := j.Hosts()
		if err != nil {
			return outputError("history", err)
		}
		return outputResult(CLIResult{Command: "history", Results: nonNil(hosts)})
	}
	if flagRefusals {
		refused, err := refusals(j, flagHistoryHost)
		if err != nil {
			return outputError("history", err)
		}
		return outputResult(CLIResult{Command: "history", Results: refused})
	}
	comps, err := history(j, flagHistoryHost)
	if err != nil {
		return outputError("history", err)
	}
	return outputResult(CLIResult{Command: "history", Results: comps})
}

func history(j *heritage.JournalStore, host string) ([]CLIComposition, error) {
	comps, err := j.Compositions(host)
	if err != nil {
		return nil, err
	}
	out := make([]CLIComposition, 0, len(comps))
	for _, c := range comps {
		outcomes, err := j.Outcomes(c.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, compositionToCLI(c, outcomes))
	}
	return out, nil
}

func refusals(j *heritage.JournalStore, host string) ([]CLIOutcome, error) {
	if host == "" {
		return nil, fmt.Errorf("--refusals requires --host")
	}
	outcomes, err := j.Refusals(host)
	if err != nil {
		return nil, err
	}
	out := make([]CLIOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, outcomeToCLI(o))
	}
	return out, nil
}
