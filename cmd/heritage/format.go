package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jward/heritage/internal/plan"
)

func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(os.Stdout, result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// formatClassesText formats inspected classes as one block per class.
func formatClassesText(w io.Writer, classes []CLIClass) {
	for i, c := range classes {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (line %d)\n", c.Name, c.Line)
		fmt.Fprintf(w, "  chain: %s\n", strings.Join(c.Chain, " -> "))
		formatMembersText(w, "  shape", c.Shape)
		if c.Instance != nil {
			formatMembersText(w, "  instance", *c.Instance)
		}
		if len(c.Skipped) > 0 {
			fmt.Fprintf(w, "  skipped: %s\n", strings.Join(c.Skipped, ", "))
		}
	}
}

func formatMembersText(w io.Writer, prefix string, m CLIMembers) {
	fmt.Fprintf(w, "%s accessors: %s\n", prefix, joinOrDash(m.Accessors))
	fmt.Fprintf(w, "%s functions: %s\n", prefix, joinOrDash(m.Functions))
	fmt.Fprintf(w, "%s values:    %s\n", prefix, joinOrDash(m.Values))
}

// formatComposeText formats a compose result as a step table followed by
// the host's extensions and members.
func formatComposeText(w io.Writer, c CLICompose) {
	host := c.Host
	if c.Instance {
		host += " (instance)"
	}
	fmt.Fprintf(w, "Host: %s\n", host)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tOK\tMEMBER")
	for _, s := range c.Steps {
		fmt.Fprintf(tw, "%s\t%t\t%t\n", s.Source, s.OK, s.Member)
	}
	tw.Flush()
	fmt.Fprintf(w, "extensions: %s\n", joinOrDash(c.Extensions))
	formatMembersText(w, "members", c.Members)
}

// formatReportsText formats plan reports as one step table per plan.
func formatReportsText(w io.Writer, reports []*plan.Report) {
	for i, r := range reports {
		if r == nil {
			continue
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "Plan: %s\n", r.Plan)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "STEP\tHOST\tSOURCE\tOK\tMEMBER\tEXTENSIONS")
		for _, s := range r.Steps {
			host := s.Host
			if s.Instance {
				host += "*"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%t\t%s\n",
				s.Index, host, s.Source, s.OK, s.Member, joinOrDash(s.Extensions))
		}
		tw.Flush()
	}
}

// formatCompositionsText formats journaled compositions as aligned columns.
func formatCompositionsText(w io.Writer, comps []CLIComposition) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tHOST\tSOURCE\tKIND\tREGISTERED\tACCESSORS\tDATA\tRESULT\tREFUSED")
	for _, c := range comps {
		refused := 0
		for _, o := range c.Outcomes {
			if !o.Installed {
				refused++
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t%t\t%t\t%t\t%d\n",
			c.ID, c.Host, c.Source, c.SourceKind, c.Registered, c.AccessorsOK, c.DataOK, c.Result, refused)
	}
	tw.Flush()
}

// formatOutcomesText formats member outcomes as aligned columns.
func formatOutcomesText(w io.Writer, outcomes []CLIOutcome) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LEVEL\tSHAPE\tNAME\tKIND\tREASON")
	for _, o := range outcomes {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", o.Level, o.Shape, o.Name, o.Kind, o.Reason)
	}
	tw.Flush()
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLIClass:
		formatClassesText(w, v)
	case CLICompose:
		formatComposeText(w, v)
	case []*plan.Report:
		formatReportsText(w, v)
	case []CLIComposition:
		formatCompositionsText(w, v)
	case []CLIOutcome:
		formatOutcomesText(w, v)
	case []string:
		for _, s := range v {
			fmt.Fprintln(w, s)
		}
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

func joinOrDash(s []string) string {
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, ", ")
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
