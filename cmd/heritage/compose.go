package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/heritage"
	"github.com/jward/heritage/internal/declare"
)

var (
	flagHost     string
	flagWith     string
	flagConfig   string
	flagInstance bool
)

var composeCmd = &cobra.Command{
	Use:   "compose <file>...",
	Short: "Compose declared classes onto a host class",
	Long:  "Loads the declarations, then extends the host with each --with class in order. The host is the class's shape unless --instance is set.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCompose,
}

func init() {
	composeCmd.Flags().StringVar(&flagHost, "host", "", "class to extend (required)")
	composeCmd.Flags().StringVar(&flagWith, "with", "", "comma-separated classes to compose, in order (required)")
	composeCmd.Flags().StringVar(&flagConfig, "config", "", "composition config TOML file")
	composeCmd.Flags().BoolVar(&flagInstance, "instance", false, "compose onto a fresh instance instead of the shape")
	_ = composeCmd.MarkFlagRequired("host")
	_ = composeCmd.MarkFlagRequired("with")
}

func runCompose(cmd *cobra.Command, args []string) error {
	cfg := heritage.DefaultConfig()
	if flagConfig != "" {
		loaded, err := heritage.LoadConfig(flagConfig)
		if err != nil {
			return outputError("compose", err)
		}
		cfg = loaded
	}

	cat, err := declare.Load(commandContext(cmd), args...)
	if err != nil {
		return outputError("compose", err)
	}

	j, err := openJournal()
	if err != nil {
		return outputError("compose", err)
	}
	if j != nil {
		defer j.Close()
	}

	result, err := compose(newCloner(j), cat, flagHost, splitList(flagWith), cfg, flagInstance)
	if err != nil {
		return outputError("compose", err)
	}
	return outputResult(CLIResult{Command: "compose", Results: result})
}

// compose extends host with each source in order. A refused composition is
// reported in the result, not returned as an error.
func compose(c *heritage.Cloner, cat *declare.Catalog, hostName string, sources []string, cfg heritage.Config, instance bool) (CLICompose, error) {
	result := CLICompose{Host: hostName, Instance: instance}
	if len(sources) == 0 {
		return result, fmt.Errorf("no classes to compose")
	}

	f, err := cat.Lookup(hostName)
	if err != nil {
		return result, err
	}
	host := f.Shape()
	if instance {
		host, err = f.Construct()
		if err != nil {
			return result, err
		}
		host.Named(hostName + " instance")
	}

	for _, name := range sources {
		src, err := cat.Lookup(name)
		if err != nil {
			return result, err
		}
		ok := c.Extend(host, src, &cfg)
		result.Steps = append(result.Steps, CLIComposeStep{
			Source: name,
			OK:     ok,
			Member: c.IsMemberOf(host, src, true),
		})
	}

	result.Extensions = []string{}
	for _, ext := range heritage.ExtensionsOf(host) {
		result.Extensions = append(result.Extensions, ext.SourceName())
	}
	result.Members = membersOf(c, host)
	return result, nil
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
