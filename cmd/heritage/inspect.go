package main

import (
	"github.com/spf13/cobra"

	"github.com/jward/heritage"
	"github.com/jward/heritage/internal/declare"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>...",
	Short: "List declared classes, their chains and classified members",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	cat, err := declare.Load(commandContext(cmd), args...)
	if err != nil {
		return outputError("inspect", err)
	}
	return outputResult(CLIResult{Command: "inspect", Results: inspectCatalog(heritage.New(), cat)})
}

func inspectCatalog(c *heritage.Cloner, cat *declare.Catalog) []CLIClass {
	names := cat.Names()
	classes := make([]CLIClass, 0, len(names))
	for _, name := range names {
		classes = append(classes, classToCLI(c, cat, name))
	}
	return classes
}
