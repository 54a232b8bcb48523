package main

import (
	"time"

	"github.com/jward/heritage"
	"github.com/jward/heritage/internal/declare"
)

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLIMembers is an object's own members, classified the way the
// replicators see them.
type CLIMembers struct {
	Accessors []string `json:"accessors"`
	Functions []string `json:"functions"`
	Values    []string `json:"values"`
}

// CLIClass is a JSON-friendly declared class.
type CLIClass struct {
	Name     string      `json:"name"`
	Parent   string      `json:"parent,omitempty"`
	Line     int         `json:"line"`
	Chain    []string    `json:"chain"`
	Shape    CLIMembers  `json:"shape"`
	Instance *CLIMembers `json:"instance,omitempty"`
	Skipped  []string    `json:"skipped,omitempty"`
}

// CLIComposeStep is one source composed onto the host.
type CLIComposeStep struct {
	Source string `json:"source"`
	OK     bool   `json:"ok"`
	Member bool   `json:"member"`
}

// CLICompose is the outcome of the compose command.
type CLICompose struct {
	Host       string           `json:"host"`
	Instance   bool             `json:"instance"`
	Steps      []CLIComposeStep `json:"steps"`
	Extensions []string         `json:"extensions"`
	Members    CLIMembers       `json:"members"`
}

// OK reports whether every source composed cleanly.
func (c CLICompose) OK() bool {
	for _, s := range c.Steps {
		if !s.OK {
			return false
		}
	}
	return true
}

// CLIOutcome is a JSON-friendly member outcome.
type CLIOutcome struct {
	Level     int    `json:"level"`
	Shape     string `json:"shape"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Installed bool   `json:"installed"`
	Reason    string `json:"reason,omitempty"`
}

// CLIComposition is a journaled composition with its outcomes.
type CLIComposition struct {
	ID          int64        `json:"id"`
	Host        string       `json:"host"`
	Source      string       `json:"source"`
	SourceKind  string       `json:"source_kind"`
	Registered  bool         `json:"registered"`
	AccessorsOK bool         `json:"accessors_ok"`
	DataOK      bool         `json:"data_ok"`
	Result      bool         `json:"result"`
	CreatedAt   time.Time    `json:"created_at"`
	Outcomes    []CLIOutcome `json:"outcomes"`
}

func membersOf(c *heritage.Cloner, o *heritage.Object) CLIMembers {
	return CLIMembers{
		Accessors: nonNil(c.AccessorNames(o)),
		Functions: nonNil(c.FunctionNames(o)),
		Values:    nonNil(c.ValueNames(o)),
	}
}

func classToCLI(c *heritage.Cloner, cat *declare.Catalog, name string) CLIClass {
	cls, _ := cat.Class(name)
	f, _ := cat.Factory(name)
	out := CLIClass{
		Name:    cls.Name,
		Parent:  cls.Parent,
		Line:    cls.Line,
		Chain:   cat.Chain(name),
		Shape:   membersOf(c, f.Shape()),
		Skipped: cls.Skipped,
	}
	// Classes whose constructors need arguments may still build with nil
	// parameters; those that refuse are reported without instance members.
	if inst, err := f.Construct(); err == nil {
		m := membersOf(c, inst)
		out.Instance = &m
	}
	return out
}

func compositionToCLI(comp *heritage.Composition, outcomes []*heritage.MemberOutcome) CLIComposition {
	out := CLIComposition{
		ID:          comp.ID,
		Host:        comp.Host,
		Source:      comp.Source,
		SourceKind:  comp.SourceKind,
		Registered:  comp.Registered,
		AccessorsOK: comp.AccessorsOK,
		DataOK:      comp.DataOK,
		Result:      comp.Result,
		CreatedAt:   comp.CreatedAt,
		Outcomes:    make([]CLIOutcome, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		out.Outcomes = append(out.Outcomes, outcomeToCLI(o))
	}
	return out
}

func outcomeToCLI(o *heritage.MemberOutcome) CLIOutcome {
	return CLIOutcome{
		Level:     o.Level,
		Shape:     o.Shape,
		Name:      o.Name,
		Kind:      o.Kind,
		Installed: o.Installed,
		Reason:    o.Reason,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
