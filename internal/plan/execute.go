package plan

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jward/heritage"
	"github.com/jward/heritage/internal/declare"
)

// Report is the outcome of one plan run.
type Report struct {
	Plan  string       `json:"plan"`
	Steps []StepResult `json:"steps"`
}

// StepResult records one composition.
type StepResult struct {
	Index      int      `json:"index"`
	Host       string   `json:"host"`
	Source     string   `json:"source"`
	Instance   bool     `json:"instance"`
	OK         bool     `json:"ok"`
	Member     bool     `json:"member"`
	Extensions []string `json:"extensions"`
}

// OK reports whether every step succeeded.
func (r *Report) OK() bool {
	for _, s := range r.Steps {
		if !s.OK {
			return false
		}
	}
	return true
}

// Executor runs plans against one cloner.
type Executor struct {
	cloner *heritage.Cloner
	logger zerolog.Logger
}

// NewExecutor returns an Executor composing with c.
func NewExecutor(c *heritage.Cloner, logger zerolog.Logger) *Executor {
	return &Executor{cloner: c, logger: logger}
}

// Execute loads p's declarations and runs its steps in order. A step whose
// composition fails is recorded and execution continues; unknown classes
// and failed host construction abort the run.
func (e *Executor) Execute(ctx context.Context, p *Plan) (*Report, error) {
	cat, err := declare.Load(ctx, p.DeclarationPaths()...)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", p.Name, err)
	}
	return e.ExecuteCatalog(ctx, p, cat)
}

// ExecuteCatalog runs p's steps over an already built catalog.
func (e *Executor) ExecuteCatalog(ctx context.Context, p *Plan, cat *declare.Catalog) (*Report, error) {
	report := &Report{Plan: p.Name}
	instances := make(map[string]*heritage.Object)

	for i, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		host, err := e.host(cat, step, instances)
		if err != nil {
			return report, fmt.Errorf("plan %s: step %d: %w", p.Name, i+1, err)
		}
		source, err := cat.Lookup(step.Source)
		if err != nil {
			return report, fmt.Errorf("plan %s: step %d: %w", p.Name, i+1, err)
		}
		cfg, err := p.StepConfig(i)
		if err != nil {
			return report, err
		}

		ok := e.cloner.Extend(host, source, &cfg, step.Args...)
		res := StepResult{
			Index:    i + 1,
			Host:     step.Host,
			Source:   step.Source,
			Instance: step.Instance,
			OK:       ok,
			Member:   e.cloner.IsMemberOf(host, source, true),
		}
		for _, ext := range heritage.ExtensionsOf(host) {
			res.Extensions = append(res.Extensions, ext.SourceName())
		}
		report.Steps = append(report.Steps, res)

		e.logger.Debug().
			Str("plan", p.Name).
			Int("step", res.Index).
			Str("host", step.Host).
			Str("source", step.Source).
			Bool("ok", ok).
			Msg("composed")
	}
	return report, nil
}

func (e *Executor) host(cat *declare.Catalog, step Step, instances map[string]*heritage.Object) (*heritage.Object, error) {
	f, err := cat.Lookup(step.Host)
	if err != nil {
		return nil, err
	}
	if !step.Instance {
		return f.Shape(), nil
	}
	if inst, ok := instances[step.Host]; ok {
		return inst, nil
	}
	inst, err := f.Construct()
	if err != nil {
		return nil, err
	}
	inst.Named(step.Host + " instance")
	instances[step.Host] = inst
	return inst, nil
}
