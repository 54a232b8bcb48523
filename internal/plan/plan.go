// Package plan reads and executes composition plans: TOML files naming a
// set of class declarations and an ordered list of compositions between
// those classes.
package plan

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/jward/heritage"
)

// Plan is a declarations file set plus the compositions to run over it.
type Plan struct {
	Name         string          `toml:"name"`
	Declarations []string        `toml:"declarations" validate:"required,min=1,dive,required"`
	Defaults     map[string]bool `toml:"defaults" validate:"omitempty,dive,keys,oneof=register mirror_getters_and_setters override_getters_and_setters mirror_functions override_functions mirror_others override_others,endkeys"`
	Steps        []Step          `toml:"step" validate:"required,min=1,dive"`

	dir string
}

// Step composes Source onto Host. Host is the class's shape unless
// Instance is set, in which case one instance of the class is constructed
// per plan run and reused by every step naming it.
type Step struct {
	Host     string          `toml:"host" validate:"required"`
	Source   string          `toml:"source" validate:"required,nefield=Host"`
	Instance bool            `toml:"instance"`
	Args     []any           `toml:"args"`
	Config   map[string]bool `toml:"config" validate:"omitempty,dive,keys,oneof=register mirror_getters_and_setters override_getters_and_setters mirror_functions override_functions mirror_others override_others,endkeys"`
}

var validate = validator.New()

// Parse decodes and validates a plan. Unknown keys are rejected.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("plan: parse: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	for i := range p.Steps {
		p.Steps[i].Args = normalizeArgs(p.Steps[i].Args)
	}
	return &p, nil
}

// Load reads a plan file. Declaration paths are resolved against the
// plan's directory.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.dir = filepath.Dir(path)
	if p.Name == "" {
		p.Name = filepath.Base(path)
	}
	return p, nil
}

// Validate checks the plan's structure.
func (p *Plan) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("plan: invalid: %w", err)
	}
	return nil
}

// DeclarationPaths returns the declaration files, resolved against the
// plan's directory when it was loaded from disk.
func (p *Plan) DeclarationPaths() []string {
	paths := make([]string, len(p.Declarations))
	for i, d := range p.Declarations {
		if p.dir != "" && !filepath.IsAbs(d) {
			d = filepath.Join(p.dir, d)
		}
		paths[i] = d
	}
	return paths
}

// StepConfig returns the effective config of step i: defaults, then the
// plan's defaults, then the step's own keys.
func (p *Plan) StepConfig(i int) (heritage.Config, error) {
	merged := make(map[string]bool, len(p.Defaults)+len(p.Steps[i].Config))
	for k, v := range p.Defaults {
		merged[k] = v
	}
	for k, v := range p.Steps[i].Config {
		merged[k] = v
	}
	data, err := toml.Marshal(merged)
	if err != nil {
		return heritage.Config{}, fmt.Errorf("plan: step %d config: %w", i+1, err)
	}
	cfg, err := heritage.ParseConfig(data)
	if err != nil {
		return heritage.Config{}, fmt.Errorf("plan: step %d: %w", i+1, err)
	}
	return cfg, nil
}

// normalizeArgs turns TOML integers into int, matching what script and
// class initializers produce.
func normalizeArgs(args []any) []any {
	for i, a := range args {
		switch v := a.(type) {
		case int64:
			args[i] = int(v)
		case []any:
			args[i] = normalizeArgs(v)
		}
	}
	return args
}
