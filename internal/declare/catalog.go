package declare

import (
	"context"
	"fmt"
	"os"

	"github.com/jward/heritage"
)

// Catalog holds the factories built from a set of class declarations.
// Methods become stubs answering "<Class>.<method>"; accessors are backed
// by "_<name>" data members; constructors replay their super call and
// this.<field> assignments.
type Catalog struct {
	classes   map[string]*Class
	order     []string
	factories map[string]*heritage.Factory
}

// Build creates a factory for every class. A class may extend a class
// declared later in the list; extending an unknown class is an error.
func Build(classes []*Class) (*Catalog, error) {
	c := &Catalog{
		classes:   make(map[string]*Class, len(classes)),
		factories: make(map[string]*heritage.Factory, len(classes)),
	}
	for _, cls := range classes {
		if _, dup := c.classes[cls.Name]; dup {
			return nil, fmt.Errorf("declare: class %s declared twice", cls.Name)
		}
		c.classes[cls.Name] = cls
		c.order = append(c.order, cls.Name)
	}

	building := make(map[string]bool)
	for _, name := range c.order {
		if _, err := c.build(name, building); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) build(name string, building map[string]bool) (*heritage.Factory, error) {
	if f, ok := c.factories[name]; ok {
		return f, nil
	}
	cls := c.classes[name]
	if building[name] {
		return nil, fmt.Errorf("declare: class %s extends itself", name)
	}
	building[name] = true
	defer delete(building, name)

	var parent *heritage.Factory
	switch cls.Parent {
	case "", heritage.ObjectFactory.Name:
	default:
		if _, ok := c.classes[cls.Parent]; !ok {
			return nil, fmt.Errorf("declare: class %s extends unknown class %s", name, cls.Parent)
		}
		p, err := c.build(cls.Parent, building)
		if err != nil {
			return nil, err
		}
		parent = p
	}

	f := heritage.NewFactory(cls.Name, parent, initFor(cls, parent))
	for _, acc := range cls.Accessors {
		f.Define(acc.Name, accessorFor(acc))
	}
	for _, method := range cls.Methods {
		f.Define(method, stub(cls.Name, method))
	}
	c.factories[name] = f
	return f, nil
}

func stub(owner, method string) *heritage.Descriptor {
	result := owner + "." + method
	return heritage.Func(method, func(*heritage.Object, ...any) (any, error) {
		return result, nil
	})
}

func accessorFor(acc Accessor) *heritage.Descriptor {
	field := acc.Backing()
	var get heritage.Getter
	var set heritage.Setter
	if acc.Get {
		get = func(this *heritage.Object) any { return this.Get(field) }
	}
	if acc.Set {
		set = func(this *heritage.Object, v any) { _ = this.Set(field, v) }
	}
	return heritage.Property(get, set)
}

// initFor replays a class constructor: the parent initializer first (with
// the super arguments, or the caller's when there is no constructor), then
// field initializers, then constructor assignments.
func initFor(cls *Class, parent *heritage.Factory) heritage.InitFunc {
	return func(this *heritage.Object, args ...any) error {
		if parent != nil {
			superArgs := args
			if cls.Ctor != nil {
				superArgs = nil
				for _, e := range cls.Ctor.Super {
					superArgs = append(superArgs, e.Eval(args))
				}
			}
			if _, err := parent.Invoke(this, superArgs...); err != nil {
				return err
			}
		}
		for _, f := range cls.Fields {
			if err := this.Set(f.Name, f.Value.Eval(nil)); err != nil {
				return fmt.Errorf("field %s: %w", f.Name, err)
			}
		}
		if cls.Ctor == nil {
			return nil
		}
		for _, a := range cls.Ctor.Assigns {
			if err := this.Set(a.Name, a.Value.Eval(args)); err != nil {
				return fmt.Errorf("this.%s: %w", a.Name, err)
			}
		}
		return nil
	}
}

// Load parses every file and builds one catalog over all of them. The
// language is taken from each file's extension.
func Load(ctx context.Context, paths ...string) (*Catalog, error) {
	var classes []*Class
	for _, path := range paths {
		lang, ok := LanguageForFile(path)
		if !ok {
			return nil, fmt.Errorf("declare: %s: unrecognized file type", path)
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("declare: %w", err)
		}
		parsed, err := Parse(ctx, src, lang)
		if err != nil {
			return nil, fmt.Errorf("declare: %s: %w", path, err)
		}
		classes = append(classes, parsed...)
	}
	return Build(classes)
}

// LoadSource parses src as lang and builds a catalog from it.
func LoadSource(ctx context.Context, src []byte, lang string) (*Catalog, error) {
	classes, err := Parse(ctx, src, lang)
	if err != nil {
		return nil, err
	}
	return Build(classes)
}

// Names returns class names in declaration order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// Class returns the parsed declaration for name.
func (c *Catalog) Class(name string) (*Class, bool) {
	cls, ok := c.classes[name]
	return cls, ok
}

// Factory returns the factory built for name.
func (c *Catalog) Factory(name string) (*heritage.Factory, bool) {
	f, ok := c.factories[name]
	return f, ok
}

// Lookup is Factory with an error for unknown names.
func (c *Catalog) Lookup(name string) (*heritage.Factory, error) {
	f, ok := c.factories[name]
	if !ok {
		return nil, fmt.Errorf("declare: unknown class %q", name)
	}
	return f, nil
}

// Chain returns name followed by its ancestors' names, nearest first.
func (c *Catalog) Chain(name string) []string {
	var chain []string
	for cls, ok := c.classes[name]; ok; cls, ok = c.classes[cls.Parent] {
		chain = append(chain, cls.Name)
	}
	return chain
}
