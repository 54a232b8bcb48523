package heritage

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
)

const tempSuperPrefix = "__tempSuperMethod"

// InstallSuper gives host the super member. It reports false when a callable
// super is already reachable or host cannot accept it.
func (c *Cloner) InstallSuper(host *Object) bool {
	return c.installDispatcher(host, SuperMember, c.superMethod)
}

// InstallSuperFrom gives host the superFrom member.
func (c *Cloner) InstallSuperFrom(host *Object) bool {
	return c.installDispatcher(host, SuperFromMember, c.superFromMethod)
}

func (c *Cloner) installDispatcher(host *Object, name string, m *Method) bool {
	if host == nil {
		return false
	}
	if _, ok := host.Get(name).(Callable); ok {
		return false
	}
	if err := host.Define(name, Field(m)); err != nil {
		return trace(c.tracer, "could not install "+name+" on "+host.SourceName(), err, false)
	}
	return true
}

// Super invokes the nearest registered implementation of name that differs
// from host's current one, with host as receiver. found is false when no
// extension offers a distinct implementation.
func (c *Cloner) Super(host *Object, name string, args ...any) (result any, found bool, err error) {
	if host == nil || name == "" {
		return nil, false, nil
	}
	current := callableAt(host, name)
	for _, ext := range ExtensionsOf(host) {
		shape := shapeOfSource(ext)
		if shape == nil {
			continue
		}
		impl := callableAt(shape, name)
		if impl == nil || sameCallable(impl, current) {
			continue
		}
		return c.dispatch(host, name, impl, args)
	}
	return nil, false, nil
}

// SuperFrom invokes source's implementation of name with host as receiver.
// source must be a registered extension of host and its implementation must
// differ from host's current one.
func (c *Cloner) SuperFrom(host *Object, source Source, name string, args ...any) (result any, found bool, err error) {
	if host == nil || name == "" || isNilSource(source) || !hasExtension(host, source) {
		return nil, false, nil
	}
	shape := shapeOfSource(source)
	if shape == nil {
		return nil, false, nil
	}
	impl := callableAt(shape, name)
	if impl == nil || sameCallable(impl, callableAt(host, name)) {
		return nil, false, nil
	}
	return c.dispatch(host, name, impl, args)
}

// dispatch binds impl to a temporary member of host for the duration of one
// call. The binding is removed on every exit path.
func (c *Cloner) dispatch(host *Object, name string, impl Callable, args []any) (any, bool, error) {
	tmp := tempSuperPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := host.Define(tmp, DataDescriptor(impl, true, true, false)); err != nil {
		return nil, true, fmt.Errorf("super %s: bind: %w", name, err)
	}
	defer host.Delete(tmp)

	if name == ConstructorMember {
		ctor, ok := impl.(interface {
			Construct(args ...any) (*Object, error)
		})
		if !ok {
			return nil, true, fmt.Errorf("super %s: %w", name, ErrNotConstructor)
		}
		obj, err := ctor.Construct(args...)
		return obj, true, err
	}
	v, err := host.Call(tmp, args...)
	return v, true, err
}

func callableAt(o *Object, name string) Callable {
	d, _, ok := o.Lookup(name)
	if !ok || !IsCallable(d) {
		return nil
	}
	fn, _ := d.Value.(Callable)
	return fn
}

func sameCallable(a, b Callable) bool {
	if a == nil || b == nil {
		return false
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func (c *Cloner) newSuperMethods() (super, superFrom *Method) {
	super = NewMethod(SuperMember, func(this *Object, args ...any) (any, error) {
		if len(args) == 0 {
			return nil, nil
		}
		name, _ := args[0].(string)
		v, _, err := c.Super(this, name, args[1:]...)
		return v, err
	})
	superFrom = NewMethod(SuperFromMember, func(this *Object, args ...any) (any, error) {
		if len(args) < 2 {
			return nil, nil
		}
		src, _ := args[0].(Source)
		name, _ := args[1].(string)
		v, _, err := c.SuperFrom(this, src, name, args[2:]...)
		return v, err
	})
	return super, superFrom
}
