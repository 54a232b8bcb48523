package heritage

import (
	"fmt"
	"sync"
)

// InitFunc initializes a freshly constructed instance.
type InitFunc func(this *Object, args ...any) error

// Factory produces instances of a shape, like a constructor function paired
// with its prototype. The shape owns a constructor member pointing back at
// the factory.
type Factory struct {
	Name string

	shape *Object
	init  InitFunc

	mu       sync.RWMutex
	typeTest func(*Object) bool
	frozen   bool
}

// Root shapes. Chain walks stop when they reach a shape produced by either.
var (
	ObjectFactory   = newFactoryOver("Object", nil, nil)
	ObjectShape     = ObjectFactory.shape
	FunctionFactory = newFactoryOver("Function", ObjectShape, nil)
	FunctionShape   = FunctionFactory.shape
)

// NewFactory creates a factory named name whose shape descends from
// parent's shape (ObjectShape when parent is nil). It panics on an empty
// name.
func NewFactory(name string, parent *Factory, init InitFunc) *Factory {
	if name == "" {
		panic("heritage: NewFactory requires a name")
	}
	proto := ObjectShape
	if parent != nil {
		proto = parent.shape
	}
	return newFactoryOver(name, proto, init)
}

func newFactoryOver(name string, proto *Object, init InitFunc) *Factory {
	f := &Factory{Name: name, init: init}
	f.shape = newObject(proto)
	f.shape.members["constructor"] = DataDescriptor(f, true, true, false)
	f.shape.order = append(f.shape.order, "constructor")
	return f
}

// SourceName implements Source.
func (f *Factory) SourceName() string {
	if f == nil {
		return "<nil>"
	}
	return f.Name
}

func (f *Factory) String() string {
	return "factory " + f.SourceName()
}

// Shape returns the shape shared by every instance of f.
func (f *Factory) Shape() *Object {
	return f.shape
}

// Parent returns the factory producing f's ancestor shape, or nil at a root.
func (f *Factory) Parent() *Factory {
	if f.shape.proto == nil {
		return nil
	}
	return Producer(f.shape.proto)
}

// Define installs a member on f's shape.
func (f *Factory) Define(name string, d *Descriptor) *Factory {
	if err := f.shape.Define(name, d); err != nil {
		panic(fmt.Sprintf("heritage: %s.%s: %v", f.Name, name, err))
	}
	return f
}

// Construct creates an instance of f's shape and runs the initializer.
// A failing or panicking initializer yields ErrConstruct.
func (f *Factory) Construct(args ...any) (obj *Object, err error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil factory", ErrConstruct)
	}
	obj = newObject(f.shape)
	if f.init == nil {
		return obj, nil
	}
	defer func() {
		if r := recover(); r != nil {
			obj, err = nil, fmt.Errorf("%w: %s panicked: %v", ErrConstruct, f.Name, r)
		}
	}()
	if err := f.init(obj, args...); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConstruct, f.Name, err)
	}
	return obj, nil
}

// MustConstruct is Construct for callers that treat failure as a bug.
func (f *Factory) MustConstruct(args ...any) *Object {
	obj, err := f.Construct(args...)
	if err != nil {
		panic(err)
	}
	return obj
}

// Invoke runs f's initializer against an existing receiver, the way a
// constructor is applied to a subclass instance.
func (f *Factory) Invoke(this *Object, args ...any) (any, error) {
	if f.init == nil {
		return nil, nil
	}
	return nil, f.init(this, args...)
}

// Freeze forbids installing a type-test hook on f.
func (f *Factory) Freeze() {
	f.mu.Lock()
	f.frozen = true
	f.mu.Unlock()
}

// SetTypeTest installs fn as f's type-test hook; InstanceOf defers to it.
func (f *Factory) SetTypeTest(fn func(*Object) bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.frozen {
		return fmt.Errorf("%w: %s", ErrFrozen, f.Name)
	}
	f.typeTest = fn
	return nil
}

// HasTypeTest reports whether f carries a type-test hook.
func (f *Factory) HasTypeTest() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.typeTest != nil
}

// InstanceOf is the native type test: f's hook when installed, otherwise
// whether f's shape is on obj's shape chain.
func InstanceOf(obj *Object, f *Factory) bool {
	if obj == nil || f == nil {
		return false
	}
	f.mu.RLock()
	hook := f.typeTest
	f.mu.RUnlock()
	if hook != nil {
		return hook(obj)
	}
	return onChain(obj, f)
}

func onChain(obj *Object, f *Factory) bool {
	for cur := obj.proto; cur != nil; cur = cur.proto {
		if cur == f.shape {
			return true
		}
	}
	return false
}
