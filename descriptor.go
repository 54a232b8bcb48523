package heritage

import "fmt"

// Callable is a member value that can be invoked with a receiver.
// Identity between callables is pointer identity.
type Callable interface {
	Invoke(this *Object, args ...any) (any, error)
}

// Method is a named callable backed by a Go function.
type Method struct {
	Name string
	Fn   func(this *Object, args ...any) (any, error)
}

// NewMethod wraps fn as a Method.
func NewMethod(name string, fn func(this *Object, args ...any) (any, error)) *Method {
	return &Method{Name: name, Fn: fn}
}

// Invoke calls the method with this as receiver.
func (m *Method) Invoke(this *Object, args ...any) (any, error) {
	if m == nil || m.Fn == nil {
		return nil, fmt.Errorf("%w: nil method", ErrNotCallable)
	}
	return m.Fn(this, args...)
}

func (m *Method) String() string {
	return "method " + m.Name
}

// Getter reads an accessor member for a receiver.
type Getter func(this *Object) any

// Setter writes an accessor member for a receiver.
type Setter func(this *Object, v any)

// Descriptor is the metadata of one member: either an accessor (Get and/or
// Set) or a data member (Value, Writable). A descriptor carrying both is
// malformed.
//
// Data descriptors must be built with DataDescriptor, Field or Func: a
// literal such as &Descriptor{Value: 1} is not marked as data and Define
// rejects it with ErrMalformed. Accessor literals with Get or Set are valid.
type Descriptor struct {
	Get Getter
	Set Setter

	Value    any
	Writable bool

	Configurable bool
	Enumerable   bool

	data bool
}

// AccessorDescriptor builds an accessor member descriptor.
func AccessorDescriptor(get Getter, set Setter, configurable, enumerable bool) *Descriptor {
	return &Descriptor{Get: get, Set: set, Configurable: configurable, Enumerable: enumerable}
}

// DataDescriptor builds a data member descriptor. A Callable value makes it a
// callable member.
func DataDescriptor(value any, writable, configurable, enumerable bool) *Descriptor {
	return &Descriptor{Value: value, Writable: writable, Configurable: configurable, Enumerable: enumerable, data: true}
}

// Field is a writable, configurable, enumerable data member, the default
// shape of an assigned property.
func Field(value any) *Descriptor {
	return DataDescriptor(value, true, true, true)
}

// Func is a writable, configurable, non-enumerable callable member, the
// shape a class method definition produces.
func Func(name string, fn func(this *Object, args ...any) (any, error)) *Descriptor {
	return DataDescriptor(NewMethod(name, fn), true, true, false)
}

// Property is a configurable, non-enumerable accessor member, the shape a
// class getter/setter pair produces.
func Property(get Getter, set Setter) *Descriptor {
	return AccessorDescriptor(get, set, true, false)
}

func (d *Descriptor) clone() *Descriptor {
	c := *d
	return &c
}

func hasAccessorParts(d *Descriptor) bool {
	return d.Get != nil || d.Set != nil
}

func wellFormed(d *Descriptor) bool {
	if d == nil {
		return false
	}
	return hasAccessorParts(d) != d.data
}

// IsAccessor reports whether d describes an accessor member.
func IsAccessor(d *Descriptor) bool {
	return wellFormed(d) && hasAccessorParts(d)
}

// IsData reports whether d describes a data member.
func IsData(d *Descriptor) bool {
	return wellFormed(d) && d.data
}

// IsCallable reports whether d is a data member holding a Callable.
func IsCallable(d *Descriptor) bool {
	if !IsData(d) {
		return false
	}
	return isCallableValue(d.Value)
}

// IsPlainValue reports whether d is a data member holding a non-callable value.
func IsPlainValue(d *Descriptor) bool {
	return IsData(d) && !isCallableValue(d.Value)
}

func isCallableValue(v any) bool {
	switch c := v.(type) {
	case *Method:
		return c != nil
	case *Factory:
		return c != nil
	case Callable:
		return c != nil
	}
	return false
}
