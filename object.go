package heritage

import (
	"fmt"
	"slices"
	"sync"
)

// Object is a dynamic object: a set of named member descriptors plus an
// optional ancestor shape. Reads walk the shape chain; writes land on the
// object itself.
//
// The member map is guarded by a mutex, but no lock is held while getters,
// setters or methods run. A composition touches many members and is not
// atomic; callers serialize compositions on the same host.
type Object struct {
	mu      sync.RWMutex
	proto   *Object
	members map[string]*Descriptor
	order   []string
	sealed  bool
	label   string
}

// Source is anything the engine can compose onto a host: a shape or a live
// instance (*Object), or a factory (*Factory).
type Source interface {
	SourceName() string
}

var (
	_ Source = (*Object)(nil)
	_ Source = (*Factory)(nil)
)

func newObject(proto *Object) *Object {
	return &Object{proto: proto, members: make(map[string]*Descriptor)}
}

// NewObject returns an empty extensible object whose shape is ObjectShape.
func NewObject() *Object {
	return newObject(ObjectShape)
}

// NewBareObject returns an empty object with no shape at all. It has no
// reachable constructor and therefore cannot act as a shape.
func NewBareObject() *Object {
	return newObject(nil)
}

// NewShape creates a shape named name whose ancestor is parent (ObjectShape
// when nil). The shape owns a constructor bound to a fresh factory.
func NewShape(name string, parent *Object) *Object {
	if parent == nil {
		parent = ObjectShape
	}
	return newFactoryOver(name, parent, nil).Shape()
}

// Named sets a diagnostic label and returns o.
func (o *Object) Named(label string) *Object {
	o.mu.Lock()
	o.label = label
	o.mu.Unlock()
	return o
}

// Proto returns the immediate ancestor shape, or nil.
func (o *Object) Proto() *Object {
	if o == nil {
		return nil
	}
	return o.proto
}

// SourceName describes o for traces and journal records.
func (o *Object) SourceName() string {
	if o == nil {
		return "<nil>"
	}
	o.mu.RLock()
	label := o.label
	own := o.members["constructor"]
	o.mu.RUnlock()
	if label != "" {
		return label
	}
	if own != nil {
		if f, ok := own.Value.(*Factory); ok {
			return f.Name + ".shape"
		}
	}
	if f := Producer(o); f != nil {
		return f.Name + " instance"
	}
	return "object"
}

func (o *Object) String() string {
	return o.SourceName()
}

// Own returns a copy of the own member descriptor for name.
func (o *Object) Own(name string) (*Descriptor, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	d, ok := o.members[name]
	if !ok {
		return nil, false
	}
	return d.clone(), true
}

// HasOwn reports whether o owns a member called name.
func (o *Object) HasOwn(name string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.members[name]
	return ok
}

// OwnNames returns own member names in definition order.
func (o *Object) OwnNames() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Clone(o.order)
}

// Lookup finds name on o or its shape chain and returns the descriptor and
// the object that owns it.
func (o *Object) Lookup(name string) (*Descriptor, *Object, bool) {
	for cur := o; cur != nil; cur = cur.proto {
		if d, ok := cur.Own(name); ok {
			return d, cur, true
		}
	}
	return nil, nil, false
}

// Has reports whether name is reachable from o.
func (o *Object) Has(name string) bool {
	_, _, ok := o.Lookup(name)
	return ok
}

// Define installs d as the own member name, replacing a configurable member
// of the same name.
func (o *Object) Define(name string, d *Descriptor) error {
	if name == "" {
		return fmt.Errorf("%w: empty member name", ErrMalformed)
	}
	if !wellFormed(d) {
		return fmt.Errorf("%w: member %q", ErrMalformed, name)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	existing, ok := o.members[name]
	switch {
	case ok && !existing.Configurable:
		return fmt.Errorf("%w: member %q", ErrNotConfigurable, name)
	case !ok && o.sealed:
		return fmt.Errorf("%w: cannot add %q", ErrNotExtensible, name)
	}
	if !ok {
		o.order = append(o.order, name)
	}
	o.members[name] = d.clone()
	return nil
}

// Delete removes the own member name. It reports false only when the member
// exists and is not configurable.
func (o *Object) Delete(name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	d, ok := o.members[name]
	if !ok {
		return true
	}
	if !d.Configurable {
		return false
	}
	delete(o.members, name)
	o.order = slices.DeleteFunc(o.order, func(n string) bool { return n == name })
	return true
}

// Get reads name through the shape chain. Accessors run their getter with o
// as receiver. A missing member reads as nil.
func (o *Object) Get(name string) any {
	d, _, ok := o.Lookup(name)
	if !ok {
		return nil
	}
	if IsAccessor(d) {
		if d.Get == nil {
			return nil
		}
		return d.Get(o)
	}
	return d.Value
}

// Set assigns name. An accessor found on the chain runs its setter; an own
// writable data member is updated in place; otherwise a new own field is
// created.
func (o *Object) Set(name string, v any) error {
	d, owner, ok := o.Lookup(name)
	if ok && IsAccessor(d) {
		if d.Set == nil {
			return fmt.Errorf("%w: %q has no setter", ErrReadOnly, name)
		}
		d.Set(o, v)
		return nil
	}
	if ok && !d.Writable {
		return fmt.Errorf("%w: %q", ErrReadOnly, name)
	}
	if ok && owner == o {
		o.mu.Lock()
		defer o.mu.Unlock()
		if cur, still := o.members[name]; still && cur.data {
			cur.Value = v
			return nil
		}
	}
	return o.Define(name, Field(v))
}

// Call invokes the callable member name with o as receiver.
func (o *Object) Call(name string, args ...any) (any, error) {
	fn, ok := o.Get(name).(Callable)
	if !ok || fn == nil {
		return nil, fmt.Errorf("%w: %q on %s", ErrNotCallable, name, o.SourceName())
	}
	return fn.Invoke(o, args...)
}

// PreventExtensions stops new members from being added to o.
func (o *Object) PreventExtensions() {
	o.mu.Lock()
	o.sealed = true
	o.mu.Unlock()
}

// IsExtensible reports whether new members may be added to o.
func (o *Object) IsExtensible() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return !o.sealed
}

// Freeze makes every own member non-configurable (and data members
// read-only) and prevents extensions.
func (o *Object) Freeze() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for name, d := range o.members {
		c := d.clone()
		c.Configurable = false
		if c.data {
			c.Writable = false
		}
		o.members[name] = c
	}
	o.sealed = true
}

// Producer returns the factory reachable as o's constructor member.
func Producer(o *Object) *Factory {
	if o == nil {
		return nil
	}
	f, _ := o.Get("constructor").(*Factory)
	return f
}

// IsShape reports whether o can serve as a shape, i.e. a constructor member
// is reachable from it.
func IsShape(o *Object) bool {
	return o != nil && o.Has("constructor")
}

func shapeName(s *Object) string {
	if f := Producer(s); f != nil {
		return f.Name
	}
	return ""
}
