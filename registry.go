package heritage

import (
	"fmt"
	"reflect"
	"sync"
)

// ExtensionSet is an insertion-ordered, duplicate-free set of extension
// sources. It only grows.
type ExtensionSet struct {
	mu    sync.RWMutex
	items []Source
	index map[Source]struct{}
}

// NewExtensionSet returns an empty set.
func NewExtensionSet() *ExtensionSet {
	return &ExtensionSet{index: make(map[Source]struct{})}
}

// Add inserts src and reports whether it was new.
func (s *ExtensionSet) Add(src Source) bool {
	if isNilSource(src) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[src]; ok {
		return false
	}
	s.index[src] = struct{}{}
	s.items = append(s.items, src)
	return true
}

// Has reports whether src is in the set.
func (s *ExtensionSet) Has(src Source) bool {
	if isNilSource(src) {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[src]
	return ok
}

// Len returns the number of sources.
func (s *ExtensionSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Items returns the sources in insertion order.
func (s *ExtensionSet) Items() []Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Source(nil), s.items...)
}

func (s *ExtensionSet) String() string {
	return fmt.Sprintf("ExtensionSet(%d)", s.Len())
}

func isNilSource(src Source) bool {
	switch s := src.(type) {
	case nil:
		return true
	case *Object:
		return s == nil
	case *Factory:
		return s == nil
	}
	v := reflect.ValueOf(src)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func ownExtensionSet(o *Object) *ExtensionSet {
	d, ok := o.Own(ExtendsMember)
	if !ok || !IsData(d) {
		return nil
	}
	es, _ := d.Value.(*ExtensionSet)
	return es
}

// ExtensionsOf returns every source registered on o or on its shape chain,
// nearest first, in insertion order. It returns nil when no extension set is
// reachable.
func ExtensionsOf(o *Object) []Source {
	var (
		out   []Source
		found bool
		seen  = make(map[Source]bool)
	)
	for cur := o; cur != nil; cur = cur.proto {
		es := ownExtensionSet(cur)
		if es == nil {
			continue
		}
		found = true
		for _, src := range es.Items() {
			if !seen[src] {
				seen[src] = true
				out = append(out, src)
			}
		}
	}
	if !found {
		return nil
	}
	if out == nil {
		out = []Source{}
	}
	return out
}

func hasExtension(o *Object, src Source) bool {
	for cur := o; cur != nil; cur = cur.proto {
		if es := ownExtensionSet(cur); es != nil && es.Has(src) {
			return true
		}
	}
	return false
}

// shapeOfSource resolves a factory to its shape and accepts shapes as is.
func shapeOfSource(src Source) *Object {
	switch s := src.(type) {
	case *Factory:
		if s != nil {
			return s.shape
		}
	case *Object:
		if IsShape(s) {
			return s
		}
	}
	return nil
}

// factoryOfSource resolves a shape to the factory reachable as its
// constructor.
func factoryOfSource(src Source) *Factory {
	switch s := src.(type) {
	case *Factory:
		return s
	case *Object:
		return Producer(s)
	}
	return nil
}

func isRootFactory(f *Factory) bool {
	return f == ObjectFactory || f == FunctionFactory
}

// InstallExtensionSet gives host its own extension set. It reports false
// when host already owns one or cannot accept it.
func (c *Cloner) InstallExtensionSet(host *Object) bool {
	if host == nil || ownExtensionSet(host) != nil {
		return false
	}
	if err := host.Define(ExtendsMember, Field(NewExtensionSet())); err != nil {
		return trace(c.tracer, "could not install extension set on "+host.SourceName(), err, false)
	}
	return true
}

// InstallMemberOf gives host the instanceof member. It reports false when a
// callable instanceof is already reachable or host cannot accept it.
func (c *Cloner) InstallMemberOf(host *Object) bool {
	if host == nil {
		return false
	}
	if _, ok := host.Get(InstanceOfMember).(Callable); ok {
		return false
	}
	if err := host.Define(InstanceOfMember, Field(c.memberOf)); err != nil {
		return trace(c.tracer, "could not install instanceof on "+host.SourceName(), err, false)
	}
	return true
}

// installTypeTest hooks the source's factory so InstanceOf also sees
// emulated membership. Failure is swallowed.
func (c *Cloner) installTypeTest(src Source) (ok bool) {
	f := factoryOfSource(src)
	if f == nil || isRootFactory(f) {
		return false
	}
	if f.HasTypeTest() {
		return true
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	err := f.SetTypeTest(func(obj *Object) bool {
		return onChain(obj, f) || c.isMemberOf(obj, f, false, make(map[Source]bool))
	})
	return err == nil
}

// Register records source as an extension of host, together with every
// extension source was itself composed with.
func (c *Cloner) Register(host *Object, source Source) bool {
	return c.plain().register(host, source)
}

func (r *run) register(host *Object, source Source) bool {
	if host == nil || isNilSource(source) {
		return trace(r.tracer, "could not register an invalid host or source", nil, false)
	}
	r.InstallMemberOf(host)
	r.InstallExtensionSet(host)
	r.installTypeTest(source)

	es := ownExtensionSet(host)
	if es == nil {
		return trace(r.tracer, "host "+host.SourceName()+" has no extension set", nil, false)
	}
	if es.Add(source) {
		r.registration(host, source, true)
	}
	var inherited []Source
	switch s := source.(type) {
	case *Factory:
		inherited = ExtensionsOf(s.shape)
	case *Object:
		inherited = ExtensionsOf(s)
	}
	for _, src := range inherited {
		if es.Add(src) {
			r.registration(host, src, false)
		}
	}
	return true
}

// IsMemberOf reports whether host belongs to candidate's family, natively or
// through composition. With native set, InstanceOf is consulted as well.
func (c *Cloner) IsMemberOf(host *Object, candidate Source, native bool) bool {
	return c.isMemberOf(host, candidate, native, make(map[Source]bool))
}

func (c *Cloner) isMemberOf(host *Object, candidate Source, native bool, seen map[Source]bool) bool {
	if host == nil || isNilSource(candidate) {
		return false
	}
	f, isFactory := candidate.(*Factory)
	if isFactory && Producer(host) == f {
		return true
	}
	if shape, ok := candidate.(*Object); ok && host.proto == shape {
		return true
	}
	// Hooks are only consulted at the top of a query; recursive probes walk
	// the shape chain directly so that hook and probe cannot re-enter each
	// other forever.
	if native && isFactory {
		if len(seen) == 0 && InstanceOf(host, f) || onChain(host, f) {
			return true
		}
	}
	exts := ExtensionsOf(host)
	if exts == nil {
		return false
	}
	if hasExtension(host, candidate) {
		return true
	}
	if !isFactory {
		return false
	}
	for _, ext := range exts {
		if seen[ext] {
			continue
		}
		seen[ext] = true
		if c.probe(ext, f, native, seen) {
			return true
		}
	}
	return false
}

// probe asks whether ext, or an instance constructed from it, belongs to f.
// Construction failures count as no.
func (c *Cloner) probe(ext Source, f *Factory, native bool, seen map[Source]bool) bool {
	if shape, ok := ext.(*Object); ok && Producer(shape) == f {
		return true
	}
	ctor := factoryOfSource(ext)
	if ctor == nil || isRootFactory(ctor) {
		return false
	}
	inst, err := ctor.Construct()
	if err != nil {
		return trace(c.tracer, "membership probe for "+ctor.Name+" unavailable", err, false)
	}
	if native && onChain(inst, f) {
		return true
	}
	fn, ok := inst.Get(InstanceOfMember).(Callable)
	if !ok {
		return false
	}
	if m, ok := fn.(*Method); ok && m == c.memberOf {
		return c.isMemberOf(inst, f, true, seen)
	}
	v, err := fn.Invoke(inst, f)
	if err != nil {
		return false
	}
	yes, _ := v.(bool)
	return yes
}

func (c *Cloner) newMemberOfMethod() *Method {
	return NewMethod(InstanceOfMember, func(this *Object, args ...any) (any, error) {
		if len(args) == 0 {
			return false, nil
		}
		src, ok := args[0].(Source)
		if !ok {
			return false, nil
		}
		return c.IsMemberOf(this, src, true), nil
	})
}
