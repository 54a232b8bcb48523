package heritage

import "slices"

// AccessorNames returns the own accessor members of shape, excluding
// reserved names.
func (c *Cloner) AccessorNames(shape *Object) []string {
	if shape == nil {
		return trace[[]string](c.tracer, "could not filter accessor members of an invalid shape", nil, nil)
	}
	return ownNamesWhere(shape, IsAccessor)
}

// MirrorAccessor copies source's accessor name onto host.
func (c *Cloner) MirrorAccessor(host, source *Object, name string, override bool) bool {
	return c.plain().mirrorAccessor(host, source, 0, name, override)
}

// MirrorAccessorFromInstance copies the accessor name from instance's shape.
func (c *Cloner) MirrorAccessorFromInstance(host, instance *Object, name string, override bool) bool {
	if instance == nil {
		return false
	}
	return c.MirrorAccessor(host, instance.Proto(), name, override)
}

// MirrorAccessors copies every own accessor of source onto host. It reports
// true only if all of them were installed; installed members stay installed
// either way.
func (c *Cloner) MirrorAccessors(host, source *Object, override bool) bool {
	return c.plain().mirrorAccessors(host, source, 0, override)
}

// MirrorAccessorsFromInstance runs MirrorAccessors on instance's shape.
func (c *Cloner) MirrorAccessorsFromInstance(host, instance *Object, override bool) bool {
	if instance == nil {
		return false
	}
	return c.MirrorAccessors(host, instance.Proto(), override)
}

// MirrorAccessorChain runs MirrorAccessors on source and then on each
// ancestor shape below the Object/Function roots. Only source itself may
// override host members.
func (c *Cloner) MirrorAccessorChain(host, source *Object, override bool) bool {
	return c.plain().mirrorAccessorChain(host, source, override)
}

// MirrorAccessorChainFromInstance runs MirrorAccessorChain from instance's
// shape.
func (c *Cloner) MirrorAccessorChainFromInstance(host, instance *Object, override bool) bool {
	return c.plain().mirrorAccessorChainFromInstance(host, instance, override)
}

func (r *run) mirrorAccessorChainFromInstance(host, instance *Object, override bool) bool {
	if instance == nil {
		return false
	}
	return r.mirrorAccessorChain(host, instance.Proto(), override)
}

func (r *run) mirrorAccessorChain(host, source *Object, override bool) bool {
	return walkChain(source, func(shape *Object, level int) bool {
		return r.mirrorAccessors(host, shape, level, override && level == 0)
	})
}

func (r *run) mirrorAccessors(host, source *Object, level int, override bool) bool {
	if host == nil {
		return false
	}
	if !host.IsExtensible() {
		return trace(r.tracer, "could not mirror accessor members onto a non-extensible object", nil, false)
	}
	names := r.AccessorNames(source)
	if names == nil {
		return false
	}
	mirrored := 0
	for _, name := range names {
		if r.mirrorAccessor(host, source, level, name, override) {
			mirrored++
		}
	}
	return mirrored == len(names)
}

func (r *run) mirrorAccessor(host, source *Object, level int, name string, override bool) bool {
	if isReserved(name) {
		return false
	}
	d, reason := r.clonable(host, source, name, override)
	if reason == "" && !IsAccessor(d) {
		reason = reasonMalformed
	}
	if reason == "" {
		if err := host.Define(name, AccessorDescriptor(d.Get, d.Set, d.Configurable, d.Enumerable)); err != nil {
			reason = trace(r.tracer, "could not install accessor "+name, err, reasonInstall)
		}
	}
	r.outcome(level, source, name, kindAccessor, reason)
	return reason == ""
}

// walkChain applies level to source and then to its ancestors. A failure on
// source ends the walk with false; afterwards the walk continues while the
// previous level succeeded and reports the last level's verdict.
func walkChain(source *Object, level func(shape *Object, depth int) bool) bool {
	if !level(source, 0) {
		return false
	}
	last := true
	cur := source
	for depth := 1; last; depth++ {
		cur = cur.Proto()
		if isChainRoot(cur) {
			break
		}
		last = level(cur, depth)
	}
	return last
}

// walkWholeChain applies level to source and every ancestor up to the
// roots, whatever each level reports. The verdict holds only if every level
// succeeded.
func walkWholeChain(source *Object, level func(shape *Object, depth int) bool) bool {
	ok := level(source, 0)
	if source == nil {
		return ok
	}
	for cur, depth := source.Proto(), 1; !isChainRoot(cur); cur, depth = cur.Proto(), depth+1 {
		ok = level(cur, depth) && ok
	}
	return ok
}

func isChainRoot(shape *Object) bool {
	if shape == nil || shape == ObjectShape || shape == FunctionShape {
		return true
	}
	name := shapeName(shape)
	return name == "" || name == ObjectFactory.Name || name == FunctionFactory.Name
}

func ownNamesWhere(o *Object, keep func(*Descriptor) bool) []string {
	names := append([]string{}, o.OwnNames()...)
	return slices.DeleteFunc(names, func(name string) bool {
		if isReserved(name) {
			return true
		}
		d, ok := o.Own(name)
		return !ok || !keep(d)
	})
}
