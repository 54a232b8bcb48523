package heritage

// Member names the engine depends on. Neither replicator ever copies them.
const (
	ConstructorMember = "constructor"
	SuperMember       = "super"
	SuperFromMember   = "superFrom"
	InstanceOfMember  = "instanceof"
	ExtendsMember     = "__extends"
)

var reservedNames = map[string]bool{
	ConstructorMember: true,
	SuperMember:       true,
	SuperFromMember:   true,
	InstanceOfMember:  true,
	ExtendsMember:     true,
}

// IsReserved reports whether name is one of the engine's own member names.
func IsReserved(name string) bool {
	return isReserved(name)
}

func isReserved(name string) bool {
	return reservedNames[name]
}

// DataOptions selects which data members are mirrored and whether existing
// host members may be replaced.
type DataOptions struct {
	MirrorFunctions   bool
	MirrorOthers      bool
	OverrideFunctions bool
	OverrideOthers    bool
}

func dataOptions(cfg Config) DataOptions {
	return DataOptions{
		MirrorFunctions:   cfg.MirrorFunctions,
		MirrorOthers:      cfg.MirrorOthers,
		OverrideFunctions: cfg.OverrideFunctions,
		OverrideOthers:    cfg.OverrideOthers,
	}
}

// DataNames returns the own data members of shape, excluding reserved names.
func (c *Cloner) DataNames(shape *Object) []string {
	if shape == nil {
		return trace[[]string](c.tracer, "could not filter data members of an invalid shape", nil, nil)
	}
	return ownNamesWhere(shape, IsData)
}

// FunctionNames returns the own callable members of shape, excluding
// reserved names.
func (c *Cloner) FunctionNames(shape *Object) []string {
	if shape == nil {
		return trace[[]string](c.tracer, "could not filter function members of an invalid shape", nil, nil)
	}
	return ownNamesWhere(shape, IsCallable)
}

// ValueNames returns the own plain-value members of shape, excluding
// reserved names.
func (c *Cloner) ValueNames(shape *Object) []string {
	if shape == nil {
		return trace[[]string](c.tracer, "could not filter value members of an invalid shape", nil, nil)
	}
	return ownNamesWhere(shape, IsPlainValue)
}

// MirrorDataMember copies source's data member name onto host.
func (c *Cloner) MirrorDataMember(host, source *Object, name string, override bool) bool {
	return c.plain().mirrorDataMember(host, source, 0, name, kindOf(source, name), override)
}

// MirrorDataMemberFromInstance copies the data member name from instance's
// shape.
func (c *Cloner) MirrorDataMemberFromInstance(host, instance *Object, name string, override bool) bool {
	if instance == nil {
		return false
	}
	return c.MirrorDataMember(host, instance.Proto(), name, override)
}

// MirrorData copies the callable and/or plain-value members of source onto
// host. With both populations disabled there is nothing to do and the call
// fails.
func (c *Cloner) MirrorData(host, source *Object, opts DataOptions) bool {
	return c.plain().mirrorData(host, source, 0, opts)
}

// MirrorDataFromInstance runs MirrorData on instance's shape.
func (c *Cloner) MirrorDataFromInstance(host, instance *Object, opts DataOptions) bool {
	if instance == nil {
		return false
	}
	return c.MirrorData(host, instance.Proto(), opts)
}

// MirrorDataChain runs MirrorData on source and each of its ancestor shapes.
// A refused member does not stop the walk; the result is true only if every
// level installed all of its members. Only source itself may override host
// members.
func (c *Cloner) MirrorDataChain(host, source *Object, opts DataOptions) bool {
	return c.plain().mirrorDataChain(host, source, opts)
}

// MirrorDataChainFromInstance runs MirrorDataChain from instance's shape.
func (c *Cloner) MirrorDataChainFromInstance(host, instance *Object, opts DataOptions) bool {
	return c.plain().mirrorDataChainFromInstance(host, instance, opts)
}

func (r *run) mirrorDataChainFromInstance(host, instance *Object, opts DataOptions) bool {
	if instance == nil {
		return false
	}
	return r.mirrorDataChain(host, instance.Proto(), opts)
}

func (r *run) mirrorDataChain(host, source *Object, opts DataOptions) bool {
	return walkWholeChain(source, func(shape *Object, level int) bool {
		o := opts
		if level > 0 {
			o.OverrideFunctions, o.OverrideOthers = false, false
		}
		return r.mirrorData(host, shape, level, o)
	})
}

func (r *run) mirrorData(host, source *Object, level int, opts DataOptions) bool {
	if !opts.MirrorFunctions && !opts.MirrorOthers {
		return false
	}
	if host == nil {
		return false
	}
	if !host.IsExtensible() {
		return trace(r.tracer, "could not mirror data members onto a non-extensible object", nil, false)
	}
	ok := true
	if opts.MirrorFunctions {
		names := r.FunctionNames(source)
		if names == nil {
			return false
		}
		for _, name := range names {
			ok = r.mirrorDataMember(host, source, level, name, kindFunction, opts.OverrideFunctions) && ok
		}
	}
	if opts.MirrorOthers {
		names := r.ValueNames(source)
		if names == nil {
			return false
		}
		for _, name := range names {
			ok = r.mirrorDataMember(host, source, level, name, kindValue, opts.OverrideOthers) && ok
		}
	}
	return ok
}

func (r *run) mirrorDataMember(host, source *Object, level int, name, kind string, override bool) bool {
	if isReserved(name) {
		return false
	}
	d, reason := r.clonable(host, source, name, override)
	if reason == "" && !IsData(d) {
		reason = reasonMalformed
	}
	if reason == "" {
		if err := host.Define(name, DataDescriptor(d.Value, d.Writable, d.Configurable, d.Enumerable)); err != nil {
			reason = trace(r.tracer, "could not install data member "+name, err, reasonInstall)
		}
	}
	r.outcome(level, source, name, kind, reason)
	return reason == ""
}

func kindOf(o *Object, name string) string {
	if o == nil {
		return kindValue
	}
	d, _ := o.Own(name)
	switch {
	case IsAccessor(d):
		return kindAccessor
	case IsCallable(d):
		return kindFunction
	}
	return kindValue
}
