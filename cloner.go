package heritage

import (
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/jward/heritage/internal/store"
)

// Member kinds as recorded in the journal.
const (
	kindAccessor = store.KindAccessor
	kindFunction = store.KindFunction
	kindValue    = store.KindValue
)

// Source kinds as recorded in the journal.
const (
	sourceShape   = "shape"
	sourceFactory = "factory"
)

// Cloner composes extension sources onto hosts. The zero value is not
// usable; create one with New. A Cloner holds no per-host state, so one
// instance can serve any number of hosts.
type Cloner struct {
	tracer  Tracer
	journal Journal

	memberOf        *Method
	superMethod     *Method
	superFromMethod *Method
}

// Option configures a Cloner.
type Option func(*Cloner)

// WithTracer sends refusals and anomalies to t.
func WithTracer(t Tracer) Option {
	return func(c *Cloner) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithLogger is WithTracer over a zerolog logger.
func WithLogger(l zerolog.Logger) Option {
	return WithTracer(NewLogTracer(l))
}

// WithJournal records every Extend call, with its member outcomes and
// registrations, in j.
func WithJournal(j Journal) Option {
	return func(c *Cloner) {
		c.journal = j
	}
}

// New creates a Cloner. Without options it traces nothing and keeps no
// journal.
func New(opts ...Option) *Cloner {
	c := &Cloner{tracer: NopTracer{}}
	for _, opt := range opts {
		opt(c)
	}
	c.memberOf = c.newMemberOfMethod()
	c.superMethod, c.superFromMethod = c.newSuperMethods()
	return c
}

var defaultCloner = New()

// Default returns the package-level Cloner used by the top-level functions.
func Default() *Cloner {
	return defaultCloner
}

// run is one engine call. When the Cloner keeps a journal, batch collects
// what the call did.
type run struct {
	*Cloner
	batch *store.Batch
}

func (c *Cloner) plain() *run {
	return &run{Cloner: c}
}

func (c *Cloner) begin(host *Object, source Source, kind string, cfg Config) *run {
	r := c.plain()
	if c.journal == nil {
		return r
	}
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		c.tracer.Trace("could not encode composition config", err)
	}
	r.batch = store.NewBatch(store.Composition{
		Host:       host.SourceName(),
		Source:     nameOf(source),
		SourceKind: kind,
		Config:     string(encoded),
		CreatedAt:  time.Now().UTC(),
	})
	return r
}

func nameOf(src Source) string {
	if isNilSource(src) {
		return "<nil>"
	}
	return src.SourceName()
}

func (r *run) outcome(level int, shape *Object, name, kind, reason string) {
	if r.batch == nil {
		return
	}
	r.batch.AddOutcome(store.MemberOutcome{
		Level:     level,
		Shape:     shape.SourceName(),
		Name:      name,
		Kind:      kind,
		Installed: reason == "",
		Reason:    reason,
	})
}

func (r *run) registration(host *Object, src Source, direct bool) {
	if r.batch == nil {
		return
	}
	r.batch.AddRegistration(store.Registration{
		Host:      host.SourceName(),
		Extension: nameOf(src),
		Direct:    direct,
	})
}

// finish commits the batch, if any, and hands back the composition result.
// Journal failures are traced and never change the result.
func (r *run) finish(registered, accessorsOK, dataOK bool) bool {
	result := accessorsOK && dataOK
	if r.batch == nil {
		return result
	}
	r.batch.Composition.Registered = registered
	r.batch.Composition.AccessorsOK = accessorsOK
	r.batch.Composition.DataOK = dataOK
	r.batch.Composition.Result = result
	if err := r.journal.CommitBatch(r.batch); err != nil {
		r.tracer.Trace("could not journal composition of "+r.batch.Composition.Host, err)
	}
	return result
}

// Extend composes source onto host. A factory is instantiated (with
// ctorArgs) to discover its shape; any object with a reachable constructor
// is treated as a shape. Other sources are refused.
func (c *Cloner) Extend(host *Object, source Source, cfg *Config, ctorArgs ...any) bool {
	switch s := source.(type) {
	case *Factory:
		return c.ExtendFromFactory(host, s, cfg, ctorArgs...)
	case *Object:
		if IsShape(s) {
			return c.ExtendFromShape(host, s, cfg)
		}
	}
	return trace(c.tracer, "could not extend an object by an invalid extension", nil, false)
}

// ExtendFromInstance composes the family of instance onto host: its
// producing factory when it has one, otherwise its immediate shape.
func (c *Cloner) ExtendFromInstance(host, instance *Object, cfg *Config, ctorArgs ...any) bool {
	if instance == nil {
		return trace(c.tracer, "could not extend an object by an invalid instance", nil, false)
	}
	if f := Producer(instance); f != nil && !isRootFactory(f) {
		return c.ExtendFromFactory(host, f, cfg, ctorArgs...)
	}
	return c.ExtendFromShape(host, instance.Proto(), cfg)
}

// ExtendFromShape composes shape and its ancestors onto host.
func (c *Cloner) ExtendFromShape(host, shape *Object, cfg *Config) bool {
	if host == nil {
		return trace(c.tracer, "could not extend an invalid object", nil, false)
	}
	if !IsShape(shape) {
		return trace(c.tracer, "could not extend an object by an invalid extension", nil, false)
	}
	conf := effective(cfg)
	r := c.begin(host, shape, sourceShape, conf)

	registered := conf.Register && r.registerWithDispatchers(host, shape)
	accessorsOK := true
	if conf.MirrorAccessors {
		accessorsOK = r.mirrorAccessorChain(host, shape, conf.OverrideAccessors)
	}
	dataOK := r.mirrorDataChain(host, shape, dataOptions(conf))
	return r.finish(registered, accessorsOK, dataOK)
}

// ExtendFromFactory composes f's family onto host. Each replicator works
// from its own freshly constructed instance, so f's initializer runs twice.
func (c *Cloner) ExtendFromFactory(host *Object, f *Factory, cfg *Config, ctorArgs ...any) bool {
	if host == nil {
		return trace(c.tracer, "could not extend an invalid object", nil, false)
	}
	if f == nil {
		return trace(c.tracer, "could not extend an object by an invalid extension", nil, false)
	}
	conf := effective(cfg)
	r := c.begin(host, f, sourceFactory, conf)

	registered := conf.Register && r.registerWithDispatchers(host, f)
	accessorsOK := true
	if conf.MirrorAccessors {
		accessorsOK = false
		if inst := r.instantiate(f, ctorArgs); inst != nil {
			accessorsOK = r.mirrorAccessorChainFromInstance(host, inst, conf.OverrideAccessors)
		}
	}
	dataOK := false
	if inst := r.instantiate(f, ctorArgs); inst != nil {
		dataOK = r.mirrorDataChainFromInstance(host, inst, dataOptions(conf))
	}
	return r.finish(registered, accessorsOK, dataOK)
}

func (r *run) instantiate(f *Factory, args []any) *Object {
	inst, err := f.Construct(args...)
	if err != nil {
		return trace[*Object](r.tracer, "could not instantiate extension "+f.Name, err, nil)
	}
	return inst
}

func (r *run) registerWithDispatchers(host *Object, source Source) bool {
	ok := r.register(host, source)
	r.InstallSuper(host)
	r.InstallSuperFrom(host)
	return ok
}

// Extend composes source onto host with the default Cloner.
func Extend(host *Object, source Source, cfg *Config, ctorArgs ...any) bool {
	return defaultCloner.Extend(host, source, cfg, ctorArgs...)
}

// ExtendFromInstance runs Cloner.ExtendFromInstance on the default Cloner.
func ExtendFromInstance(host, instance *Object, cfg *Config, ctorArgs ...any) bool {
	return defaultCloner.ExtendFromInstance(host, instance, cfg, ctorArgs...)
}

// IsMemberOf runs Cloner.IsMemberOf on the default Cloner.
func IsMemberOf(host *Object, candidate Source, native bool) bool {
	return defaultCloner.IsMemberOf(host, candidate, native)
}

// Super runs Cloner.Super on the default Cloner.
func Super(host *Object, name string, args ...any) (any, bool, error) {
	return defaultCloner.Super(host, name, args...)
}
