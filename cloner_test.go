package heritage

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtend_SalaryScenario(t *testing.T) {
	t.Parallel()
	c := New()
	fam := newFamily(c)
	host := NewObject()

	require.True(t, c.Extend(host, fam.Professional, nil))
	require.NoError(t, host.Set("salary", 5200))
	assert.Equal(t, 5200, host.Get("salary"))

	fn, ok := host.Get("startVacation").(Callable)
	require.True(t, ok)
	v, err := fn.Invoke(host)
	require.NoError(t, err)
	assert.Equal(t, "WorkingProfessional.startVacation", v)
	assert.True(t, c.IsMemberOf(host, fam.Professional, true))
}

func TestExtend_MembershipAndMembers(t *testing.T) {
	t.Parallel()
	c := New()
	fam := newFamily(c)
	for _, src := range []Source{fam.Informatician, fam.Informatician.Shape()} {
		t.Run(src.SourceName(), func(t *testing.T) {
			host := NewObject()
			require.True(t, c.Extend(host, src, nil))
			assert.True(t, c.IsMemberOf(host, src, true))
			for _, name := range []string{"experience", "work", "contact", "breathe", "eat", "weight", "name"} {
				assert.True(t, host.HasOwn(name), name)
			}
		})
	}
}

func TestExtend_OverridePolicy(t *testing.T) {
	t.Parallel()
	c := New()
	a := NewFactory("A", nil, nil).Define("work", named("A", "work"))
	overrideFns := ptrConfig(func(cfg *Config) { cfg.OverrideFunctions = true })

	t.Run("non-configurable member is kept", func(t *testing.T) {
		host := NewObject()
		own := NewMethod("work", nil)
		require.NoError(t, host.Define("work", DataDescriptor(own, true, false, false)))
		assert.False(t, c.Extend(host, a, overrideFns))
		assert.Same(t, own, host.Get("work"))
	})

	t.Run("configurable member is replaced", func(t *testing.T) {
		host := NewObject()
		require.NoError(t, host.Define("work", named("Host", "work")))
		assert.True(t, c.Extend(host, a, overrideFns))
		assert.Same(t, callableAt(a.Shape(), "work"), host.Get("work"))
	})

	t.Run("default config keeps existing members", func(t *testing.T) {
		host := NewObject()
		require.NoError(t, host.Define("work", named("Host", "work")))
		assert.False(t, c.Extend(host, a, nil))
		v, err := host.Call("work")
		require.NoError(t, err)
		assert.Equal(t, "Host.work", v)
	})
}

func TestExtend_ConfigSwitches(t *testing.T) {
	t.Parallel()
	c := New()
	fam := newFamily(c)

	t.Run("no register", func(t *testing.T) {
		host := NewObject()
		require.True(t, c.Extend(host, fam.Professional, ptrConfig(func(cfg *Config) { cfg.Register = false })))
		assert.Nil(t, ExtensionsOf(host))
		assert.False(t, host.Has(SuperMember))
		assert.True(t, host.HasOwn("salary"))
	})

	t.Run("accessors off count as success", func(t *testing.T) {
		host := NewObject()
		require.True(t, c.Extend(host, fam.Professional, ptrConfig(func(cfg *Config) { cfg.MirrorAccessors = false })))
		assert.False(t, host.HasOwn("salary"))
		assert.True(t, host.HasOwn("startVacation"))
	})

	t.Run("nothing to mirror fails", func(t *testing.T) {
		host := NewObject()
		assert.False(t, c.Extend(host, fam.Professional, ptrConfig(func(cfg *Config) {
			cfg.MirrorFunctions = false
			cfg.MirrorOthers = false
		})))
		assert.True(t, host.HasOwn("salary"))
	})
}

func TestExtendFromFactory_ConstructsPerReplicator(t *testing.T) {
	t.Parallel()
	c := New()
	var calls []any
	counted := NewFactory("Counted", nil, func(_ *Object, args ...any) error {
		calls = append(calls, arg(args, 0))
		return nil
	}).Define("m", named("Counted", "m"))

	require.True(t, c.Extend(NewObject(), counted, nil, "x"))
	assert.Equal(t, []any{"x", "x"}, calls)

	calls = nil
	require.True(t, c.Extend(NewObject(), counted, ptrConfig(func(cfg *Config) { cfg.MirrorAccessors = false })))
	assert.Len(t, calls, 1)
}

func TestExtendFromFactory_ConstructionFailure(t *testing.T) {
	t.Parallel()
	tr := &recordingTracer{}
	c := New(WithTracer(tr))
	bad := NewFactory("Bad", nil, func(*Object, ...any) error { panic("no") })
	host := NewObject()

	assert.False(t, c.Extend(host, bad, nil))
	assert.True(t, tr.contains("could not instantiate extension Bad"))
	assert.True(t, c.IsMemberOf(host, bad, false), "registration precedes construction")
}

func TestExtendFromInstance(t *testing.T) {
	t.Parallel()
	c := New()
	fam := newFamily(c)

	host := NewObject()
	inst := fam.Student.MustConstruct("Ada", 21)
	require.True(t, c.ExtendFromInstance(host, inst, nil))
	assert.Equal(t, []Source{fam.Student}, ExtensionsOf(host))
	assert.True(t, host.HasOwn("addCredits"))

	plain := NewObject()
	require.NoError(t, plain.Define("x", Field(1)))
	other := NewObject()
	assert.True(t, c.ExtendFromInstance(other, plain, nil))
	assert.False(t, other.HasOwn("x"), "a plain object's shape is the Object root")

	assert.True(t, c.Extend(other, plain, nil), "a plain object is composed as a shape")
	assert.Equal(t, 1, other.Get("x"))
}

func TestExtend_InvalidInput(t *testing.T) {
	t.Parallel()
	tr := &recordingTracer{}
	c := New(WithTracer(tr))
	fam := newFamily(c)

	assert.False(t, c.Extend(nil, fam.Student, nil))
	assert.False(t, c.Extend(NewObject(), nil, nil))
	assert.False(t, c.Extend(NewObject(), NewBareObject(), nil))
	assert.False(t, c.ExtendFromInstance(NewObject(), nil, nil))
	assert.False(t, c.ExtendFromShape(NewObject(), nil, nil))
	assert.False(t, c.ExtendFromFactory(NewObject(), nil, nil))
	assert.True(t, tr.contains("invalid extension"))
}

func TestExtend_Journal(t *testing.T) {
	t.Parallel()
	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	c := New(WithJournal(j))
	fam := newFamily(c)
	host := NewObject().Named("host")
	require.NoError(t, host.Define("startVacation", Field("never")))

	assert.False(t, c.Extend(host, fam.Professional, nil))

	comps, err := j.Compositions("host")
	require.NoError(t, err)
	require.Len(t, comps, 1)
	comp := comps[0]
	assert.Equal(t, "WorkingProfessional", comp.Source)
	assert.Equal(t, "factory", comp.SourceKind)
	assert.True(t, comp.Registered)
	assert.True(t, comp.AccessorsOK)
	assert.False(t, comp.DataOK)
	assert.False(t, comp.Result)
	assert.Contains(t, comp.Config, "mirror_functions = true")

	outcomes, err := j.Outcomes(comp.ID)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "salary", outcomes[0].Name)
	assert.Equal(t, kindAccessor, outcomes[0].Kind)
	assert.True(t, outcomes[0].Installed)
	assert.Equal(t, "startVacation", outcomes[1].Name)
	assert.False(t, outcomes[1].Installed)
	assert.Equal(t, "host already owns member", outcomes[1].Reason)

	refusals, err := j.Refusals("host")
	require.NoError(t, err)
	require.Len(t, refusals, 1)

	regs, err := j.Registrations("host")
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, "WorkingProfessional", regs[0].Extension)
	assert.True(t, regs[0].Direct)
}

func TestLogTracer(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	c := New(WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	host := NewObject()
	host.PreventExtensions()

	assert.False(t, c.MirrorAccessors(host, NewShape("S", nil), false))
	assert.Contains(t, buf.String(), `"component":"heritage"`)
	assert.Contains(t, buf.String(), "non-extensible")
}

func TestDefaultCloner(t *testing.T) {
	t.Parallel()
	src := NewFactory("Mixin", nil, nil).Define("hello", named("Mixin", "hello"))
	host := NewObject()
	require.True(t, Extend(host, src, nil))
	assert.True(t, IsMemberOf(host, src, true))
	assert.Same(t, defaultCloner, Default())
}

func TestExtend_AncestorMembersArriveDespiteOwnedMember(t *testing.T) {
	t.Parallel()
	c := New()
	parent := NewFactory("Parent", nil, nil).Define("contact", named("Parent", "contact"))
	child := NewFactory("Child", parent, nil).Define("work", named("Child", "work"))
	host := NewShape("Host", nil)
	require.NoError(t, host.Define("work", named("Host", "work")))

	assert.False(t, c.Extend(host, child, nil), "work is already owned")
	assert.True(t, host.HasOwn("contact"))
	v, err := host.Call("contact")
	require.NoError(t, err)
	assert.Equal(t, "Parent.contact", v)
	v, err = host.Call("work")
	require.NoError(t, err)
	assert.Equal(t, "Host.work", v)
}
