package heritage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func layered(t *testing.T) (base, mid, top *Object) {
	t.Helper()
	base = NewShape("Base", nil)
	mid = NewShape("Mid", base)
	top = NewShape("Top", mid)
	for _, s := range []struct {
		shape *Object
		name  string
	}{{base, "base"}, {mid, "mid"}, {top, "top"}} {
		require.NoError(t, s.shape.Define(s.name+"Method", named(s.name, "method")))
		require.NoError(t, s.shape.Define(s.name+"Value", Field(s.name)))
	}
	return base, mid, top
}

var allData = DataOptions{MirrorFunctions: true, MirrorOthers: true}

func TestDataNames(t *testing.T) {
	t.Parallel()
	_, _, top := layered(t)
	require.NoError(t, top.Define("acc", backed("acc")))
	c := New()
	assert.Equal(t, []string{"topMethod"}, c.FunctionNames(top))
	assert.Equal(t, []string{"topValue"}, c.ValueNames(top))
	assert.Equal(t, []string{"topMethod", "topValue"}, c.DataNames(top))
	assert.Nil(t, c.FunctionNames(nil))
}

func TestMirrorData(t *testing.T) {
	t.Parallel()
	c := New()

	t.Run("both populations", func(t *testing.T) {
		_, _, top := layered(t)
		host := NewObject()
		require.True(t, c.MirrorData(host, top, allData))
		assert.True(t, host.HasOwn("topMethod"))
		assert.Equal(t, "top", host.Get("topValue"))
		assert.False(t, host.HasOwn("midMethod"))
	})

	t.Run("nothing enabled is a failure", func(t *testing.T) {
		_, _, top := layered(t)
		host := NewObject()
		assert.False(t, c.MirrorData(host, top, DataOptions{}))
		assert.Empty(t, host.OwnNames())
	})

	t.Run("disabled population does not affect the verdict", func(t *testing.T) {
		_, _, top := layered(t)
		host := NewObject()
		require.NoError(t, host.Define("topValue", Field("mine")))
		assert.True(t, c.MirrorData(host, top, DataOptions{MirrorFunctions: true}))
		assert.Equal(t, "mine", host.Get("topValue"))
		assert.True(t, host.HasOwn("topMethod"))
	})

	t.Run("existing member without override fails", func(t *testing.T) {
		_, _, top := layered(t)
		host := NewObject()
		require.NoError(t, host.Define("topValue", Field("mine")))
		assert.False(t, c.MirrorData(host, top, allData))
		assert.True(t, host.HasOwn("topMethod"))
	})

	t.Run("override per population", func(t *testing.T) {
		_, _, top := layered(t)
		host := NewObject()
		require.NoError(t, host.Define("topValue", Field("mine")))
		require.NoError(t, host.Define("topMethod", Field("mine")))
		opts := allData
		opts.OverrideOthers = true
		assert.False(t, c.MirrorData(host, top, opts))
		assert.Equal(t, "top", host.Get("topValue"))
		assert.Equal(t, "mine", host.Get("topMethod"))
	})

	t.Run("single member", func(t *testing.T) {
		_, _, top := layered(t)
		host := NewObject()
		assert.True(t, c.MirrorDataMember(host, top, "topValue", false))
		assert.False(t, c.MirrorDataMember(host, top, "constructor", true))
	})
}

func TestMirrorDataChain(t *testing.T) {
	t.Parallel()
	c := New()

	t.Run("whole chain", func(t *testing.T) {
		_, _, top := layered(t)
		host := NewObject()
		require.True(t, c.MirrorDataChain(host, top, allData))
		for _, name := range []string{"topMethod", "midMethod", "baseMethod", "baseValue"} {
			assert.True(t, host.HasOwn(name), name)
		}
	})

	t.Run("refused member does not end the walk", func(t *testing.T) {
		_, _, top := layered(t)
		host := NewObject()
		require.NoError(t, host.Define("midValue", Field("mine")))
		assert.False(t, c.MirrorDataChain(host, top, allData))
		assert.Equal(t, "mine", host.Get("midValue"))
		for _, name := range []string{"topMethod", "midMethod", "baseMethod", "baseValue"} {
			assert.True(t, host.HasOwn(name), name)
		}
	})

	t.Run("owned first-level method still lets ancestors arrive", func(t *testing.T) {
		_, _, top := layered(t)
		host := NewObject()
		require.NoError(t, host.Define("topMethod", named("host", "method")))
		assert.False(t, c.MirrorDataChain(host, top, allData))
		v, err := host.Call("topMethod")
		require.NoError(t, err)
		assert.Equal(t, "host.method", v)
		assert.True(t, host.HasOwn("midMethod"))
		assert.True(t, host.HasOwn("baseMethod"))
	})

	t.Run("override degrades above the first level", func(t *testing.T) {
		_, _, top := layered(t)
		host := NewObject()
		require.NoError(t, host.Define("topValue", Field("mine")))
		require.NoError(t, host.Define("midValue", Field("mine")))
		opts := allData
		opts.OverrideOthers = true
		assert.False(t, c.MirrorDataChain(host, top, opts))
		assert.Equal(t, "top", host.Get("topValue"))
		assert.Equal(t, "mine", host.Get("midValue"))
		assert.Equal(t, "base", host.Get("baseValue"))
	})

	t.Run("from instance", func(t *testing.T) {
		_, mid, _ := layered(t)
		inst, err := Producer(mid).Construct()
		require.NoError(t, err)
		host := NewObject()
		require.True(t, c.MirrorDataChainFromInstance(host, inst, allData))
		assert.True(t, host.HasOwn("midValue"))
		assert.False(t, host.HasOwn("topValue"))
	})

	t.Run("single member from instance", func(t *testing.T) {
		_, mid, _ := layered(t)
		inst, err := Producer(mid).Construct()
		require.NoError(t, err)
		host := NewObject()
		require.True(t, c.MirrorDataMemberFromInstance(host, inst, "midMethod", false))
		v, err := host.Call("midMethod")
		require.NoError(t, err)
		assert.Equal(t, "mid.method", v)
		assert.False(t, c.MirrorDataMemberFromInstance(host, inst, "midMethod", false), "already owned")
		assert.False(t, c.MirrorDataMemberFromInstance(host, nil, "midMethod", false))
	})
}

func TestReservedNamesNeverMirrored(t *testing.T) {
	t.Parallel()
	source := NewShape("Sneaky", nil)
	for _, name := range []string{SuperMember, SuperFromMember, InstanceOfMember, ExtendsMember} {
		require.NoError(t, source.Define(name, Field("x")))
	}
	require.NoError(t, source.Define("plain", Field("y")))

	c := New()
	host := NewObject()
	require.True(t, c.Extend(host, source, ptrConfig(func(cfg *Config) {
		cfg.Register = false
		cfg.OverrideOthers = true
	})))
	for _, name := range []string{ConstructorMember, SuperMember, SuperFromMember, InstanceOfMember, ExtendsMember} {
		assert.False(t, host.HasOwn(name), name)
		assert.True(t, IsReserved(name))
	}
	assert.Equal(t, "y", host.Get("plain"))

	registered := NewObject()
	require.True(t, c.Extend(registered, source, nil))
	assert.Same(t, c.memberOf, registered.Get(InstanceOfMember))
	assert.IsType(t, &ExtensionSet{}, registered.Get(ExtendsMember))
}
