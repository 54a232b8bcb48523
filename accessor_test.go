package heritage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessorNames(t *testing.T) {
	t.Parallel()
	fam := newFamily(New())
	assert.Equal(t, []string{"credits"}, New().AccessorNames(fam.Student.Shape()))
	assert.Equal(t, []string{}, New().AccessorNames(ObjectShape))
	assert.Nil(t, New().AccessorNames(nil))
}

func TestMirrorAccessor(t *testing.T) {
	t.Parallel()
	c := New()
	fam := newFamily(c)
	host := NewObject()

	require.True(t, c.MirrorAccessor(host, fam.Professional.Shape(), "salary", false))
	require.NoError(t, host.Set("salary", 1000))
	assert.Equal(t, 1000, host.Get("salary"))

	d, ok := host.Own("salary")
	require.True(t, ok)
	assert.True(t, d.Configurable)
	assert.False(t, d.Enumerable)

	// Already present and no override.
	assert.False(t, c.MirrorAccessor(host, fam.Professional.Shape(), "salary", false))
	// Not an accessor on the source.
	assert.False(t, c.MirrorAccessor(host, fam.Professional.Shape(), "startVacation", false))
	assert.False(t, host.HasOwn("startVacation"))
}

func TestMirrorAccessors_ReportsPartialFailure(t *testing.T) {
	t.Parallel()
	c := New()
	fam := newFamily(c)
	host := NewObject()
	require.NoError(t, host.Define("skillSet", Field("fixed")))

	ok := c.MirrorAccessors(host, fam.Scientist.Shape(), false)
	assert.False(t, ok)
	// The other accessor is still installed: no rollback.
	assert.True(t, host.HasOwn("education"))
	assert.Equal(t, "fixed", host.Get("skillSet"))
}

func TestMirrorAccessors_NonExtensibleHost(t *testing.T) {
	t.Parallel()
	tr := &recordingTracer{}
	c := New(WithTracer(tr))
	fam := newFamily(c)
	host := NewObject()
	host.PreventExtensions()

	assert.False(t, c.MirrorAccessors(host, fam.Student.Shape(), false))
	assert.True(t, tr.contains("non-extensible"))
}

func TestMirrorAccessorChain(t *testing.T) {
	t.Parallel()
	c := New()
	fam := newFamily(c)

	t.Run("walks every level", func(t *testing.T) {
		host := NewObject()
		require.True(t, c.MirrorAccessorChain(host, fam.Informatician.Shape(), false))
		for _, name := range []string{"experience", "skillSet", "education", "name", "weight"} {
			assert.True(t, host.HasOwn(name), name)
		}
	})

	t.Run("level zero failure stops the walk", func(t *testing.T) {
		host := NewObject()
		require.NoError(t, host.Define("experience", Field(1)))
		assert.False(t, c.MirrorAccessorChain(host, fam.Informatician.Shape(), false))
		assert.False(t, host.HasOwn("skillSet"))
	})

	t.Run("failing level ends the walk", func(t *testing.T) {
		host := NewObject()
		require.NoError(t, host.Define("education", Field(1)))
		assert.False(t, c.MirrorAccessorChain(host, fam.Informatician.Shape(), false))
		assert.True(t, host.HasOwn("experience"))
		assert.True(t, host.HasOwn("skillSet"))
		assert.False(t, host.HasOwn("name"), "levels above a failure are not visited")
	})

	t.Run("override applies to the first level only", func(t *testing.T) {
		host := NewObject()
		require.NoError(t, host.Define("experience", Field(1)))
		require.NoError(t, host.Define("skillSet", Field(2)))
		assert.False(t, c.MirrorAccessorChain(host, fam.Informatician.Shape(), true))
		d, _ := host.Own("experience")
		assert.True(t, IsAccessor(d))
		assert.Equal(t, 2, host.Get("skillSet"))
	})

	t.Run("from instance", func(t *testing.T) {
		host := NewObject()
		inst := fam.Student.MustConstruct("Ada", 20)
		require.True(t, c.MirrorAccessorChainFromInstance(host, inst, false))
		assert.True(t, host.HasOwn("credits"))
		assert.False(t, c.MirrorAccessorChainFromInstance(host, nil, false))
	})
}

func TestWalkChain_StopsAtRoots(t *testing.T) {
	t.Parallel()
	top := NewShape("Top", NewShape("Mid", nil))
	var visited []string
	ok := walkChain(top, func(shape *Object, _ int) bool {
		visited = append(visited, shapeName(shape))
		return true
	})
	assert.True(t, ok)
	assert.Equal(t, []string{"Top", "Mid"}, visited)

	fn := NewShape("Callable", FunctionShape)
	visited = nil
	walkChain(fn, func(shape *Object, _ int) bool {
		visited = append(visited, shapeName(shape))
		return true
	})
	assert.Equal(t, []string{"Callable"}, visited)
}

func TestWalkWholeChain_VisitsEveryLevel(t *testing.T) {
	t.Parallel()
	top := NewShape("Top", NewShape("Mid", NewShape("Base", nil)))
	var visited []string
	ok := walkWholeChain(top, func(shape *Object, depth int) bool {
		visited = append(visited, shapeName(shape))
		return depth != 0
	})
	assert.False(t, ok, "a failed level fails the walk")
	assert.Equal(t, []string{"Top", "Mid", "Base"}, visited)

	visited = nil
	assert.True(t, walkWholeChain(top, func(shape *Object, _ int) bool {
		visited = append(visited, shapeName(shape))
		return true
	}))
	assert.Equal(t, []string{"Top", "Mid", "Base"}, visited)

	assert.False(t, walkWholeChain(nil, func(shape *Object, _ int) bool { return shape != nil }))
}
