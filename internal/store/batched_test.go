package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch_FakeIDs(t *testing.T) {
	t.Parallel()
	b := NewBatch(Composition{Host: "h", Source: "s"})
	assert.Equal(t, int64(-1), b.Composition.ID)

	id1 := b.AddOutcome(MemberOutcome{Name: "a"})
	id2 := b.AddRegistration(Registration{Extension: "s"})
	assert.Negative(t, id1)
	assert.Negative(t, id2)
	assert.NotEqual(t, id1, id2)

	assert.Equal(t, b.Composition.ID, b.Outcomes[0].CompositionID)
	assert.Equal(t, b.Composition.ID, b.Registrations[0].CompositionID)
}

func TestBatch_Refused(t *testing.T) {
	t.Parallel()
	b := NewBatch(Composition{Host: "h"})
	b.AddOutcome(MemberOutcome{Name: "ok", Installed: true})
	b.AddOutcome(MemberOutcome{Name: "no", Reason: "host already owns member"})

	refused := b.Refused()
	require.Len(t, refused, 1)
	assert.Equal(t, "no", refused[0].Name)
}

func TestBatch_ConcurrentAdds(t *testing.T) {
	t.Parallel()
	b := NewBatch(Composition{Host: "h"})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.AddOutcome(MemberOutcome{Name: "m", Installed: true})
		}()
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for _, o := range b.Outcomes {
		assert.False(t, seen[o.ID], "duplicate fake ID %d", o.ID)
		seen[o.ID] = true
	}
	assert.Len(t, b.Outcomes, 50)
}

func TestCommitBatch_RemapsIDs(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	b := NewBatch(Composition{Host: "h", Source: "s", SourceKind: "shape", CreatedAt: time.Now()})
	b.AddOutcome(MemberOutcome{Name: "x", Kind: KindValue, Installed: true})
	b.AddRegistration(Registration{Host: "h", Extension: "s", Direct: true})

	require.NoError(t, s.CommitBatch(b))
	assert.Positive(t, b.Composition.ID)
	assert.Positive(t, b.Outcomes[0].ID)
	assert.Equal(t, b.Composition.ID, b.Outcomes[0].CompositionID)
	assert.Equal(t, b.Composition.ID, b.Registrations[0].CompositionID)

	outs, err := s.Outcomes(b.Composition.ID)
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, b.Outcomes[0].ID, outs[0].ID)
}

func TestCommitBatch_Rollback(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	_, err := s.db.Exec("DROP TABLE registrations")
	require.NoError(t, err)

	b := NewBatch(Composition{Host: "h", Source: "s", SourceKind: "shape", CreatedAt: time.Now()})
	b.AddOutcome(MemberOutcome{Name: "x", Kind: KindValue, Installed: true})
	b.AddRegistration(Registration{Host: "h", Extension: "s", Direct: true})
	require.Error(t, s.CommitBatch(b))

	comps, err := s.Compositions("")
	require.NoError(t, err)
	assert.Empty(t, comps, "failed commit leaves nothing behind")
}
