package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

// commitTestComposition commits a composition with the given outcomes and
// returns the committed batch.
func commitTestComposition(t *testing.T, s *Store, host, source string, outcomes ...MemberOutcome) *Batch {
	t.Helper()
	b := NewBatch(Composition{
		Host:       host,
		Source:     source,
		SourceKind: "factory",
		Config:     "register = true",
		Registered: true,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	})
	ok := true
	for _, o := range outcomes {
		b.AddOutcome(o)
		ok = ok && o.Installed
	}
	b.AddRegistration(Registration{Host: host, Extension: source, Direct: true})
	b.Composition.AccessorsOK = ok
	b.Composition.DataOK = ok
	b.Composition.Result = ok
	require.NoError(t, s.CommitBatch(b))
	return b
}

// =============================================================================
// Schema & Lifecycle
// =============================================================================

func TestMigrate_AllTablesExist(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, table := range []string{"compositions", "member_outcomes", "registrations"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
}

func TestMigrate_WALMode(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	var mode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode)
	require.NoError(t, err)
	assert.Equal(t, "wal", mode)
}

func TestNewStore_InvalidPath(t *testing.T) {
	t.Parallel()
	_, err := NewStore("/nonexistent/dir/journal.db")
	require.Error(t, err)
}

// =============================================================================
// Journal queries
// =============================================================================

func TestCompositions_ByHost(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	commitTestComposition(t, s, "student", "Informatician")
	commitTestComposition(t, s, "student", "WorkingProfessional")
	commitTestComposition(t, s, "robot", "Student")

	comps, err := s.Compositions("student")
	require.NoError(t, err)
	require.Len(t, comps, 2)
	assert.Equal(t, "Informatician", comps[0].Source)
	assert.Equal(t, "WorkingProfessional", comps[1].Source)
	assert.True(t, comps[0].Result)
	assert.Equal(t, "register = true", comps[0].Config)

	all, err := s.Compositions("")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := s.Compositions("nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestComposition_ByID(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	b := commitTestComposition(t, s, "student", "Informatician")

	c, err := s.Composition(b.Composition.ID)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "student", c.Host)
	assert.Equal(t, "factory", c.SourceKind)
	assert.WithinDuration(t, b.Composition.CreatedAt, c.CreatedAt, time.Second)

	missing, err := s.Composition(9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOutcomesAndRefusals(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	b := commitTestComposition(t, s, "student", "WorkingProfessional",
		MemberOutcome{Level: 0, Shape: "WorkingProfessional.shape", Name: "salary", Kind: KindAccessor, Installed: true},
		MemberOutcome{Level: 0, Shape: "WorkingProfessional.shape", Name: "startVacation", Kind: KindFunction, Reason: "host already owns member"},
	)
	commitTestComposition(t, s, "robot", "WorkingProfessional",
		MemberOutcome{Name: "salary", Kind: KindAccessor, Reason: "host is not extensible"},
	)

	outs, err := s.Outcomes(b.Composition.ID)
	require.NoError(t, err)
	require.Len(t, outs, 2)
	assert.Equal(t, "salary", outs[0].Name)
	assert.True(t, outs[0].Installed)
	assert.Empty(t, outs[0].Reason)
	assert.Equal(t, KindFunction, outs[1].Kind)
	assert.Equal(t, "host already owns member", outs[1].Reason)

	refused, err := s.Refusals("student")
	require.NoError(t, err)
	require.Len(t, refused, 1)
	assert.Equal(t, "startVacation", refused[0].Name)

	comps, err := s.Compositions("student")
	require.NoError(t, err)
	assert.False(t, comps[0].Result)
}

func TestRegistrationsAndHosts(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	b := NewBatch(Composition{Host: "student", Source: "Outer", SourceKind: "shape", CreatedAt: time.Now()})
	b.AddRegistration(Registration{Host: "student", Extension: "Outer", Direct: true})
	b.AddRegistration(Registration{Host: "student", Extension: "Inner", Direct: false})
	require.NoError(t, s.CommitBatch(b))
	commitTestComposition(t, s, "robot", "Student")

	regs, err := s.Registrations("student")
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, "Outer", regs[0].Extension)
	assert.True(t, regs[0].Direct)
	assert.Equal(t, "Inner", regs[1].Extension)
	assert.False(t, regs[1].Direct)
	assert.Equal(t, b.Composition.ID, regs[1].CompositionID)

	hosts, err := s.Hosts()
	require.NoError(t, err)
	assert.Equal(t, []string{"robot", "student"}, hosts)
}
