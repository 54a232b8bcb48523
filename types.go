package heritage

import (
	"fmt"

	"github.com/jward/heritage/internal/store"
)

// Public aliases for the journal's record types. They are identical to the
// internal types; no conversion is needed.

type JournalStore = store.Store
type Batch = store.Batch
type Composition = store.Composition
type MemberOutcome = store.MemberOutcome
type Registration = store.Registration

// Journal persists one finished composition at a time.
type Journal interface {
	CommitBatch(batch *Batch) error
}

var _ Journal = (*JournalStore)(nil)

// OpenJournal opens (creating if needed) a SQLite journal at path and
// migrates its schema.
func OpenJournal(path string) (*JournalStore, error) {
	s, err := store.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("heritage: open journal: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("heritage: open journal: %w", err)
	}
	return s, nil
}
