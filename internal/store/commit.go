package store

import (
	"database/sql"
	"fmt"
)

// CommitBatch inserts a buffered composition into SQLite within a single
// transaction. The fake composition ID is replaced by the real one on the
// batch and on every buffered row.
//
// Insert order respects FK dependencies:
//  1. Composition
//  2. MemberOutcomes (depend on composition_id)
//  3. Registrations (depend on composition_id)
func (s *Store) CommitBatch(batch *Batch) error {
	batch.mu.Lock()
	defer batch.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	fakeToReal := make(map[int64]int64)

	// 1. Composition
	comp := batch.Composition
	realID, err := insertCompositionTx(tx, &comp)
	if err != nil {
		return fmt.Errorf("commit batch: composition %s <- %s: %w", comp.Host, comp.Source, err)
	}
	fakeToReal[comp.ID] = realID

	// 2. MemberOutcomes
	outcomes := make([]MemberOutcome, len(batch.Outcomes))
	for i, o := range batch.Outcomes {
		if o.CompositionID < 0 {
			o.CompositionID = fakeToReal[o.CompositionID]
		}
		id, err := insertOutcomeTx(tx, &o)
		if err != nil {
			return fmt.Errorf("commit batch: outcome %q: %w", o.Name, err)
		}
		o.ID = id
		outcomes[i] = o
	}

	// 3. Registrations
	regs := make([]Registration, len(batch.Registrations))
	for i, r := range batch.Registrations {
		if r.CompositionID < 0 {
			r.CompositionID = fakeToReal[r.CompositionID]
		}
		id, err := insertRegistrationTx(tx, &r)
		if err != nil {
			return fmt.Errorf("commit batch: registration %q: %w", r.Extension, err)
		}
		r.ID = id
		regs[i] = r
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: commit: %w", err)
	}

	comp.ID = realID
	batch.Composition = comp
	batch.Outcomes = outcomes
	batch.Registrations = regs
	return nil
}

func insertCompositionTx(tx *sql.Tx, c *Composition) (int64, error) {
	res, err := tx.Exec(
		`INSERT INTO compositions (host, source, source_kind, config, registered,
			accessors_ok, data_ok, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Host, c.Source, c.SourceKind, c.Config, c.Registered,
		c.AccessorsOK, c.DataOK, c.Result, c.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertOutcomeTx(tx *sql.Tx, o *MemberOutcome) (int64, error) {
	res, err := tx.Exec(
		`INSERT INTO member_outcomes (composition_id, level, shape, name, kind, installed, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.CompositionID, o.Level, o.Shape, o.Name, o.Kind, o.Installed, nullString(o.Reason),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertRegistrationTx(tx *sql.Tx, r *Registration) (int64, error) {
	res, err := tx.Exec(
		`INSERT INTO registrations (composition_id, host, extension, direct)
		 VALUES (?, ?, ?, ?)`,
		r.CompositionID, r.Host, r.Extension, r.Direct,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
