package store

import (
	"database/sql"
	"fmt"
)

const CompositionCols = `id, host, source, source_kind, config, registered,
	accessors_ok, data_ok, result, created_at`

const OutcomeCols = `id, composition_id, level, shape, name, kind, installed, reason`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComposition(r rowScanner) (*Composition, error) {
	var c Composition
	if err := r.Scan(&c.ID, &c.Host, &c.Source, &c.SourceKind, &c.Config, &c.Registered,
		&c.AccessorsOK, &c.DataOK, &c.Result, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanOutcome(r rowScanner) (*MemberOutcome, error) {
	var (
		o      MemberOutcome
		reason sql.NullString
	)
	if err := r.Scan(&o.ID, &o.CompositionID, &o.Level, &o.Shape, &o.Name, &o.Kind,
		&o.Installed, &reason); err != nil {
		return nil, err
	}
	o.Reason = reason.String
	return &o, nil
}

func (s *Store) queryCompositions(query string, args ...any) ([]*Composition, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var comps []*Composition
	for rows.Next() {
		c, err := scanComposition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan composition: %w", err)
		}
		comps = append(comps, c)
	}
	return comps, rows.Err()
}

func (s *Store) queryOutcomes(query string, args ...any) ([]*MemberOutcome, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var outs []*MemberOutcome
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		outs = append(outs, o)
	}
	return outs, rows.Err()
}

// Composition returns one composition by ID, or nil when absent.
func (s *Store) Composition(id int64) (*Composition, error) {
	c, err := scanComposition(s.db.QueryRow("SELECT "+CompositionCols+" FROM compositions WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("composition %d: %w", id, err)
	}
	return c, nil
}

// Compositions returns the compositions applied to host, oldest first.
// An empty host returns every composition.
func (s *Store) Compositions(host string) ([]*Composition, error) {
	if host == "" {
		return s.queryCompositions("SELECT " + CompositionCols + " FROM compositions ORDER BY id")
	}
	return s.queryCompositions("SELECT "+CompositionCols+" FROM compositions WHERE host = ? ORDER BY id", host)
}

// Outcomes returns the member outcomes of one composition in recording order.
func (s *Store) Outcomes(compositionID int64) ([]*MemberOutcome, error) {
	return s.queryOutcomes("SELECT "+OutcomeCols+" FROM member_outcomes WHERE composition_id = ? ORDER BY id", compositionID)
}

// Refusals returns every member that was not installed on host.
func (s *Store) Refusals(host string) ([]*MemberOutcome, error) {
	return s.queryOutcomes(
		`SELECT mo.id, mo.composition_id, mo.level, mo.shape, mo.name, mo.kind, mo.installed, mo.reason
		 FROM member_outcomes mo
		 JOIN compositions c ON c.id = mo.composition_id
		 WHERE c.host = ? AND mo.installed = 0
		 ORDER BY mo.id`, host)
}

// Registrations returns the extensions recorded for host in order of
// registration.
func (s *Store) Registrations(host string) ([]*Registration, error) {
	rows, err := s.db.Query(
		`SELECT id, composition_id, host, extension, direct
		 FROM registrations WHERE host = ? ORDER BY id`, host)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var regs []*Registration
	for rows.Next() {
		var r Registration
		if err := rows.Scan(&r.ID, &r.CompositionID, &r.Host, &r.Extension, &r.Direct); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, &r)
	}
	return regs, rows.Err()
}

// Hosts returns the distinct host names in the journal.
func (s *Store) Hosts() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT host FROM compositions ORDER BY host")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var hosts []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hosts = append(hosts, h)
	}
	return hosts, rows.Err()
}
