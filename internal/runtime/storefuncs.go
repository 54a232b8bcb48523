package runtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/risor-io/risor/object"

	"github.com/jward/heritage/internal/store"
)

// history(host) → [{id, source, source_kind, ..., outcomes: [...]}, ...]
//
// An empty host lists every recorded composition.
func makeHistoryFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("history", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) > 1 {
			return object.Errorf("history: expected at most 1 argument (host), got %d", len(args))
		}
		host := ""
		if len(args) == 1 {
			h, err := toString(args[0])
			if err != nil {
				return object.Errorf("history: %v", err)
			}
			host = h
		}

		comps, err := s.Compositions(host)
		if err != nil {
			return object.Errorf("history: %v", err)
		}

		results := make([]object.Object, 0, len(comps))
		for _, c := range comps {
			outcomes, err := s.Outcomes(c.ID)
			if err != nil {
				return object.Errorf("history: %v", err)
			}
			m := compositionToMap(c)
			m["outcomes"] = outcomesToList(outcomes)
			results = append(results, object.NewMap(m))
		}
		return object.NewList(results)
	})
}

// refusals(host) → [{name, kind, level, shape, reason}, ...]
func makeRefusalsFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("refusals", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("refusals", 1, len(args))
		}
		host, err := toString(args[0])
		if err != nil {
			return object.Errorf("refusals: %v", err)
		}
		outcomes, err := s.Refusals(host)
		if err != nil {
			return object.Errorf("refusals: %v", err)
		}
		return outcomesToList(outcomes)
	})
}

// registrations(host) → [{extension, direct, composition_id}, ...]
func makeRegistrationsFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("registrations", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("registrations", 1, len(args))
		}
		host, err := toString(args[0])
		if err != nil {
			return object.Errorf("registrations: %v", err)
		}
		regs, err := s.Registrations(host)
		if err != nil {
			return object.Errorf("registrations: %v", err)
		}
		results := make([]object.Object, 0, len(regs))
		for _, r := range regs {
			results = append(results, object.NewMap(map[string]object.Object{
				"id":             object.NewInt(r.ID),
				"composition_id": object.NewInt(r.CompositionID),
				"host":           object.NewString(r.Host),
				"extension":      object.NewString(r.Extension),
				"direct":         object.NewBool(r.Direct),
			}))
		}
		return object.NewList(results)
	})
}

func compositionToMap(c *store.Composition) map[string]object.Object {
	return map[string]object.Object{
		"id":           object.NewInt(c.ID),
		"host":         object.NewString(c.Host),
		"source":       object.NewString(c.Source),
		"source_kind":  object.NewString(c.SourceKind),
		"config":       object.NewString(c.Config),
		"registered":   object.NewBool(c.Registered),
		"accessors_ok": object.NewBool(c.AccessorsOK),
		"data_ok":      object.NewBool(c.DataOK),
		"result":       object.NewBool(c.Result),
		"created_at":   object.NewString(c.CreatedAt.Format(time.RFC3339)),
	}
}

func outcomesToList(outcomes []*store.MemberOutcome) object.Object {
	results := make([]object.Object, 0, len(outcomes))
	for _, o := range outcomes {
		results = append(results, object.NewMap(map[string]object.Object{
			"level":     object.NewInt(int64(o.Level)),
			"shape":     object.NewString(o.Shape),
			"name":      object.NewString(o.Name),
			"kind":      object.NewString(o.Kind),
			"installed": object.NewBool(o.Installed),
			"reason":    object.NewString(o.Reason),
		}))
	}
	return object.NewList(results)
}

// makeDBQueryFn creates a db_query bridge that executes arbitrary read-only SQL
// against the journal. Returns a list of maps (column name → value).
func makeDBQueryFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("db_query", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 {
			return object.Errorf("db_query: expected at least 1 argument (sql), got %d", len(args))
		}
		sqlStr, err := toString(args[0])
		if err != nil {
			return object.Errorf("db_query: %v", err)
		}

		// Only allow SELECT statements.
		trimmed := strings.TrimSpace(strings.ToUpper(sqlStr))
		if !strings.HasPrefix(trimmed, "SELECT") {
			return object.Errorf("db_query: only SELECT queries are allowed")
		}

		var queryArgs []any
		for _, arg := range args[1:] {
			switch v := arg.(type) {
			case *object.Int:
				queryArgs = append(queryArgs, v.Value())
			case *object.Float:
				queryArgs = append(queryArgs, v.Value())
			case *object.String:
				queryArgs = append(queryArgs, v.Value())
			case *object.Bool:
				queryArgs = append(queryArgs, v.Value())
			case *object.NilType:
				queryArgs = append(queryArgs, nil)
			default:
				queryArgs = append(queryArgs, fmt.Sprintf("%v", arg))
			}
		}

		rows, queryErr := s.DB().QueryContext(ctx, sqlStr, queryArgs...)
		if queryErr != nil {
			return object.Errorf("db_query: %v", queryErr)
		}
		defer rows.Close()

		cols, colErr := rows.Columns()
		if colErr != nil {
			return object.Errorf("db_query: columns: %v", colErr)
		}

		var results []object.Object
		for rows.Next() {
			values := make([]any, len(cols))
			ptrs := make([]any, len(cols))
			for i := range values {
				ptrs[i] = &values[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				return object.Errorf("db_query: scan: %v", err)
			}
			row := make(map[string]object.Object, len(cols))
			for i, col := range cols {
				row[col] = sqlValueToObject(values[i])
			}
			results = append(results, object.NewMap(row))
		}
		if err := rows.Err(); err != nil {
			return object.Errorf("db_query: rows: %v", err)
		}
		if results == nil {
			results = []object.Object{}
		}
		return object.NewList(results)
	})
}

// sqlValueToObject converts a database value to a Risor object.
func sqlValueToObject(v any) object.Object {
	if v == nil {
		return object.Nil
	}
	switch val := v.(type) {
	case int64:
		return object.NewInt(val)
	case float64:
		return object.NewFloat(val)
	case string:
		return object.NewString(val)
	case bool:
		return object.NewBool(val)
	case []byte:
		return object.NewString(string(val))
	case time.Time:
		return object.NewString(val.Format(time.RFC3339))
	default:
		return object.NewString(fmt.Sprintf("%v", val))
	}
}

func extractMap(obj object.Object) (map[string]object.Object, error) {
	m, ok := obj.(*object.Map)
	if !ok {
		return nil, fmt.Errorf("expected map, got %s", obj.Type())
	}
	return m.Value(), nil
}

func getBoolDefault(m map[string]object.Object, key string, def bool) bool {
	v, ok := m[key]
	if !ok {
		return def
	}
	if b, ok := v.(*object.Bool); ok {
		return b.Value()
	}
	return def
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}
