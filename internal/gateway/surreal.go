package gateway

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/forgo/crmfixtures/internal/database"
	"github.com/forgo/crmfixtures/internal/record"
	"github.com/forgo/crmfixtures/internal/schema"
)

// identPattern restricts type and field names that are written into query
// text. Everything else is passed as a variable.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Surreal stores records in SurrealDB, one table per record type.
// Identifiers are SurrealDB record ids ("Account:xyz"). FetchMany results
// are returned in store order.
type Surreal struct {
	db database.Database
}

var _ Gateway = (*Surreal)(nil)

// NewSurreal returns a gateway over an open connection.
func NewSurreal(db database.Database) *Surreal {
	return &Surreal{db: db}
}

// DefineSchema declares a table per registered type with typed field
// assertions, so the store rejects missing required fields and values of the
// wrong kind the way the in-memory store does.
func (s *Surreal) DefineSchema(ctx context.Context, reg *schema.Registry) error {
	var sb strings.Builder
	for _, name := range reg.Names() {
		t, err := reg.Type(name)
		if err != nil {
			return err
		}
		stmts, err := DefineStatements(t)
		if err != nil {
			return err
		}
		for _, stmt := range stmts {
			sb.WriteString(stmt)
			sb.WriteString(";\n")
		}
	}
	if err := s.db.Execute(ctx, sb.String(), nil); err != nil {
		return &PersistenceError{Op: "define", Cause: err}
	}
	return nil
}

// DefineStatements returns the SurrealQL that declares t.
func DefineStatements(t *record.RecordType) ([]string, error) {
	if !identPattern.MatchString(t.Name()) {
		return nil, fmt.Errorf("%w: type name %q is not a valid table name", ErrInvalidQuery, t.Name())
	}
	stmts := []string{fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMAFULL", t.Name())}
	for _, f := range t.Fields() {
		if !identPattern.MatchString(f.Name) {
			return nil, fmt.Errorf("%w: field name %q on %s", ErrInvalidQuery, f.Name, t.Name())
		}
		typ := surrealType(f.Kind)
		if !f.Required {
			typ = "option<" + typ + ">"
		}
		stmt := fmt.Sprintf("DEFINE FIELD IF NOT EXISTS %s ON TABLE %s TYPE %s", f.Name, t.Name(), typ)
		if f.Kind == record.KindEnum {
			opts := make([]string, len(f.Options))
			for i, o := range f.Options {
				opts[i] = fmt.Sprintf("%q", o)
			}
			cond := fmt.Sprintf("$value INSIDE [%s]", strings.Join(opts, ", "))
			if !f.Required {
				cond = "$value = NONE OR " + cond
			}
			stmt += " ASSERT " + cond
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func surrealType(k record.FieldKind) string {
	switch k {
	case record.KindNumber:
		return "number"
	case record.KindBool:
		return "bool"
	case record.KindDate:
		return "datetime"
	default:
		return "string"
	}
}

// Persist implements Gateway. The batch is sent as one transaction.
func (s *Surreal) Persist(ctx context.Context, recs ...*record.Instance) ([]*record.Instance, error) {
	if len(recs) == 0 {
		return recs, nil
	}
	tb := database.NewTxBuilder()
	for _, rec := range recs {
		if rec == nil {
			return nil, fmt.Errorf("%w: nil record", ErrValidation)
		}
		if rec.Persisted() {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyPersisted, rec.Label())
		}
		tb.Add("CREATE type::table($tb) CONTENT $content RETURN id", map[string]interface{}{
			"tb":      rec.Type().Name(),
			"content": toStore(rec.Values()),
		})
	}

	first := recs[0].Type().Name()
	results, err := database.ExecuteTransaction(ctx, s.db, tb)
	if err != nil {
		return nil, &PersistenceError{Op: OpPersist, Type: first, Cause: err}
	}

	rows := database.ResultRows(results)
	if len(rows) != len(recs) {
		return nil, &PersistenceError{
			Op:    OpPersist,
			Type:  first,
			Cause: fmt.Errorf("store returned %d identifiers for %d records", len(rows), len(recs)),
		}
	}
	for i, rec := range recs {
		id := convertSurrealID(rows[i]["id"])
		if id == "" {
			return nil, &PersistenceError{Op: OpPersist, Type: rec.Type().Name(), Cause: fmt.Errorf("unreadable id %v", rows[i]["id"])}
		}
		rec.MarkPersisted(id)
	}
	return recs, nil
}

// Update implements Gateway. Only dirty fields are sent; unset fields are
// removed from the stored record.
func (s *Surreal) Update(ctx context.Context, recs ...*record.Instance) error {
	batch := database.NewAtomicBatch()
	for _, rec := range recs {
		if rec == nil {
			return fmt.Errorf("%w: nil record", ErrValidation)
		}
		if !rec.Persisted() {
			return fmt.Errorf("%w: %s", ErrNotPersisted, rec.Label())
		}
		set := record.Values{}
		var unset []string
		for name, v := range rec.Changes() {
			if v == nil {
				if !identPattern.MatchString(name) {
					return fmt.Errorf("%w: field name %q", ErrInvalidQuery, name)
				}
				unset = append(unset, name)
				continue
			}
			set[name] = v
		}
		if len(set) > 0 {
			batch.Add("UPDATE type::record($id) MERGE $changes", map[string]interface{}{
				"id":      rec.ID(),
				"changes": toStore(set),
			})
		}
		if len(unset) > 0 {
			batch.Add("UPDATE type::record($id) UNSET "+strings.Join(unset, ", "), map[string]interface{}{
				"id": rec.ID(),
			})
		}
	}
	if batch.Len() == 0 {
		return nil
	}

	if err := batch.Execute(ctx, s.db); err != nil {
		return &PersistenceError{Op: OpUpdate, Type: recs[0].Type().Name(), ID: recs[0].ID(), Cause: err}
	}
	for _, rec := range recs {
		rec.MarkClean()
	}
	return nil
}

// FetchSingle implements Gateway.
func (s *Surreal) FetchSingle(ctx context.Context, q Query) (*record.Instance, error) {
	found, err := s.FetchMany(ctx, q.Take(1))
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, describe(q))
	}
	return found[0], nil
}

// FetchMany implements Gateway.
func (s *Surreal) FetchMany(ctx context.Context, q Query) ([]*record.Instance, error) {
	q, err := q.normalize()
	if err != nil {
		return nil, err
	}
	query, vars, ok := selectQuery(q)
	if !ok {
		return nil, nil
	}

	results, err := s.db.Query(ctx, query, vars)
	if err != nil {
		return nil, &PersistenceError{Op: OpFetch, Type: q.Type.Name(), ID: q.ID, Cause: err}
	}

	var out []*record.Instance
	for _, row := range database.ResultRows(results) {
		id := convertSurrealID(row["id"])
		inst, err := record.Hydrate(q.Type, id, fromStore(row))
		if err != nil {
			return nil, &PersistenceError{Op: OpFetch, Type: q.Type.Name(), ID: id, Cause: err}
		}
		out = append(out, inst)
	}
	return out, nil
}

// selectQuery renders q as SurrealQL. It reports false when q cannot match
// anything, such as an id belonging to another table.
func selectQuery(q Query) (string, map[string]interface{}, bool) {
	vars := map[string]interface{}{}
	var sb strings.Builder

	if q.ID != "" {
		if !strings.HasPrefix(q.ID, q.Type.Name()+":") {
			return "", nil, false
		}
		sb.WriteString("SELECT * FROM type::record($id)")
		vars["id"] = q.ID
	} else {
		sb.WriteString("SELECT * FROM type::table($tb)")
		vars["tb"] = q.Type.Name()
	}

	for i, c := range q.Where {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		name := fmt.Sprintf("w%d", i)
		fmt.Fprintf(&sb, "%s = $%s", c.Field, name)
		vars[name] = toStoreValue(c.Value)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}
	return sb.String(), vars, true
}

func toStore(values record.Values) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		out[k] = toStoreValue(v)
	}
	return out
}

func toStoreValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return models.CustomDateTime{Time: t}
	}
	return v
}

// fromStore converts driver values into the forms record.Instance holds.
func fromStore(row map[string]interface{}) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		if k == "id" || v == nil {
			continue
		}
		switch t := v.(type) {
		case models.CustomDateTime, *models.CustomDateTime:
			out[k] = parseTime(t)
		default:
			out[k] = v
		}
	}
	return out
}

// parseTime parses time from the forms the driver returns
func parseTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t != nil {
			return t.Time
		}
	}
	return time.Time{}
}

// convertSurrealID converts a SurrealDB ID (which may be a complex object) to a string
func convertSurrealID(id interface{}) string {
	switch v := id.(type) {
	case string:
		return v
	case models.RecordID:
		return fmt.Sprintf("%s:%v", v.Table, v.ID)
	case *models.RecordID:
		if v != nil {
			return fmt.Sprintf("%s:%v", v.Table, v.ID)
		}
	case map[string]interface{}:
		// {"tb": "Account", "id": "xxx"} format
		if tb, ok := v["tb"].(string); ok {
			return fmt.Sprintf("%s:%v", tb, v["id"])
		}
	}
	return ""
}
