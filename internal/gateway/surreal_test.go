package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/forgo/crmfixtures/internal/builder"
	"github.com/forgo/crmfixtures/internal/crm"
	"github.com/forgo/crmfixtures/internal/database"
	"github.com/forgo/crmfixtures/internal/record"
	"github.com/forgo/crmfixtures/internal/testing/testdb"
)

// fakeDB records queries and answers them with canned results.
type fakeDB struct {
	queries []string
	vars    []map[string]interface{}
	results []interface{}
	err     error
}

func (f *fakeDB) Connect(context.Context) error { return nil }
func (f *fakeDB) Close() error                  { return nil }
func (f *fakeDB) Ping(context.Context) error    { return nil }

func (f *fakeDB) Query(_ context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	f.queries = append(f.queries, query)
	f.vars = append(f.vars, vars)
	return f.results, f.err
}

func (f *fakeDB) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	res, err := f.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (f *fakeDB) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	_, err := f.Query(ctx, query, vars)
	return err
}

func okResult(rows ...map[string]interface{}) map[string]interface{} {
	result := make([]interface{}, len(rows))
	for i, r := range rows {
		result[i] = r
	}
	return map[string]interface{}{"status": "OK", "result": result}
}

func TestDefineStatements(t *testing.T) {
	t.Parallel()

	reg, err := crm.NewRegistry()
	require.NoError(t, err)
	role, err := reg.Type(crm.TypeAccountContactRole)
	require.NoError(t, err)

	stmts, err := DefineStatements(role)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"DEFINE TABLE IF NOT EXISTS AccountContactRole SCHEMAFULL",
		"DEFINE FIELD IF NOT EXISTS AccountId ON TABLE AccountContactRole TYPE string",
		"DEFINE FIELD IF NOT EXISTS ContactId ON TABLE AccountContactRole TYPE string",
		`DEFINE FIELD IF NOT EXISTS Role ON TABLE AccountContactRole TYPE option<string> ASSERT $value = NONE OR $value INSIDE ["Signatory", "Billing", "Technical", "Decision Maker"]`,
		"DEFINE FIELD IF NOT EXISTS IsPrimary ON TABLE AccountContactRole TYPE option<bool>",
	}, stmts)
}

func TestDefineStatements_RejectsUnsafeNames(t *testing.T) {
	t.Parallel()

	typ, err := record.NewType("Bad Table", []record.FieldDefinition{{Name: "Name", Kind: record.KindString}})
	require.NoError(t, err)

	_, err = DefineStatements(typ)
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestSelectQuery(t *testing.T) {
	t.Parallel()

	reg, err := crm.NewRegistry()
	require.NoError(t, err)
	accounts, err := reg.Type(crm.TypeAccount)
	require.NoError(t, err)

	q, err := Select(accounts).Eq("CurrencyIsoCode", crm.EUR).Eq("Type", crm.AccountPartner).Take(5).normalize()
	require.NoError(t, err)
	text, vars, ok := selectQuery(q)
	require.True(t, ok)
	assert.Equal(t, "SELECT * FROM type::table($tb) WHERE CurrencyIsoCode = $w0 AND Type = $w1 LIMIT 5", text)
	assert.Equal(t, map[string]interface{}{"tb": "Account", "w0": "EUR", "w1": "Partner"}, vars)

	text, vars, ok = selectQuery(ByID(accounts, "Account:abc"))
	require.True(t, ok)
	assert.Equal(t, "SELECT * FROM type::record($id) LIMIT 1", text)
	assert.Equal(t, "Account:abc", vars["id"])

	_, _, ok = selectQuery(ByID(accounts, "Contact:abc"))
	assert.False(t, ok)
}

func TestSurreal_PersistSendsOneTransaction(t *testing.T) {
	t.Parallel()

	reg, err := crm.NewRegistry()
	require.NoError(t, err)
	b := builder.New(reg)

	u1, err := b.BuildNamed(crm.TypeUser, nil)
	require.NoError(t, err)
	u2, err := b.BuildNamed(crm.TypeUser, nil)
	require.NoError(t, err)

	db := &fakeDB{results: []interface{}{
		okResult(map[string]interface{}{"id": models.RecordID{Table: "User", ID: "one"}}),
		okResult(map[string]interface{}{"id": models.RecordID{Table: "User", ID: "two"}}),
	}}
	gw := NewSurreal(db)

	_, err = gw.Persist(context.Background(), u1, u2)
	require.NoError(t, err)
	assert.Equal(t, "User:one", u1.ID())
	assert.Equal(t, "User:two", u2.ID())

	require.Len(t, db.queries, 1)
	q := db.queries[0]
	assert.True(t, strings.HasPrefix(q, "BEGIN TRANSACTION;"))
	assert.True(t, strings.HasSuffix(q, "COMMIT TRANSACTION;"))
	assert.Equal(t, 2, strings.Count(q, "CREATE type::table"))
	assert.Equal(t, "User", db.vars[0]["v2_tb"])
}

func TestSurreal_PersistCountMismatch(t *testing.T) {
	t.Parallel()

	reg, err := crm.NewRegistry()
	require.NoError(t, err)
	u, err := builder.New(reg).BuildNamed(crm.TypeUser, nil)
	require.NoError(t, err)

	gw := NewSurreal(&fakeDB{results: []interface{}{okResult()}})
	_, err = gw.Persist(context.Background(), u)

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.False(t, u.Persisted())
}

func TestSurreal_PersistWrapsStoreErrors(t *testing.T) {
	t.Parallel()

	reg, err := crm.NewRegistry()
	require.NoError(t, err)
	u, err := builder.New(reg).BuildNamed(crm.TypeUser, nil)
	require.NoError(t, err)

	gw := NewSurreal(&fakeDB{err: database.ErrQuery})
	_, err = gw.Persist(context.Background(), u)

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, OpPersist, pe.Op)
	assert.True(t, errors.Is(err, database.ErrQuery))
}

func TestSurreal_UpdateMergesAndUnsets(t *testing.T) {
	t.Parallel()

	reg, err := crm.NewRegistry()
	require.NoError(t, err)
	accounts, err := reg.Type(crm.TypeAccount)
	require.NoError(t, err)

	acct, err := record.Hydrate(accounts, "Account:abc", map[string]any{"Name": "Acme", "OwnerId": "User:u", "Phone": "+1"})
	require.NoError(t, err)
	require.NoError(t, acct.Set("Billing_Status__c", crm.BillingActive))
	require.NoError(t, acct.Set("Phone", nil))

	db := &fakeDB{}
	require.NoError(t, NewSurreal(db).Update(context.Background(), acct))
	assert.Empty(t, acct.Dirty())

	require.Len(t, db.queries, 1)
	assert.Contains(t, db.queries[0], "UPDATE type::record($v2_id) MERGE $v1_changes")
	assert.Contains(t, db.queries[0], "UNSET Phone")
}

func TestSurreal_UpdateWithoutChangesIsNoop(t *testing.T) {
	t.Parallel()

	reg, err := crm.NewRegistry()
	require.NoError(t, err)
	users, err := reg.Type(crm.TypeUser)
	require.NoError(t, err)
	u, err := record.Hydrate(users, "User:u", map[string]any{"Username": "a@example.com", "LastName": "A"})
	require.NoError(t, err)

	db := &fakeDB{}
	require.NoError(t, NewSurreal(db).Update(context.Background(), u))
	assert.Empty(t, db.queries)
}

func TestSurreal_FetchHydratesDriverValues(t *testing.T) {
	t.Parallel()

	reg, err := crm.NewRegistry()
	require.NoError(t, err)
	opps, err := reg.Type(crm.TypeOpportunity)
	require.NoError(t, err)

	closeDate := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	db := &fakeDB{results: []interface{}{okResult(map[string]interface{}{
		"id":        models.RecordID{Table: "Opportunity", ID: "o1"},
		"Name":      "Renewal",
		"CloseDate": models.CustomDateTime{Time: closeDate},
		"Amount":    uint64(500),
		"Extra":     "dropped",
	})}}

	got, err := NewSurreal(db).FetchSingle(context.Background(), ByID(opps, "Opportunity:o1"))
	require.NoError(t, err)
	assert.Equal(t, "Opportunity:o1", got.ID())
	assert.Equal(t, "Renewal", got.String("Name"))
	assert.True(t, got.Time("CloseDate").Equal(closeDate))
	assert.Equal(t, float64(500), got.Number("Amount"))
	assert.False(t, got.Has("Extra"))
}

func TestSurreal_FetchSingleNotFound(t *testing.T) {
	t.Parallel()

	reg, err := crm.NewRegistry()
	require.NoError(t, err)
	users, err := reg.Type(crm.TypeUser)
	require.NoError(t, err)

	_, err = NewSurreal(&fakeDB{results: []interface{}{okResult()}}).
		FetchSingle(context.Background(), Select(users).Eq("Username", "x@example.com"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSurreal_Integration(t *testing.T) {
	reg, err := crm.NewRegistry()
	require.NoError(t, err)

	var setup []string
	for _, name := range reg.Names() {
		typ, _ := reg.Type(name)
		stmts, err := DefineStatements(typ)
		require.NoError(t, err)
		setup = append(setup, strings.Join(stmts, ";\n"))
	}

	tdb := testdb.NewShared(t, setup...)
	defer tdb.Close()

	gw := NewSurreal(tdb.DB)
	b := builder.New(reg)

	newOwner := func(t *testing.T, ctx context.Context) *record.Instance {
		t.Helper()
		owner, err := b.BuildNamed(crm.TypeUser, nil)
		require.NoError(t, err)
		_, err = gw.Persist(ctx, owner)
		require.NoError(t, err)
		return owner
	}

	t.Run("persist fetch update", func(t *testing.T) {
		db := tdb.SetupSubtest(t)
		ctx := db.Ctx()
		owner := newOwner(t, ctx)

		acct, err := b.BuildNamed(crm.TypeAccount, record.Values{"OwnerId": owner.ID()})
		require.NoError(t, err)
		_, err = gw.Persist(ctx, acct)
		require.NoError(t, err)

		got, err := gw.FetchSingle(ctx, ByID(acct.Type(), acct.ID()))
		require.NoError(t, err)
		assert.Equal(t, acct.Values(), got.Values())

		require.NoError(t, acct.Set("Customer_Status__c", crm.CustomerExisting))
		require.NoError(t, gw.Update(ctx, acct))

		found, err := gw.FetchMany(ctx, Select(acct.Type()).Eq("Customer_Status__c", crm.CustomerExisting))
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, acct.ID(), found[0].ID())
	})

	t.Run("failed batch leaves no rows", func(t *testing.T) {
		db := tdb.SetupSubtest(t)
		ctx := db.Ctx()
		owner := newOwner(t, ctx)

		acct, err := b.BuildNamed(crm.TypeAccount, record.Values{"OwnerId": owner.ID()})
		require.NoError(t, err)
		// missing required AccountId
		orphan, err := b.BuildNamed(crm.TypeContact, nil)
		require.NoError(t, err)

		_, err = gw.Persist(ctx, acct, orphan)

		var pe *PersistenceError
		require.ErrorAs(t, err, &pe)
		assert.False(t, acct.Persisted())
		assert.False(t, orphan.Persisted())
		assert.Empty(t, database.ResultRows(db.MustQuery("SELECT * FROM Account", nil)))
	})
}
