package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/crmfixtures/internal/builder"
	"github.com/forgo/crmfixtures/internal/crm"
	"github.com/forgo/crmfixtures/internal/record"
	"github.com/forgo/crmfixtures/internal/schema"
)

type env struct {
	reg *schema.Registry
	b   *builder.Builder
	gw  *Memory
}

func newEnv(t *testing.T) *env {
	t.Helper()
	reg, err := crm.NewRegistry()
	require.NoError(t, err)
	return &env{reg: reg, b: builder.New(reg), gw: NewMemory()}
}

func (e *env) typ(t *testing.T, name string) *record.RecordType {
	t.Helper()
	typ, err := e.reg.Type(name)
	require.NoError(t, err)
	return typ
}

func (e *env) persist(t *testing.T, name string, overrides record.Values) *record.Instance {
	t.Helper()
	inst, err := e.b.BuildNamed(name, overrides)
	require.NoError(t, err)
	_, err = e.gw.Persist(context.Background(), inst)
	require.NoError(t, err)
	return inst
}

func (e *env) user(t *testing.T) *record.Instance {
	return e.persist(t, crm.TypeUser, nil)
}

func TestMemory_PersistBackfillsIdentifiers(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	owner := e.user(t)

	a, err := e.b.BuildNamed(crm.TypeAccount, record.Values{"OwnerId": owner.ID()})
	require.NoError(t, err)
	b, err := e.b.BuildNamed(crm.TypeAccount, record.Values{"OwnerId": owner.ID()})
	require.NoError(t, err)

	out, err := e.gw.Persist(context.Background(), a, b)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Same(t, a, out[0])
	assert.Same(t, b, out[1])

	assert.Regexp(t, `^001[0-9A-F]{12}$`, a.ID())
	assert.Regexp(t, `^005[0-9A-F]{12}$`, owner.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, e.gw.Len(crm.TypeAccount))
}

func TestMemory_RoundTrip(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	owner := e.user(t)
	acct := e.persist(t, crm.TypeAccount, record.Values{"OwnerId": owner.ID()})

	closeDate := time.Date(2030, 6, 30, 0, 0, 0, 0, time.UTC)
	opp, err := e.b.BuildNamed(crm.TypeOpportunity, record.Values{
		"OwnerId":   owner.ID(),
		"AccountId": acct.ID(),
		"CloseDate": closeDate,
		"Amount":    1200,
	})
	require.NoError(t, err)
	built := opp.Values()

	_, err = e.gw.Persist(context.Background(), opp)
	require.NoError(t, err)

	got, err := e.gw.FetchSingle(context.Background(), ByID(opp.Type(), opp.ID()))
	require.NoError(t, err)
	assert.Equal(t, opp.ID(), got.ID())
	assert.Equal(t, built, got.Values())
	assert.True(t, got.Time("CloseDate").Equal(closeDate))
}

func TestMemory_PersistRejectsAlreadyPersisted(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	owner := e.user(t)

	_, err := e.gw.Persist(context.Background(), owner)
	require.ErrorIs(t, err, ErrAlreadyPersisted)

	var pe *PersistenceError
	assert.False(t, errors.As(err, &pe))
}

func TestMemory_PersistValidatesRequiredFields(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	contact, err := e.b.BuildNamed(crm.TypeContact, nil)
	require.NoError(t, err)

	_, err = e.gw.Persist(context.Background(), contact)

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, OpPersist, pe.Op)
	assert.Equal(t, crm.TypeContact, pe.Type)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "AccountId")
	assert.False(t, contact.Persisted())
}

func TestMemory_PersistValidatesReferences(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	owner := e.user(t)

	tests := []struct {
		name  string
		owner string
		want  string
	}{
		{name: "missing target", owner: "005000000000000", want: "missing record"},
		{name: "wrong type", owner: "", want: "expects User"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := tt.owner
			if ref == "" {
				other := e.persist(t, crm.TypeAccount, record.Values{"OwnerId": owner.ID()})
				ref = other.ID()
			}
			acct, err := e.b.BuildNamed(crm.TypeAccount, record.Values{"OwnerId": ref})
			require.NoError(t, err)

			_, err = e.gw.Persist(context.Background(), acct)
			require.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMemory_BatchIsAllOrNothing(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	owner := e.user(t)

	good, err := e.b.BuildNamed(crm.TypeAccount, record.Values{"OwnerId": owner.ID()})
	require.NoError(t, err)
	bad, err := e.b.BuildNamed(crm.TypeContact, nil)
	require.NoError(t, err)

	_, err = e.gw.Persist(context.Background(), good, bad)
	require.Error(t, err)
	assert.False(t, good.Persisted())
	assert.Equal(t, 0, e.gw.Len(crm.TypeAccount))
}

func TestMemory_FailWith(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	boom := errors.New("INSUFFICIENT_ACCESS")
	e.gw.FailWith(func(op string, rec *record.Instance) error {
		if op == OpPersist && rec.Type().Name() == crm.TypeUser {
			return boom
		}
		return nil
	})

	u, err := e.b.BuildNamed(crm.TypeUser, nil)
	require.NoError(t, err)
	_, err = e.gw.Persist(context.Background(), u)

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, boom)

	e.gw.FailWith(nil)
	_, err = e.gw.Persist(context.Background(), u)
	require.NoError(t, err)
}

func TestMemory_PersistHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	u, err := e.b.BuildNamed(crm.TypeUser, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.gw.Persist(ctx, u)

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemory_UpdateSendsDirtyFields(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	owner := e.user(t)
	acct := e.persist(t, crm.TypeAccount, record.Values{"OwnerId": owner.ID()})

	require.NoError(t, acct.Set("Billing_Status__c", crm.BillingActive))
	require.NoError(t, acct.Set("Phone", nil))
	assert.Equal(t, []string{"Billing_Status__c", "Phone"}, acct.Dirty())

	require.NoError(t, e.gw.Update(context.Background(), acct))
	assert.Empty(t, acct.Dirty())

	got, err := e.gw.FetchSingle(context.Background(), ByID(acct.Type(), acct.ID()))
	require.NoError(t, err)
	assert.Equal(t, "Active", got.String("Billing_Status__c"))
	assert.False(t, got.Has("Phone"))
}

func TestMemory_UpdateValidates(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	owner := e.user(t)
	acct := e.persist(t, crm.TypeAccount, record.Values{"OwnerId": owner.ID()})

	require.NoError(t, acct.Set("Name", nil))
	err := e.gw.Update(context.Background(), acct)
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, []string{"Name"}, acct.Dirty())

	got, err := e.gw.FetchSingle(context.Background(), ByID(acct.Type(), acct.ID()))
	require.NoError(t, err)
	assert.True(t, got.Has("Name"))
}

func TestMemory_UpdateRejectsUnpersisted(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	u, err := e.b.BuildNamed(crm.TypeUser, nil)
	require.NoError(t, err)

	err = e.gw.Update(context.Background(), u)
	assert.ErrorIs(t, err, ErrNotPersisted)
}

func TestMemory_FetchManyFiltersAndLimits(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	owner := e.user(t)
	var euro []*record.Instance
	for i := 0; i < 3; i++ {
		euro = append(euro, e.persist(t, crm.TypeAccount, record.Values{"OwnerId": owner.ID(), "CurrencyIsoCode": crm.EUR}))
	}
	e.persist(t, crm.TypeAccount, record.Values{"OwnerId": owner.ID()})

	accounts := e.typ(t, crm.TypeAccount)
	found, err := e.gw.FetchMany(context.Background(), Select(accounts).Eq("CurrencyIsoCode", crm.EUR))
	require.NoError(t, err)
	require.Len(t, found, 3)
	for i, inst := range found {
		assert.Equal(t, euro[i].ID(), inst.ID(), "insertion order")
	}

	found, err = e.gw.FetchMany(context.Background(), Select(accounts).Eq("CurrencyIsoCode", crm.EUR).Take(2))
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = e.gw.FetchMany(context.Background(), Select(accounts).Eq("CurrencyIsoCode", crm.GBP))
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestMemory_FetchSingle(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	owner := e.user(t)
	users := e.typ(t, crm.TypeUser)

	got, err := e.gw.FetchSingle(context.Background(), Select(users).Eq("Username", owner.String("Username")))
	require.NoError(t, err)
	assert.Equal(t, owner.ID(), got.ID())

	_, err = e.gw.FetchSingle(context.Background(), Select(users).Eq("Username", "nobody@example.com"))
	assert.ErrorIs(t, err, ErrNotFound)

	// an id of another type does not match
	accounts := e.typ(t, crm.TypeAccount)
	_, err = e.gw.FetchSingle(context.Background(), ByID(accounts, owner.ID()))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_FetchRejectsInvalidQuery(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	users := e.typ(t, crm.TypeUser)

	_, err := e.gw.FetchMany(context.Background(), Select(users).Eq("Colour", "red"))
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = e.gw.FetchMany(context.Background(), Query{})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestMemory_FetchedRecordsAreIndependent(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	owner := e.user(t)

	got, err := e.gw.FetchSingle(context.Background(), ByID(owner.Type(), owner.ID()))
	require.NoError(t, err)
	require.NoError(t, got.Set("Alias", "changed"))

	again, err := e.gw.FetchSingle(context.Background(), ByID(owner.Type(), owner.ID()))
	require.NoError(t, err)
	assert.False(t, again.Has("Alias"))
}

func TestMemory_ConcurrentPersist(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	const workers = 16

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := e.b.BuildNamed(crm.TypeUser, nil)
			if err == nil {
				_, err = e.gw.Persist(context.Background(), u)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, workers, e.gw.Len(crm.TypeUser))
}
