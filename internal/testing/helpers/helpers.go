package helpers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/forgo/crmfixtures/internal/gateway"
	"github.com/forgo/crmfixtures/internal/record"
)

// ============================================================================
// Must Helpers
// ============================================================================

// Must returns a function that unwraps (value, error) pairs, failing the
// test on error.
func Must[T any](t *testing.T) func(T, error) T {
	return func(v T, err error) T {
		t.Helper()
		if err != nil {
			t.Fatalf("helpers: unexpected error: %v", err)
		}
		return v
	}
}

// Record is Must for calls returning a single record
func Record(t *testing.T) func(*record.Instance, error) *record.Instance {
	return Must[*record.Instance](t)
}

// ============================================================================
// Record Assertion Helpers
// ============================================================================

// AssertPersisted checks that rec has a store identifier
func AssertPersisted(t *testing.T, rec *record.Instance) {
	t.Helper()
	if rec == nil {
		t.Errorf("expected persisted record, got nil")
		return
	}
	if !rec.Persisted() {
		t.Errorf("expected %s to be persisted", rec.Label())
	}
}

// AssertReferences checks that child.field holds parent's identifier
func AssertReferences(t *testing.T, child *record.Instance, field string, parent *record.Instance) {
	t.Helper()
	got := child.String(field)
	if got == "" || got != parent.ID() {
		t.Errorf("expected %s.%s to reference %s, got %q", child.Label(), field, parent.Label(), got)
	}
}

// AssertField checks a field value, comparing times with Equal
func AssertField(t *testing.T, rec *record.Instance, field string, want any) {
	t.Helper()

	got, ok := rec.Get(field)
	if !ok {
		t.Errorf("expected %s.%s = %v, but it is unset", rec.Label(), field, want)
		return
	}

	f, _ := rec.Type().Field(field)
	norm, err := f.Check(rec.Type().Name(), want)
	if err != nil {
		t.Errorf("expected value %v does not fit %s.%s: %v", want, rec.Type().Name(), field, err)
		return
	}
	if gt, ok := got.(time.Time); ok {
		if !gt.Equal(norm.(time.Time)) {
			t.Errorf("expected %s.%s = %v, got %v", rec.Label(), field, norm, got)
		}
		return
	}
	if got != norm {
		t.Errorf("expected %s.%s = %v, got %v", rec.Label(), field, norm, got)
	}
}

// ============================================================================
// Store Assertion Helpers
// ============================================================================

// AssertRecordExists checks that rec can be fetched from the store and
// returns the stored copy
func AssertRecordExists(t *testing.T, gw gateway.Gateway, rec *record.Instance) *record.Instance {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := gw.FetchSingle(ctx, gateway.ByID(rec.Type(), rec.ID()))
	if err != nil {
		t.Errorf("expected record %s to exist: %v", rec.Label(), err)
		return nil
	}
	return got
}

// AssertRecordNotExists checks that no record of typ has the identifier
func AssertRecordNotExists(t *testing.T, gw gateway.Gateway, typ *record.RecordType, id string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := gw.FetchSingle(ctx, gateway.ByID(typ, id))
	if err == nil {
		t.Errorf("expected record %s(%s) to not exist, but it does", typ.Name(), id)
		return
	}
	if !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("failed to query for record: %v", err)
	}
}

// ============================================================================
// Utility Helpers
// ============================================================================

// TimeFromNow returns the current time plus d, truncated to the day in UTC
func TimeFromNow(d time.Duration) time.Time {
	return time.Now().Add(d).UTC().Truncate(24 * time.Hour)
}
