// Package linker populates reference fields between records.
//
// Link wires an already-persisted parent into a child. EnsureRelated is the
// lazy form: it returns the record a child already points at, or builds,
// persists and links a new one.
package linker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/forgo/crmfixtures/internal/builder"
	"github.com/forgo/crmfixtures/internal/gateway"
	"github.com/forgo/crmfixtures/internal/record"
)

// Link sets child[refField] to parent's identifier and copies every field
// the child derives through refField that the child has not set itself.
func Link(parent, child *record.Instance, refField string) error {
	f, err := child.Type().Lookup(refField)
	if err != nil {
		return err
	}
	if f.Kind != record.KindReference {
		return fmt.Errorf("%w: %s.%s", ErrNotReference, child.Type().Name(), refField)
	}
	if f.RefType != parent.Type().Name() {
		return fmt.Errorf("%w: %s.%s expects %s, got %s",
			ErrTypeMismatch, child.Type().Name(), refField, f.RefType, parent.Type().Name())
	}
	if !parent.Persisted() {
		return &UnpersistedParentError{Parent: parent.Type().Name(), Child: child.Type().Name(), Field: refField}
	}

	if err := child.Set(refField, parent.ID()); err != nil {
		return err
	}
	for _, d := range child.Type().DerivedVia(refField) {
		if child.Has(d.Name) {
			continue
		}
		v, ok := parent.Get(d.Derive.Source)
		if !ok {
			continue
		}
		if err := child.Set(d.Name, v); err != nil {
			return fmt.Errorf("derive %s.%s from %s.%s: %w",
				child.Type().Name(), d.Name, parent.Type().Name(), d.Derive.Source, err)
		}
	}
	return nil
}

// Linker resolves references against a store.
type Linker struct {
	gw      gateway.Gateway
	builder *builder.Builder
	logger  *slog.Logger
}

// Option configures a Linker.
type Option func(*Linker)

// WithLogger sets the logger used for records created on demand.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Linker) {
		l.logger = logger
	}
}

// New returns a Linker that creates missing related records with b and
// persists them through gw.
func New(gw gateway.Gateway, b *builder.Builder, opts ...Option) *Linker {
	l := &Linker{gw: gw, builder: b, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// EnsureRelated returns the record child references through refField. When
// the reference is already set the record is fetched; otherwise a record of
// relatedType is built with overrides, persisted and linked. Calling it again
// on the same child returns the same related record.
func (l *Linker) EnsureRelated(ctx context.Context, child *record.Instance, refField, relatedType string, overrides record.Values) (*record.Instance, error) {
	f, err := child.Type().Lookup(refField)
	if err != nil {
		return nil, err
	}
	if f.Kind != record.KindReference {
		return nil, fmt.Errorf("%w: %s.%s", ErrNotReference, child.Type().Name(), refField)
	}
	if f.RefType != relatedType {
		return nil, fmt.Errorf("%w: %s.%s expects %s, got %s",
			ErrTypeMismatch, child.Type().Name(), refField, f.RefType, relatedType)
	}

	typ, err := l.builder.Registry().Type(relatedType)
	if err != nil {
		return nil, err
	}

	if id := child.String(refField); id != "" {
		return l.gw.FetchSingle(ctx, gateway.ByID(typ, id))
	}

	related, err := l.builder.Build(typ, overrides)
	if err != nil {
		return nil, err
	}
	if _, err := l.gw.Persist(ctx, related); err != nil {
		return nil, err
	}
	l.logger.Debug("related record created",
		slog.String("type", relatedType),
		slog.String("id", related.ID()),
		slog.String("for", child.Label()),
		slog.String("field", refField),
	)

	if err := Link(related, child, refField); err != nil {
		return nil, err
	}
	return related, nil
}
