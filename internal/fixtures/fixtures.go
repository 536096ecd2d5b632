package fixtures

import (
	"context"
	"log/slog"
	"maps"
	"time"

	"github.com/forgo/crmfixtures/internal/builder"
	"github.com/forgo/crmfixtures/internal/crm"
	"github.com/forgo/crmfixtures/internal/gateway"
	"github.com/forgo/crmfixtures/internal/linker"
	"github.com/forgo/crmfixtures/internal/record"
	"github.com/forgo/crmfixtures/internal/schema"
)

// DefaultCloseIn is how far ahead generated opportunities close.
const DefaultCloseIn = 30 * 24 * time.Hour

// Factory creates CRM scenarios in a store
type Factory struct {
	gw       gateway.Gateway
	registry *schema.Registry
	builder  *builder.Builder
	linker   *linker.Linker
	logger   *slog.Logger
	currency crm.Currency
	country  string
	now      func() time.Time
	genOpts  []builder.Option
}

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets the logger. Persisted records are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithDefaults sets the currency and billing country of generated accounts.
func WithDefaults(currency crm.Currency, country string) Option {
	return func(f *Factory) {
		f.currency = currency
		f.country = country
	}
}

// WithClock replaces time.Now for computed dates.
func WithClock(now func() time.Time) Option {
	return func(f *Factory) {
		f.now = now
	}
}

// WithGenerator replaces the unique-value generator used for defaults.
func WithGenerator(g builder.Generator) Option {
	return func(f *Factory) {
		f.genOpts = append(f.genOpts, builder.WithGenerator(g))
	}
}

// New creates a new fixture factory
func New(gw gateway.Gateway, reg *schema.Registry, opts ...Option) *Factory {
	f := &Factory{
		gw:       gw,
		registry: reg,
		logger:   slog.Default(),
		currency: crm.USD,
		country:  crm.DefaultCountry,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.builder = builder.New(reg, f.genOpts...)
	f.linker = linker.New(gw, f.builder, linker.WithLogger(f.logger))
	return f
}

// Gateway returns the store the factory writes to.
func (f *Factory) Gateway() gateway.Gateway { return f.gw }

// Builder returns the factory's record builder.
func (f *Factory) Builder() *builder.Builder { return f.builder }

// build builds a record of the named type from layered value sets; later
// sets win.
func (f *Factory) build(typeName string, layers ...record.Values) (*record.Instance, error) {
	values := record.Values{}
	for _, l := range layers {
		maps.Copy(values, l)
	}
	return f.builder.BuildNamed(typeName, values)
}

// persist stores recs as one batch.
func (f *Factory) persist(ctx context.Context, recs ...*record.Instance) error {
	if _, err := f.gw.Persist(ctx, recs...); err != nil {
		return err
	}
	for _, r := range recs {
		f.logger.Debug("fixture record persisted",
			slog.String("type", r.Type().Name()),
			slog.String("id", r.ID()),
		)
	}
	return nil
}

// linkAll links each parent through its field, in order.
func linkAll(child *record.Instance, links ...link) error {
	for _, l := range links {
		if err := linker.Link(l.parent, child, l.field); err != nil {
			return err
		}
	}
	return nil
}

type link struct {
	parent *record.Instance
	field  string
}

// setIf adds v under key when v is not the zero value.
func setIf[T comparable](values record.Values, key string, v T) {
	var zero T
	if v != zero {
		values[key] = v
	}
}
