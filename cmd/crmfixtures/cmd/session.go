package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/forgo/crmfixtures/internal/crm"
	"github.com/forgo/crmfixtures/internal/database"
	"github.com/forgo/crmfixtures/internal/fixtures"
	"github.com/forgo/crmfixtures/internal/gateway"
	"github.com/forgo/crmfixtures/internal/record"
	"github.com/forgo/crmfixtures/internal/schema"
)

// session is the wiring shared by all commands.
type session struct {
	reg     *schema.Registry
	gw      gateway.Gateway
	factory *fixtures.Factory
	db      database.Database
}

// loadRegistry returns the catalog plus the configured overlay, frozen.
func loadRegistry() (*schema.Registry, error) {
	reg := schema.NewRegistry()
	if err := crm.Register(reg); err != nil {
		return nil, err
	}
	if cfg.Fixture.SchemaFile != "" {
		if err := schema.LoadYAMLFile(reg, cfg.Fixture.SchemaFile); err != nil {
			return nil, err
		}
	}
	if err := reg.Freeze(); err != nil {
		return nil, err
	}
	return reg, nil
}

func openSession(ctx context.Context) (*session, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}
	s := &session{reg: reg}

	if cfg.IsSurreal() {
		db := database.NewSurrealDB(cfg.DB())
		if err := db.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		slog.Info("connected to database",
			slog.String("host", cfg.Database.Host),
			slog.String("namespace", cfg.Database.Namespace),
			slog.String("database", cfg.Database.Database),
		)
		sg := gateway.NewSurreal(db)
		if err := sg.DefineSchema(ctx, reg); err != nil {
			_ = db.Close()
			return nil, err
		}
		s.db = db
		s.gw = sg
	} else {
		slog.Info("using in-memory store; records are discarded on exit")
		s.gw = gateway.NewMemory()
	}

	s.factory = fixtures.New(s.gw, reg,
		fixtures.WithLogger(slog.Default()),
		fixtures.WithDefaults(crm.Currency(cfg.Fixture.DefaultCurrency), cfg.Fixture.DefaultCountry),
	)
	return s, nil
}

func (s *session) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

// owner returns the user named by username, or a new user when username
// is empty.
func (s *session) owner(ctx context.Context, username string) (*record.Instance, error) {
	if username != "" {
		return s.factory.FindUser(ctx, username)
	}
	return s.factory.CreateUser(ctx)
}

type recordJSON struct {
	Type   string        `json:"type"`
	ID     string        `json:"id"`
	Fields record.Values `json:"fields"`
}

func printRecords(w io.Writer, recs ...*record.Instance) error {
	out := make([]recordJSON, 0, len(recs))
	for _, r := range recs {
		out = append(out, recordJSON{Type: r.Type().Name(), ID: r.ID(), Fields: r.Values()})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
