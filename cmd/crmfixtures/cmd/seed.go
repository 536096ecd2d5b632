package cmd

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/forgo/crmfixtures/internal/crm"
	"github.com/forgo/crmfixtures/internal/fixtures"
	"github.com/forgo/crmfixtures/internal/linker"
	"github.com/forgo/crmfixtures/internal/record"
)

var (
	ownerName   string
	currency    string
	country     string
	billingID   string
	withContact bool
	stage       string
	setFields   []string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a fixture scenario",
	Long: `Creates the records of one scenario and prints them as JSON.

Records are owned by --owner (a username that must already exist) or by a
freshly created user when --owner is omitted.`,
}

var seedCustomerCmd = &cobra.Command{
	Use:   "customer",
	Short: "Create a customer account, optionally with a primary contact",
	RunE:  withSession(runSeedCustomer),
}

var seedPartnerLeadCmd = &cobra.Command{
	Use:   "partner-lead",
	Short: "Create a partner account and a lead registered by it",
	RunE:  withSession(runSeedPartnerLead),
}

var seedQuoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Create a customer, an opportunity and a quote on it",
	RunE:  withSession(runSeedQuote),
}

var seedApprovalCmd = &cobra.Command{
	Use:   "kyc-approval",
	Short: "Create a customer and a KYC approval request",
	RunE:  withSession(runSeedApproval),
}

var seedRecordCmd = &cobra.Command{
	Use:   "record TYPE",
	Short: "Create a single record of any registered type",
	Long: `Creates one record of TYPE with defaults applied. Field values are
given with --set Field=Value; references take the identifier of an existing
record. Required fields left unset are filled in: user references take the
--owner user, dates fall 30 days ahead, and other references get a new
record of their own, printed before the requested one.`,
	Args: cobra.ExactArgs(1),
	RunE: withSession(runSeedRecord),
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.AddCommand(seedCustomerCmd, seedPartnerLeadCmd, seedQuoteCmd, seedApprovalCmd, seedRecordCmd)

	seedCmd.PersistentFlags().StringVar(&ownerName, "owner", "", "username of the owning user")
	seedCmd.PersistentFlags().StringVar(&currency, "currency", "", "account currency (default: $FIXTURE_DEFAULT_CURRENCY)")
	seedCmd.PersistentFlags().StringVar(&country, "country", "", "billing country (default: $FIXTURE_DEFAULT_COUNTRY)")

	seedCustomerCmd.Flags().StringVar(&billingID, "existing", "", "external billing id; selects the existing-customer path")
	seedCustomerCmd.Flags().BoolVar(&withContact, "with-contact", false, "also create a primary contact and its role")

	seedQuoteCmd.Flags().StringVar(&stage, "stage", string(crm.StageQualify), "opportunity stage")

	seedRecordCmd.Flags().StringArrayVar(&setFields, "set", nil, "field value, as Field=Value (repeatable)")
}

type seedFunc func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error

// withSession opens the configured store for the duration of fn.
func withSession(fn seedFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Fixture.Timeout)
		defer cancel()

		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		return fn(ctx, cmd, s, args)
	}
}

func customerOpts() []func(*fixtures.CustomerOpts) {
	var opts []func(*fixtures.CustomerOpts)
	if currency != "" {
		opts = append(opts, fixtures.WithCurrency(crm.Currency(currency)))
	}
	if country != "" {
		opts = append(opts, fixtures.WithCountry(country))
	}
	if billingID != "" {
		opts = append(opts, fixtures.WithExternalBillingID(billingID))
	}
	return opts
}

func runSeedCustomer(ctx context.Context, cmd *cobra.Command, s *session, _ []string) error {
	owner, err := s.owner(ctx, ownerName)
	if err != nil {
		return err
	}

	if !withContact {
		acct, err := s.factory.CreateCustomer(ctx, owner.ID(), customerOpts()...)
		if err != nil {
			return err
		}
		return printRecords(cmd.OutOrStdout(), acct)
	}

	cc, err := s.factory.CreateCustomerWithPrimaryContact(ctx, owner.ID(), customerOpts()...)
	if err != nil {
		return err
	}
	return printRecords(cmd.OutOrStdout(), cc.Account, cc.Contact, cc.Role)
}

func runSeedPartnerLead(ctx context.Context, cmd *cobra.Command, s *session, _ []string) error {
	owner, err := s.owner(ctx, ownerName)
	if err != nil {
		return err
	}

	partner, err := s.factory.CreatePartnerAccount(ctx, owner.ID(), func(o *fixtures.PartnerOpts) {
		if currency != "" {
			o.Currency = crm.Currency(currency)
		}
		if country != "" {
			o.Country = country
		}
	})
	if err != nil {
		return err
	}
	lead, err := s.factory.CreatePartnerLead(ctx, partner)
	if err != nil {
		return err
	}
	return printRecords(cmd.OutOrStdout(), partner, lead)
}

func runSeedQuote(ctx context.Context, cmd *cobra.Command, s *session, _ []string) error {
	owner, err := s.owner(ctx, ownerName)
	if err != nil {
		return err
	}

	acct, err := s.factory.CreateCustomer(ctx, owner.ID(), customerOpts()...)
	if err != nil {
		return err
	}
	qo, err := s.factory.CreateQuote(ctx, acct, owner.ID(), func(o *fixtures.QuoteOpts) {
		o.Opportunity = append(o.Opportunity, fixtures.WithStage(crm.Stage(stage)))
	})
	if err != nil {
		return err
	}
	return printRecords(cmd.OutOrStdout(), acct, qo.Opportunity, qo.Quote)
}

func runSeedApproval(ctx context.Context, cmd *cobra.Command, s *session, _ []string) error {
	owner, err := s.owner(ctx, ownerName)
	if err != nil {
		return err
	}

	acct, err := s.factory.CreateCustomer(ctx, owner.ID(), customerOpts()...)
	if err != nil {
		return err
	}
	approval, err := s.factory.CreateKYCApproval(ctx, acct)
	if err != nil {
		return err
	}
	return printRecords(cmd.OutOrStdout(), acct, approval)
}

func runSeedRecord(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
	t, err := s.reg.Type(args[0])
	if err != nil {
		return err
	}
	overrides, err := parseSets(t, setFields)
	if err != nil {
		return err
	}

	sd := newSeeder(s)
	if _, err := sd.seed(ctx, t, overrides, 0); err != nil {
		return err
	}
	return printRecords(cmd.OutOrStdout(), sd.created...)
}

// maxSeedDepth bounds chains of required references, which an overlay can
// make cyclic.
const maxSeedDepth = 8

// seeder creates records of any registered type and fills the required
// fields the caller leaves unset. User references take the session owner,
// dates default to fixtures.DefaultCloseIn ahead, and any other reference
// gets a record of its own, created first. Each related type is created at
// most once per run, so a contact role and its contact share one account.
type seeder struct {
	s       *session
	owner   *record.Instance
	now     time.Time
	byType  map[string]*record.Instance
	created []*record.Instance
}

type parentLink struct {
	parent *record.Instance
	field  string
}

func newSeeder(s *session) *seeder {
	return &seeder{s: s, now: time.Now().UTC(), byType: map[string]*record.Instance{}}
}

func (sd *seeder) ownerID(ctx context.Context) (string, error) {
	if sd.owner == nil {
		owner, err := sd.s.owner(ctx, ownerName)
		if err != nil {
			return "", err
		}
		sd.owner = owner
	}
	return sd.owner.ID(), nil
}

// seed builds, links and persists one record of t. Records it creates,
// including t's, are appended to sd.created in persistence order.
func (sd *seeder) seed(ctx context.Context, t *record.RecordType, overrides record.Values, depth int) (*record.Instance, error) {
	if depth > maxSeedDepth {
		return nil, fmt.Errorf("%s: required references nest deeper than %d", t.Name(), maxSeedDepth)
	}

	values := maps.Clone(overrides)
	if values == nil {
		values = record.Values{}
	}
	var parents []parentLink
	for _, f := range t.Fields() {
		if !f.Required {
			continue
		}
		if _, set := values[f.Name]; set {
			continue
		}
		switch {
		case f.Kind == record.KindReference && f.RefType == crm.TypeUser:
			id, err := sd.ownerID(ctx)
			if err != nil {
				return nil, err
			}
			values[f.Name] = id
		case f.Kind == record.KindReference:
			parent, err := sd.related(ctx, f.RefType, depth)
			if err != nil {
				return nil, fmt.Errorf("creating %s for %s: %w", f.RefType, f.Name, err)
			}
			parents = append(parents, parentLink{parent, f.Name})
			if f.Policy != record.PolicyRelated {
				values[f.Name] = parent.ID()
			}
		case f.Kind == record.KindDate && !f.HasDefault():
			values[f.Name] = sd.now.Add(fixtures.DefaultCloseIn)
		}
	}

	rec, err := sd.s.factory.Builder().Build(t, values)
	if err != nil {
		return nil, err
	}
	for _, p := range parents {
		if err := linker.Link(p.parent, rec, p.field); err != nil {
			return nil, err
		}
	}
	if _, err := sd.s.gw.Persist(ctx, rec); err != nil {
		return nil, err
	}
	sd.created = append(sd.created, rec)
	return rec, nil
}

func (sd *seeder) related(ctx context.Context, typeName string, depth int) (*record.Instance, error) {
	if rec, ok := sd.byType[typeName]; ok {
		return rec, nil
	}
	t, err := sd.s.reg.Type(typeName)
	if err != nil {
		return nil, err
	}
	rec, err := sd.seed(ctx, t, nil, depth+1)
	if err != nil {
		return nil, err
	}
	sd.byType[typeName] = rec
	return rec, nil
}

// parseSets converts Field=Value pairs into typed overrides.
func parseSets(t *record.RecordType, sets []string) (record.Values, error) {
	out := record.Values{}
	for _, kv := range sets {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: expected Field=Value", kv)
		}
		f, err := t.Lookup(name)
		if err != nil {
			return nil, err
		}
		v, err := parseValue(f, raw)
		if err != nil {
			return nil, fmt.Errorf("--set %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func parseValue(f record.FieldDefinition, raw string) (any, error) {
	switch f.Kind {
	case record.KindNumber:
		return strconv.ParseFloat(raw, 64)
	case record.KindBool:
		return strconv.ParseBool(raw)
	case record.KindDate:
		if d, err := time.Parse(time.DateOnly, raw); err == nil {
			return d, nil
		}
		return time.Parse(time.RFC3339, raw)
	}
	return raw, nil
}
