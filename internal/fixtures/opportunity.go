package fixtures

import (
	"context"
	"time"

	"github.com/forgo/crmfixtures/internal/crm"
	"github.com/forgo/crmfixtures/internal/record"
)

// ============================================================================
// Opportunity Fixtures
// ============================================================================

// OpportunityOpts customizes opportunity creation
type OpportunityOpts struct {
	Name      string
	Stage     crm.Stage
	CloseDate time.Time
	Amount    float64
	Fields    record.Values
}

// WithStage sets the opportunity stage.
func WithStage(stage crm.Stage) func(*OpportunityOpts) {
	return func(o *OpportunityOpts) {
		o.Stage = stage
	}
}

// WithAmount sets the opportunity amount.
func WithAmount(amount float64) func(*OpportunityOpts) {
	return func(o *OpportunityOpts) {
		o.Amount = amount
	}
}

func (f *Factory) opportunityValues(ownerID string, opts []func(*OpportunityOpts)) (record.Values, record.Values) {
	o := &OpportunityOpts{
		Stage:     crm.StageQualify,
		CloseDate: f.now().Add(DefaultCloseIn),
	}
	for _, fn := range opts {
		fn(o)
	}

	values := record.Values{
		"OwnerId":   ownerID,
		"StageName": o.Stage,
		"CloseDate": o.CloseDate,
	}
	setIf(values, "Name", o.Name)
	setIf(values, "Amount", o.Amount)
	return values, o.Fields
}

// CreateOpportunity creates an opportunity on account. It closes
// DefaultCloseIn from now and takes the account's currency unless the
// options say otherwise.
func (f *Factory) CreateOpportunity(ctx context.Context, account *record.Instance, ownerID string, opts ...func(*OpportunityOpts)) (*record.Instance, error) {
	values, fields := f.opportunityValues(ownerID, opts)

	opp, err := f.build(crm.TypeOpportunity, values, fields)
	if err != nil {
		return nil, err
	}
	if err := linkAll(opp, link{account, "AccountId"}); err != nil {
		return nil, err
	}
	if err := f.persist(ctx, opp); err != nil {
		return nil, err
	}
	return opp, nil
}

// ============================================================================
// Quote Fixtures
// ============================================================================

// QuoteOpts customizes quote creation
type QuoteOpts struct {
	Name           string
	Status         crm.QuoteStatus
	ExpirationDate time.Time
	Discount       float64
	Fields         record.Values

	// Used by CreateQuote. OpportunityID reuses an existing opportunity;
	// otherwise one is created with the Opportunity options.
	OpportunityID string
	Opportunity   []func(*OpportunityOpts)
}

// WithOpportunityID makes CreateQuote reuse an existing opportunity.
func WithOpportunityID(id string) func(*QuoteOpts) {
	return func(o *QuoteOpts) {
		o.OpportunityID = id
	}
}

func (f *Factory) quoteOpts(opts []func(*QuoteOpts)) (*QuoteOpts, record.Values) {
	o := &QuoteOpts{Status: crm.QuoteDraft}
	for _, fn := range opts {
		fn(o)
	}

	values := record.Values{"Status": o.Status}
	setIf(values, "Name", o.Name)
	setIf(values, "ExpirationDate", o.ExpirationDate)
	setIf(values, "Discount__c", o.Discount)
	setIf(values, "OpportunityId", o.OpportunityID)
	return o, values
}

// CreateQuoteForOpportunity creates a quote on opp.
func (f *Factory) CreateQuoteForOpportunity(ctx context.Context, opp *record.Instance, opts ...func(*QuoteOpts)) (*record.Instance, error) {
	o, values := f.quoteOpts(opts)

	quote, err := f.build(crm.TypeQuote, values, o.Fields)
	if err != nil {
		return nil, err
	}
	if err := linkAll(quote, link{opp, "OpportunityId"}); err != nil {
		return nil, err
	}
	if err := f.persist(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// QuoteWithOpportunity is a quote and the opportunity it belongs to.
type QuoteWithOpportunity struct {
	Quote       *record.Instance
	Opportunity *record.Instance
}

// CreateQuote creates a quote for account. The quote's opportunity is
// fetched when WithOpportunityID is given and created on account otherwise.
func (f *Factory) CreateQuote(ctx context.Context, account *record.Instance, ownerID string, opts ...func(*QuoteOpts)) (*QuoteWithOpportunity, error) {
	o, values := f.quoteOpts(opts)

	quote, err := f.build(crm.TypeQuote, values, o.Fields)
	if err != nil {
		return nil, err
	}

	oppValues, oppFields := f.opportunityValues(ownerID, o.Opportunity)
	oppValues["AccountId"] = account.ID()
	oppValues["CurrencyIsoCode"] = account.String("CurrencyIsoCode")
	for k, v := range oppFields {
		oppValues[k] = v
	}

	opp, err := f.linker.EnsureRelated(ctx, quote, "OpportunityId", crm.TypeOpportunity, oppValues)
	if err != nil {
		return nil, err
	}
	if err := f.persist(ctx, quote); err != nil {
		return nil, err
	}
	return &QuoteWithOpportunity{Quote: quote, Opportunity: opp}, nil
}
