package fixtures

import (
	"context"

	"github.com/forgo/crmfixtures/internal/crm"
	"github.com/forgo/crmfixtures/internal/record"
	"github.com/forgo/crmfixtures/internal/uniq"
)

// PartnerOpts customizes partner account creation
type PartnerOpts struct {
	Name      string
	PartnerID string
	Currency  crm.Currency
	Country   string
	Fields    record.Values
}

// CreatePartnerAccount creates a partner account with a unique partner id.
func (f *Factory) CreatePartnerAccount(ctx context.Context, ownerID string, opts ...func(*PartnerOpts)) (*record.Instance, error) {
	o := &PartnerOpts{
		PartnerID: uniq.String("PRT-"),
		Currency:  f.currency,
		Country:   f.country,
	}
	for _, fn := range opts {
		fn(o)
	}

	values := record.Values{
		"OwnerId":         ownerID,
		"Type":            crm.AccountPartner,
		"Partner_ID__c":   o.PartnerID,
		"CurrencyIsoCode": o.Currency,
		"BillingCountry":  o.Country,
	}
	setIf(values, "Name", o.Name)

	partner, err := f.build(crm.TypeAccount, values, o.Fields)
	if err != nil {
		return nil, err
	}
	if err := f.persist(ctx, partner); err != nil {
		return nil, err
	}
	return partner, nil
}

// LeadOpts customizes lead creation
type LeadOpts struct {
	Company  string
	LastName string
	Status   crm.LeadStatus
	Fields   record.Values
}

// CreatePartnerLead creates a lead registered by partner. The lead is owned
// by the partner's owner when it has one.
func (f *Factory) CreatePartnerLead(ctx context.Context, partner *record.Instance, opts ...func(*LeadOpts)) (*record.Instance, error) {
	o := &LeadOpts{Status: crm.LeadNew}
	for _, fn := range opts {
		fn(o)
	}

	values := record.Values{
		"LeadSource": crm.SourcePartner,
		"Status":     o.Status,
		"Country":    partner.String("BillingCountry"),
	}
	setIf(values, "Company", o.Company)
	setIf(values, "LastName", o.LastName)
	setIf(values, "OwnerId", partner.String("OwnerId"))
	if values["Country"] == "" {
		values["Country"] = f.country
	}

	lead, err := f.build(crm.TypeLead, values, o.Fields)
	if err != nil {
		return nil, err
	}
	if err := linkAll(lead, link{partner, "Partner_Account__c"}); err != nil {
		return nil, err
	}
	if err := f.persist(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}
