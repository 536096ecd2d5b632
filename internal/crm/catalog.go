// Package crm is the static catalog of CRM record types used by the test
// suite: customers, partners, contacts, opportunities, quotes, leads and
// approval requests.
//
// NewRegistry builds and freezes a schema.Registry holding every type. Field
// names are the CRM API names, so records map 1:1 onto the remote store.
package crm

import (
	"github.com/forgo/crmfixtures/internal/record"
	"github.com/forgo/crmfixtures/internal/schema"
)

// Record type names.
const (
	TypeUser               = "User"
	TypeAccount            = "Account"
	TypeContact            = "Contact"
	TypeAccountContactRole = "AccountContactRole"
	TypeOpportunity        = "Opportunity"
	TypeQuote              = "Quote"
	TypeLead               = "Lead"
	TypeApproval           = "Approval__c"
)

// DefaultCountry is the billing country of generated accounts and leads.
const DefaultCountry = "United States"

// Field shorthands used by the definitions below.
func text(name string) record.FieldDefinition {
	return record.FieldDefinition{Name: name, Kind: record.KindString}
}

func generated(name string, format record.Format, prefix string) record.FieldDefinition {
	return record.FieldDefinition{Name: name, Kind: record.KindString, Policy: record.PolicyGenerated, Format: format, Prefix: prefix}
}

func fixed(name string, kind record.FieldKind, v any) record.FieldDefinition {
	return record.FieldDefinition{Name: name, Kind: kind, Policy: record.PolicyFixed, Default: v}
}

func picklist(name string, opts []string, def string) record.FieldDefinition {
	f := record.FieldDefinition{Name: name, Kind: record.KindEnum, Options: opts}
	if def != "" {
		f.Policy = record.PolicyFixed
		f.Default = def
	}
	return f
}

func lookup(name, refType string) record.FieldDefinition {
	return record.FieldDefinition{Name: name, Kind: record.KindReference, RefType: refType}
}

func parent(name, refType string) record.FieldDefinition {
	return record.FieldDefinition{Name: name, Kind: record.KindReference, RefType: refType, Required: true, Policy: record.PolicyRelated}
}

func derived(name, via, source string) record.FieldDefinition {
	return record.FieldDefinition{Name: name, Kind: record.KindString, Policy: record.PolicyRelated, Derive: &record.Derivation{Via: via, Source: source}}
}

func required(f record.FieldDefinition) record.FieldDefinition {
	f.Required = true
	return f
}

type definition struct {
	name   string
	prefix string
	fields []record.FieldDefinition
}

var catalog = []definition{
	{
		name:   TypeUser,
		prefix: "005",
		fields: []record.FieldDefinition{
			required(generated("Username", record.FormatEmail, "user")),
			required(generated("LastName", record.FormatToken, "TestUser")),
			generated("Email", record.FormatEmail, "user"),
			text("Alias"),
		},
	},
	{
		name:   TypeAccount,
		prefix: "001",
		fields: []record.FieldDefinition{
			required(generated("Name", record.FormatToken, "TestAccount")),
			picklist("Type", accountTypes, string(AccountCustomer)),
			required(lookup("OwnerId", TypeUser)),
			picklist("CurrencyIsoCode", currencies, string(USD)),
			fixed("BillingCountry", record.KindString, DefaultCountry),
			generated("BillingStreet", record.FormatStreet, ""),
			generated("BillingCity", record.FormatCity, ""),
			generated("Phone", record.FormatPhone, "US"),
			picklist("Customer_Status__c", customerStatuses, string(CustomerNew)),
			text("External_Billing_Id__c"),
			picklist("Billing_Status__c", billingStatuses, string(BillingNone)),
			text("Partner_ID__c"),
			lookup("ParentId", TypeAccount),
		},
	},
	{
		name:   TypeContact,
		prefix: "003",
		fields: []record.FieldDefinition{
			generated("FirstName", record.FormatFirstName, ""),
			required(generated("LastName", record.FormatToken, "TestContact")),
			generated("Email", record.FormatEmail, "contact"),
			generated("Phone", record.FormatPhone, "US"),
			parent("AccountId", TypeAccount),
			derived("MailingCountry", "AccountId", "BillingCountry"),
			lookup("OwnerId", TypeUser),
		},
	},
	{
		name:   TypeAccountContactRole,
		prefix: "02Z",
		fields: []record.FieldDefinition{
			parent("AccountId", TypeAccount),
			parent("ContactId", TypeContact),
			picklist("Role", contactRoles, string(RoleSignatory)),
			fixed("IsPrimary", record.KindBool, false),
		},
	},
	{
		name:   TypeOpportunity,
		prefix: "006",
		fields: []record.FieldDefinition{
			required(generated("Name", record.FormatToken, "TestOpportunity")),
			parent("AccountId", TypeAccount),
			required(lookup("OwnerId", TypeUser)),
			picklist("StageName", stages, string(StageQualify)),
			{Name: "CloseDate", Kind: record.KindDate, Required: true},
			{Name: "Amount", Kind: record.KindNumber},
			derived("CurrencyIsoCode", "AccountId", "CurrencyIsoCode"),
		},
	},
	{
		name:   TypeQuote,
		prefix: "0Q0",
		fields: []record.FieldDefinition{
			required(generated("Name", record.FormatToken, "TestQuote")),
			parent("OpportunityId", TypeOpportunity),
			picklist("Status", quoteStatuses, string(QuoteDraft)),
			{Name: "ExpirationDate", Kind: record.KindDate},
			fixed("Discount__c", record.KindNumber, 0),
		},
	},
	{
		name:   TypeLead,
		prefix: "00Q",
		fields: []record.FieldDefinition{
			generated("FirstName", record.FormatFirstName, ""),
			required(generated("LastName", record.FormatToken, "TestLead")),
			required(generated("Company", record.FormatCompany, "")),
			generated("Email", record.FormatEmail, "lead"),
			generated("Phone", record.FormatPhone, "US"),
			picklist("Status", leadStatuses, string(LeadNew)),
			picklist("LeadSource", leadSources, string(SourceWeb)),
			fixed("Country", record.KindString, DefaultCountry),
			lookup("Partner_Account__c", TypeAccount),
			lookup("OwnerId", TypeUser),
		},
	},
	{
		name:   TypeApproval,
		prefix: "a0A",
		fields: []record.FieldDefinition{
			parent("Account__c", TypeAccount),
			lookup("Opportunity__c", TypeOpportunity),
			picklist("Type__c", approvalTypes, string(ApprovalKYC)),
			picklist("Status__c", approvalStatuses, string(ApprovalNew)),
			text("Comments__c"),
		},
	},
}

// Register adds the catalog types to reg without freezing it, so callers
// can layer additional types on top before calling Freeze.
func Register(reg *schema.Registry) error {
	for _, d := range catalog {
		if _, err := reg.Register(d.name, d.fields, record.WithKeyPrefix(d.prefix)); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a frozen registry holding the catalog.
func NewRegistry() (*schema.Registry, error) {
	reg := schema.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	if err := reg.Freeze(); err != nil {
		return nil, err
	}
	return reg, nil
}
