package crm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/crmfixtures/internal/record"
	"github.com/forgo/crmfixtures/internal/schema"
)

func TestNewRegistry_RegistersCatalog(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry()
	require.NoError(t, err)
	assert.True(t, reg.Frozen())

	for _, name := range []string{
		TypeUser, TypeAccount, TypeContact, TypeAccountContactRole,
		TypeOpportunity, TypeQuote, TypeLead, TypeApproval,
	} {
		typ, err := reg.Type(name)
		require.NoError(t, err, name)
		assert.Len(t, typ.KeyPrefix(), 3, name)
	}
}

func TestNewRegistry_KeyPrefixesAreDistinct(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry()
	require.NoError(t, err)

	seen := map[string]string{}
	for _, name := range reg.Names() {
		typ, _ := reg.Type(name)
		if other, dup := seen[typ.KeyPrefix()]; dup {
			t.Errorf("%s and %s share key prefix %s", name, other, typ.KeyPrefix())
		}
		seen[typ.KeyPrefix()] = name
	}
}

func TestCatalog_ContactDerivesCountryFromAccount(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry()
	require.NoError(t, err)
	contact, err := reg.Type(TypeContact)
	require.NoError(t, err)

	derived := contact.DerivedVia("AccountId")
	require.Len(t, derived, 1)
	assert.Equal(t, "MailingCountry", derived[0].Name)
	assert.Equal(t, "BillingCountry", derived[0].Derive.Source)
}

func TestCatalog_AccountOwnerHasNoDefault(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry()
	require.NoError(t, err)
	acct, err := reg.Type(TypeAccount)
	require.NoError(t, err)

	owner, ok := acct.Field("OwnerId")
	require.True(t, ok)
	assert.True(t, owner.Required)
	assert.False(t, owner.HasDefault())
}

func TestRegister_AllowsOverlayBeforeFreeze(t *testing.T) {
	t.Parallel()

	reg := schema.NewRegistry()
	require.NoError(t, Register(reg))
	_, err := reg.Register("Invoice__c", []record.FieldDefinition{
		{Name: "Account__c", Kind: record.KindReference, RefType: TypeAccount, Policy: record.PolicyRelated},
	})
	require.NoError(t, err)
	require.NoError(t, reg.Freeze())
}

func TestEnums_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, StageClosedWon.Valid())
	assert.False(t, Stage("Won").Valid())
	assert.True(t, ApprovalPendingL2.Valid())
	assert.False(t, ApprovalStatus("pending").Valid())
	assert.True(t, Currency("GBP").Valid())
	assert.False(t, Currency("JPY").Valid())
	assert.Equal(t, []string{"USD", "EUR", "GBP", "CAD", "AUD"}, Currencies())
}

func TestEnums_OptionsFeedCatalog(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry()
	require.NoError(t, err)

	tests := []struct {
		typ, field string
		options    []string
	}{
		{TypeAccount, "Type", AccountType("").Options()},
		{TypeAccount, "CurrencyIsoCode", Currency("").Options()},
		{TypeAccountContactRole, "Role", ContactRole("").Options()},
		{TypeOpportunity, "StageName", Stage("").Options()},
		{TypeQuote, "Status", QuoteStatus("").Options()},
		{TypeLead, "LeadSource", LeadSource("").Options()},
		{TypeApproval, "Status__c", ApprovalStatus("").Options()},
	}
	for _, tt := range tests {
		typ, err := reg.Type(tt.typ)
		require.NoError(t, err, tt.typ)
		f, ok := typ.Field(tt.field)
		require.True(t, ok, tt.field)
		assert.Equal(t, tt.options, f.Options, "%s.%s", tt.typ, tt.field)
	}

	// callers get a copy
	opts := Stage("").Options()
	opts[0] = "Won"
	assert.Equal(t, "Qualify", Stage("").Options()[0])
}
