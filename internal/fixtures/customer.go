package fixtures

import (
	"context"

	"github.com/forgo/crmfixtures/internal/crm"
	"github.com/forgo/crmfixtures/internal/gateway"
	"github.com/forgo/crmfixtures/internal/record"
)

// ============================================================================
// User Fixtures
// ============================================================================

// UserOpts customizes user creation
type UserOpts struct {
	Username string
	LastName string
	Fields   record.Values
}

// CreateUser creates a user. Shared orgs provision users out of band, so
// this is mainly for in-memory runs; see FindUser.
func (f *Factory) CreateUser(ctx context.Context, opts ...func(*UserOpts)) (*record.Instance, error) {
	o := &UserOpts{}
	for _, fn := range opts {
		fn(o)
	}

	values := record.Values{}
	setIf(values, "Username", o.Username)
	setIf(values, "LastName", o.LastName)

	user, err := f.build(crm.TypeUser, values, o.Fields)
	if err != nil {
		return nil, err
	}
	if err := f.persist(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// FindUser returns the user with the given username.
func (f *Factory) FindUser(ctx context.Context, username string) (*record.Instance, error) {
	users, err := f.registry.Type(crm.TypeUser)
	if err != nil {
		return nil, err
	}
	return f.gw.FetchSingle(ctx, gateway.Select(users).Eq("Username", username))
}

// ============================================================================
// Customer Fixtures
// ============================================================================

// CustomerKind selects the customer creation path.
type CustomerKind int

const (
	// NewCustomer is a customer with no external billing account yet.
	NewCustomer CustomerKind = iota
	// ExistingCustomer is a customer already billed in the external system.
	ExistingCustomer
)

func (k CustomerKind) String() string {
	if k == ExistingCustomer {
		return "existing"
	}
	return "new"
}

// CustomerOpts customizes customer creation
type CustomerOpts struct {
	Name              string
	Currency          crm.Currency
	Country           string
	ExternalBillingID string
	Fields            record.Values

	// Used by CreateCustomerWithPrimaryContact.
	Role    crm.ContactRole
	Contact []func(*ContactOpts)
}

// Kind reports which creation path the options select.
func (o *CustomerOpts) Kind() CustomerKind {
	if o.ExternalBillingID != "" {
		return ExistingCustomer
	}
	return NewCustomer
}

// WithCurrency sets the account currency.
func WithCurrency(c crm.Currency) func(*CustomerOpts) {
	return func(o *CustomerOpts) {
		o.Currency = c
	}
}

// WithCountry sets the billing country.
func WithCountry(country string) func(*CustomerOpts) {
	return func(o *CustomerOpts) {
		o.Country = country
	}
}

// WithExternalBillingID selects the existing-customer path.
func WithExternalBillingID(id string) func(*CustomerOpts) {
	return func(o *CustomerOpts) {
		o.ExternalBillingID = id
	}
}

// WithContactRole sets the role of the primary contact.
func WithContactRole(role crm.ContactRole) func(*CustomerOpts) {
	return func(o *CustomerOpts) {
		o.Role = role
	}
}

func (f *Factory) customerOpts(opts []func(*CustomerOpts)) *CustomerOpts {
	o := &CustomerOpts{
		Currency: f.currency,
		Country:  f.country,
		Role:     crm.RoleSignatory,
	}
	for _, fn := range opts {
		fn(o)
	}
	return o
}

// CreateCustomer creates a customer account owned by ownerID. A non-empty
// ExternalBillingID takes the existing-customer path, which marks the
// account as already billed; otherwise the new-customer path is used.
func (f *Factory) CreateCustomer(ctx context.Context, ownerID string, opts ...func(*CustomerOpts)) (*record.Instance, error) {
	o := f.customerOpts(opts)

	values := record.Values{
		"OwnerId":         ownerID,
		"Type":            crm.AccountCustomer,
		"CurrencyIsoCode": o.Currency,
		"BillingCountry":  o.Country,
	}
	setIf(values, "Name", o.Name)

	var status record.Values
	switch o.Kind() {
	case ExistingCustomer:
		status = existingCustomer(o.ExternalBillingID)
	case NewCustomer:
		status = newCustomer()
	}

	acct, err := f.build(crm.TypeAccount, values, status, o.Fields)
	if err != nil {
		return nil, err
	}
	if err := f.persist(ctx, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

func newCustomer() record.Values {
	return record.Values{
		"Customer_Status__c": crm.CustomerNew,
		"Billing_Status__c":  crm.BillingNone,
	}
}

func existingCustomer(billingID string) record.Values {
	return record.Values{
		"Customer_Status__c":     crm.CustomerExisting,
		"Billing_Status__c":      crm.BillingActive,
		"External_Billing_Id__c": billingID,
	}
}

// CustomerWithContact is an account with its primary contact and the role
// record joining them.
type CustomerWithContact struct {
	Account *record.Instance
	Contact *record.Instance
	Role    *record.Instance
}

// CreateCustomerWithPrimaryContact creates a customer, a contact on it, and
// a primary AccountContactRole linking both.
func (f *Factory) CreateCustomerWithPrimaryContact(ctx context.Context, ownerID string, opts ...func(*CustomerOpts)) (*CustomerWithContact, error) {
	o := f.customerOpts(opts)

	acct, err := f.CreateCustomer(ctx, ownerID, opts...)
	if err != nil {
		return nil, err
	}
	contact, err := f.CreateContact(ctx, acct, append([]func(*ContactOpts){withOwner(ownerID)}, o.Contact...)...)
	if err != nil {
		return nil, err
	}
	role, err := f.CreateContactRole(ctx, acct, contact, o.Role, true)
	if err != nil {
		return nil, err
	}
	return &CustomerWithContact{Account: acct, Contact: contact, Role: role}, nil
}

// ============================================================================
// Contact Fixtures
// ============================================================================

// ContactOpts customizes contact creation
type ContactOpts struct {
	FirstName string
	LastName  string
	Email     string
	OwnerID   string
	Fields    record.Values
}

func withOwner(id string) func(*ContactOpts) {
	return func(o *ContactOpts) {
		o.OwnerID = id
	}
}

// CreateContact creates a contact on account. The mailing country follows
// the account's billing country unless set in Fields.
func (f *Factory) CreateContact(ctx context.Context, account *record.Instance, opts ...func(*ContactOpts)) (*record.Instance, error) {
	o := &ContactOpts{}
	for _, fn := range opts {
		fn(o)
	}

	values := record.Values{}
	setIf(values, "FirstName", o.FirstName)
	setIf(values, "LastName", o.LastName)
	setIf(values, "Email", o.Email)
	setIf(values, "OwnerId", o.OwnerID)

	contact, err := f.build(crm.TypeContact, values, o.Fields)
	if err != nil {
		return nil, err
	}
	if err := linkAll(contact, link{account, "AccountId"}); err != nil {
		return nil, err
	}
	if err := f.persist(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// CreateContactRole creates an AccountContactRole joining contact to account.
func (f *Factory) CreateContactRole(ctx context.Context, account, contact *record.Instance, role crm.ContactRole, primary bool) (*record.Instance, error) {
	acr, err := f.build(crm.TypeAccountContactRole, record.Values{
		"Role":      role,
		"IsPrimary": primary,
	})
	if err != nil {
		return nil, err
	}
	if err := linkAll(acr, link{account, "AccountId"}, link{contact, "ContactId"}); err != nil {
		return nil, err
	}
	if err := f.persist(ctx, acr); err != nil {
		return nil, err
	}
	return acr, nil
}

// ContactsOf returns the contacts of account.
func (f *Factory) ContactsOf(ctx context.Context, account *record.Instance) ([]*record.Instance, error) {
	contacts, err := f.registry.Type(crm.TypeContact)
	if err != nil {
		return nil, err
	}
	return f.gw.FetchMany(ctx, gateway.Select(contacts).Eq("AccountId", account.ID()))
}
