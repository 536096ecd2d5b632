package crm

import "slices"

// Closed value sets for CRM picklists. Each type lists its members in
// declaration order through Options, which also feeds the schema catalog, so
// a value outside the set is rejected before it reaches the store.

// AccountType classifies an Account.
type AccountType string

const (
	AccountCustomer AccountType = "Customer"
	AccountPartner  AccountType = "Partner"
	AccountProspect AccountType = "Prospect"
)

// CustomerStatus records whether the customer already bills elsewhere.
type CustomerStatus string

const (
	CustomerNew      CustomerStatus = "New"
	CustomerExisting CustomerStatus = "Existing"
)

// BillingStatus is the state of the external billing account.
type BillingStatus string

const (
	BillingNone   BillingStatus = "None"
	BillingActive BillingStatus = "Active"
)

// Currency is an ISO 4217 code supported by the org.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	CAD Currency = "CAD"
	AUD Currency = "AUD"
)

// ContactRole is the role a contact plays on an account.
type ContactRole string

const (
	RoleSignatory     ContactRole = "Signatory"
	RoleBilling       ContactRole = "Billing"
	RoleTechnical     ContactRole = "Technical"
	RoleDecisionMaker ContactRole = "Decision Maker"
)

// Stage is an Opportunity sales stage.
type Stage string

const (
	StageQualify    Stage = "Qualify"
	StageSolve      Stage = "Solve"
	StageProposal   Stage = "Proposal"
	StageAgreement  Stage = "Agreement"
	StageClosedWon  Stage = "Closed Won"
	StageClosedLost Stage = "Closed Lost"
)

// QuoteStatus is the lifecycle state of a Quote.
type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "Draft"
	QuoteActive   QuoteStatus = "Active"
	QuoteApproved QuoteStatus = "Approved"
	QuoteRejected QuoteStatus = "Rejected"
)

// LeadStatus is the qualification state of a Lead.
type LeadStatus string

const (
	LeadNew         LeadStatus = "New"
	LeadContacted   LeadStatus = "Contacted"
	LeadQualified   LeadStatus = "Qualified"
	LeadUnqualified LeadStatus = "Unqualified"
)

// LeadSource records where a Lead came from.
type LeadSource string

const (
	SourceWeb      LeadSource = "Web"
	SourcePartner  LeadSource = "Partner"
	SourceReferral LeadSource = "Referral"
)

// ApprovalType selects the approval process an Approval__c record enters.
type ApprovalType string

const (
	ApprovalKYC       ApprovalType = "KYC"
	ApprovalInvoicing ApprovalType = "Invoicing Request"
	ApprovalDiscount  ApprovalType = "Discount"
)

// ApprovalStatus is the position of an Approval__c record in its chain.
type ApprovalStatus string

const (
	ApprovalNew       ApprovalStatus = "New"
	ApprovalPendingL1 ApprovalStatus = "Pending L1"
	ApprovalPendingL2 ApprovalStatus = "Pending L2"
	ApprovalApproved  ApprovalStatus = "Approved"
	ApprovalRejected  ApprovalStatus = "Rejected"
)

func options[T ~string](values ...T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func valid[T ~string](v T, set []string) bool {
	return slices.Contains(set, string(v))
}

var (
	accountTypes     = options(AccountCustomer, AccountPartner, AccountProspect)
	customerStatuses = options(CustomerNew, CustomerExisting)
	billingStatuses  = options(BillingNone, BillingActive)
	currencies       = options(USD, EUR, GBP, CAD, AUD)
	contactRoles     = options(RoleSignatory, RoleBilling, RoleTechnical, RoleDecisionMaker)
	stages           = options(StageQualify, StageSolve, StageProposal, StageAgreement, StageClosedWon, StageClosedLost)
	quoteStatuses    = options(QuoteDraft, QuoteActive, QuoteApproved, QuoteRejected)
	leadStatuses     = options(LeadNew, LeadContacted, LeadQualified, LeadUnqualified)
	leadSources      = options(SourceWeb, SourcePartner, SourceReferral)
	approvalTypes    = options(ApprovalKYC, ApprovalInvoicing, ApprovalDiscount)
	approvalStatuses = options(ApprovalNew, ApprovalPendingL1, ApprovalPendingL2, ApprovalApproved, ApprovalRejected)
)

func (v AccountType) Valid() bool    { return valid(v, accountTypes) }
func (v CustomerStatus) Valid() bool { return valid(v, customerStatuses) }
func (v BillingStatus) Valid() bool  { return valid(v, billingStatuses) }
func (v Currency) Valid() bool       { return valid(v, currencies) }
func (v ContactRole) Valid() bool    { return valid(v, contactRoles) }
func (v Stage) Valid() bool          { return valid(v, stages) }
func (v QuoteStatus) Valid() bool    { return valid(v, quoteStatuses) }
func (v LeadStatus) Valid() bool     { return valid(v, leadStatuses) }
func (v LeadSource) Valid() bool     { return valid(v, leadSources) }
func (v ApprovalType) Valid() bool   { return valid(v, approvalTypes) }
func (v ApprovalStatus) Valid() bool { return valid(v, approvalStatuses) }

// Options returns the members of each set in declaration order.
func (AccountType) Options() []string    { return slices.Clone(accountTypes) }
func (CustomerStatus) Options() []string { return slices.Clone(customerStatuses) }
func (BillingStatus) Options() []string  { return slices.Clone(billingStatuses) }
func (Currency) Options() []string       { return slices.Clone(currencies) }
func (ContactRole) Options() []string    { return slices.Clone(contactRoles) }
func (Stage) Options() []string          { return slices.Clone(stages) }
func (QuoteStatus) Options() []string    { return slices.Clone(quoteStatuses) }
func (LeadStatus) Options() []string     { return slices.Clone(leadStatuses) }
func (LeadSource) Options() []string     { return slices.Clone(leadSources) }
func (ApprovalType) Options() []string   { return slices.Clone(approvalTypes) }
func (ApprovalStatus) Options() []string { return slices.Clone(approvalStatuses) }

// Currencies returns the supported currency codes.
func Currencies() []string { return Currency("").Options() }
