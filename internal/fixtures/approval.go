package fixtures

import (
	"context"
	"log/slog"
	"slices"

	"github.com/forgo/crmfixtures/internal/crm"
	"github.com/forgo/crmfixtures/internal/record"
)

// ApprovalOpts customizes approval request creation
type ApprovalOpts struct {
	Type        crm.ApprovalType
	Status      crm.ApprovalStatus
	Comments    string
	Opportunity *record.Instance
	Fields      record.Values
}

// ForOpportunity attaches the approval request to opp as well.
func ForOpportunity(opp *record.Instance) func(*ApprovalOpts) {
	return func(o *ApprovalOpts) {
		o.Opportunity = opp
	}
}

// CreateApproval creates an approval request on account.
func (f *Factory) CreateApproval(ctx context.Context, account *record.Instance, opts ...func(*ApprovalOpts)) (*record.Instance, error) {
	o := &ApprovalOpts{Type: crm.ApprovalKYC, Status: crm.ApprovalNew}
	for _, fn := range opts {
		fn(o)
	}

	values := record.Values{
		"Type__c":   o.Type,
		"Status__c": o.Status,
	}
	setIf(values, "Comments__c", o.Comments)

	approval, err := f.build(crm.TypeApproval, values, o.Fields)
	if err != nil {
		return nil, err
	}
	links := []link{{account, "Account__c"}}
	if o.Opportunity != nil {
		links = append(links, link{o.Opportunity, "Opportunity__c"})
	}
	if err := linkAll(approval, links...); err != nil {
		return nil, err
	}
	if err := f.persist(ctx, approval); err != nil {
		return nil, err
	}
	return approval, nil
}

// CreateKYCApproval creates a KYC approval request on account.
func (f *Factory) CreateKYCApproval(ctx context.Context, account *record.Instance, opts ...func(*ApprovalOpts)) (*record.Instance, error) {
	opts = append(slices.Clone(opts), func(o *ApprovalOpts) {
		o.Type = crm.ApprovalKYC
	})
	return f.CreateApproval(ctx, account, opts...)
}

// SetApprovalStatus moves approval to status and writes the change.
func (f *Factory) SetApprovalStatus(ctx context.Context, approval *record.Instance, status crm.ApprovalStatus) error {
	if err := approval.Set("Status__c", status); err != nil {
		return err
	}
	if err := f.gw.Update(ctx, approval); err != nil {
		return err
	}
	f.logger.Debug("fixture record updated",
		slog.String("type", approval.Type().Name()),
		slog.String("id", approval.ID()),
		slog.String("status", string(status)),
	)
	return nil
}
