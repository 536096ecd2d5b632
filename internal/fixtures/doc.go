// Package fixtures composes CRM test scenarios from the builder, linker and
// gateway.
//
// # Factory Pattern
//
// Create a factory over a gateway and a frozen registry:
//
//	f := fixtures.New(gateway.NewMemory(), reg)
//
// # Creating Test Data
//
// Each scenario is a fixed sequence: build the parent, persist it, build the
// child with the parent linked, persist the child, then optionally a role
// record joining the two:
//
//	owner, _ := f.FindUser(ctx, "qa.owner@example.com")
//	cc, _ := f.CreateCustomerWithPrimaryContact(ctx, owner.ID())
//	opp, _ := f.CreateOpportunity(ctx, cc.Account, owner.ID())
//	quote, _ := f.CreateQuoteForOpportunity(ctx, opp)
//
// # Customization
//
// Use option functions for customization:
//
//	acct, _ := f.CreateCustomer(ctx, ownerID, fixtures.WithCurrency(crm.EUR))
//	acct, _ := f.CreateCustomer(ctx, ownerID, fixtures.WithExternalBillingID("BA-100"))
//
// # Failures
//
// Errors from the gateway are returned unchanged, so callers can match
// *gateway.PersistenceError with errors.As. Records persisted by earlier
// steps of a failed scenario are left in the store; their names carry a
// unique token so they do not collide with later runs.
package fixtures
