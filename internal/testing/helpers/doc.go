// Package helpers provides test utility functions for fixture tests.
//
// # Must Helpers
//
// Unwrap a fixture result or fail the test:
//
//	acct := helpers.Record(t)(f.CreateCustomer(ctx, owner.ID()))
//	cc := helpers.Must[*fixtures.CustomerWithContact](t)(f.CreateCustomerWithPrimaryContact(ctx, owner.ID()))
//
// # Record Assertions
//
// Common record assertions:
//
//	helpers.AssertPersisted(t, acct)
//	helpers.AssertReferences(t, contact, "AccountId", acct)
//	helpers.AssertField(t, acct, "Customer_Status__c", "Existing")
//
// # Store Assertions
//
// Check the store rather than the in-memory copy:
//
//	helpers.AssertRecordExists(t, gw, acct)
//	helpers.AssertRecordNotExists(t, gw, accountType, "001000000000000")
//
// # Time Helpers
//
// Time manipulation for tests:
//
//	future := helpers.TimeFromNow(24 * time.Hour)
package helpers
