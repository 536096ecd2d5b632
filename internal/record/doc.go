// Package record defines the in-memory shape of CRM test data.
//
// A RecordType is an immutable schema: a name, an optional id key prefix and an
// ordered list of FieldDefinitions. An Instance is a value conforming to a
// RecordType. It starts unpersisted (empty ID), is filled by the builder and
// the linker, and receives its identifier from a persistence gateway.
//
// # Field Kinds
//
// Every field has a kind that constrains the values Set accepts:
//
//   - KindString, KindEnum, KindReference: string values (named string types are accepted)
//   - KindNumber: any Go integer or float, normalised to float64
//   - KindBool: bool
//   - KindDate: time.Time, normalised to UTC
//
// # Default Policies
//
//   - PolicyNone: the caller must supply a value if the field is required
//   - PolicyFixed: the constant in FieldDefinition.Default
//   - PolicyGenerated: a collision-resistant value in FieldDefinition.Format
//   - PolicyRelated: filled when the record is linked to its parent
//
// # Dirty Tracking
//
// After an Instance is persisted, every Set marks the field dirty. Dirty
// fields reach the store only through an explicit gateway update:
//
//	acct.Set("Billing_Status__c", "Active")
//	gw.Update(ctx, acct) // sends Changes(), then MarkClean()
package record
