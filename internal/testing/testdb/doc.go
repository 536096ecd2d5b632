// Package testdb provides SurrealDB test environments for the gateway
// integration tests.
//
// Tests are skipped unless TEST_DB_HOST is set, so the unit suite runs
// without a database.
//
// # Test Database Setup
//
// Create a test database for each test:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    defer tdb.Close()
//
//	    // Use tdb.DB for database operations
//	}
//
// # Schema
//
// Setup statements are applied after connecting:
//
//	stmts, _ := gateway.DefineStatements(accountType)
//	tdb := testdb.New(t, stmts...)
//
// # Isolation
//
// Each test gets an isolated database namespace:
//
//	func TestA(t *testing.T) {
//	    tdb := testdb.New(t) // namespace: test_1729000000_1
//	}
//
// # Shared Database
//
// For subtests that share schema:
//
//	tdb := testdb.NewShared(t, stmts...)
//	t.Run("create", func(t *testing.T) { db := tdb.SetupSubtest(t); ... })
package testdb
