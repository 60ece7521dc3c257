//go:build integration

// Package testdb provides helpers for tests that run against a real
// PostgreSQL database.
//
// Tests are skipped unless WORKBOARD_TEST_DB_URL or DATABASE_URL is set.
// GetTestDBWithT opens a connection and applies the embedded migrations
// once; WithTx runs a test body inside a transaction that is always rolled
// back, so tests may run in parallel against the same schema.
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        tasks := postgres.NewPostgresTaskStore(tx, nil)
//	        ...
//	    })
//	}
package testdb
