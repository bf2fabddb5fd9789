//go:build integration

// Package testdb provides helpers for tests that need a real PostgreSQL database.
//
// Tests run inside a transaction that is rolled back when the test function
// returns, so they can run in parallel against the same schema:
//
//	func TestCountersStore(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        counters := postgres.NewPostgresUserCountersStore(tx, nil)
//	        // ...
//	    })
//	}
//
// The connection string comes from DATABASE_URL, falling back to
// HANXUE_TEST_DB_URL. Tests are skipped when neither is set.
package testdb
