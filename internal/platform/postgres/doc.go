// Package postgres provides the PostgreSQL implementations of the store
// interfaces, the schema migrations and the mapping of driver errors to store
// errors. Stores accept a store.DBTX so they run on a *sql.DB or inside a
// transaction through WithTx.
package postgres
