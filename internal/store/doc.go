// Package store defines the persistence contracts of the application.
// Services depend on these interfaces only; the PostgreSQL implementations
// live in internal/platform/postgres.
package store
