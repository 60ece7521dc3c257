// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces (repositories) defined in the internal/store package.
// It handles the details of database connections, query execution, and data
// mapping between domain entities and database records.
//
// The schema lives in migrations/ and is embedded into the binary; Migrate
// applies it with goose.
package postgres
