// Package postgres implements the storage interfaces of internal/store on
// PostgreSQL through database/sql and the pgx driver.
//
// Shaped queries are rendered to parameterised SQL; each result row is built
// server side as a JSON object keyed by client field names, so projection
// happens in the database. The schema lives in embedded goose migrations.
package postgres
