// Package testdb provides helpers for PostgreSQL integration tests: locating
// the test database, applying the embedded migrations and isolating each
// test in a transaction that is rolled back afterwards.
//
// Integration tests are built with the integration tag and skipped when no
// test database URL is configured.
package testdb
