// Package sqlstore implements the store interfaces on top of sqlx.
//
// Two backends are supported: PostgreSQL through the pgx stdlib driver for
// deployments, and SQLite through the pure-Go modernc driver for local runs
// and tests. Queries are written with "?" placeholders and rebound per driver.
// The schema for each backend is embedded and applied with goose.
package sqlstore
