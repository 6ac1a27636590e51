package store

import (
	"github.com/jmoiron/sqlx"
)

// DBTX abstracts the database access layer. It is implemented by both
// *sqlx.DB and *sqlx.Tx, allowing stores to run inside or outside a
// transaction with the same code.
type DBTX interface {
	sqlx.ExtContext
}
