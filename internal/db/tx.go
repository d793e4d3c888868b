// Package db holds small database/sql helpers shared by the sqlite stores.
package db

import (
	"database/sql"
)

// WithTx executes fn within a transaction.
// It handles Begin, Rollback on error, and Commit on success.
func WithTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// NullFloat64ToPtr converts a sql.NullFloat64 to *float64.
// Returns nil if the value is not valid.
func NullFloat64ToPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// PtrArg turns an optional value into a query argument: nil becomes SQL NULL.
func PtrArg[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// PositiveArg returns v as a query argument, or SQL NULL when v <= 0.
func PositiveArg(v int) any {
	if v <= 0 {
		return nil
	}
	return v
}
