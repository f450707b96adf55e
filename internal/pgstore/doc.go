// Package pgstore provides a PostgreSQL implementation of the progress,
// certificate and badge stores, for deployments that share one database
// between several engine processes.
//
// It honours the same contract as package store: get-or-create via
// INSERT ... ON CONFLICT DO NOTHING, progress merges inside a transaction
// holding SELECT ... FOR UPDATE on the row, and unique violations (SQLSTATE
// 23505) reported as model.ErrConflict.
package pgstore
