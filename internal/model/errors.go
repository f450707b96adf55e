package model

import "errors"

// ErrConflict is returned by stores when an insert violates a uniqueness
// constraint (certificate per user and track, user badge per user and badge,
// or certificate verification code). Callers reconcile by re-reading.
var ErrConflict = errors.New("uniqueness conflict")
