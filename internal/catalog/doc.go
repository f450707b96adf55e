// Package catalog provides the read-only content catalog: tracks, their
// ordered modules, and badge definitions.
//
// Catalog content is authored in CUE (see content/ at the repository root)
// and compiled with the CUE Go API into model types. A Catalog is immutable
// once built; New validates cross references (track membership, sequence
// numbers, prerequisites) before returning.
//
// Lookups fail only with *NotFoundError.
package catalog
