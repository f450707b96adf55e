// Package model provides the domain types shared by the catalog, the stores
// and the engine.
//
// This package contains type definitions and pure merge logic only. It
// imports nothing internal, so every other package can depend on it without
// cycles.
//
// Key constraints:
//   - Content and Criteria are closed sum types (sealed interfaces)
//   - Catalog types are immutable once loaded
//   - ModuleProgress status never decreases; Completed is terminal
//   - Certificates and UserBadges are append-only facts
//   - All JSON tags use snake_case
package model
