package testutil

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"
)

// SequenceIDs generates "<prefix>-0001", "<prefix>-0002", ...
//
// It satisfies engine.IDGenerator. Thread-safety: safe for concurrent use.
type SequenceIDs struct {
	prefix string
	n      atomic.Int64
}

// NewSequenceIDs creates an ID generator. An empty prefix uses "id".
func NewSequenceIDs(prefix string) *SequenceIDs {
	if prefix == "" {
		prefix = "id"
	}
	return &SequenceIDs{prefix: prefix}
}

// Generate returns the next ID.
func (g *SequenceIDs) Generate() string {
	return fmt.Sprintf("%s-%04d", g.prefix, g.n.Add(1))
}

// SequenceCodes generates verification codes with a counter in place of the
// random suffix: CERT-<base36 unix millis>-00000001, -00000002, ...
//
// It satisfies engine.CodeGenerator. Thread-safety: safe for concurrent use.
type SequenceCodes struct {
	n atomic.Int64
}

// NewSequenceCodes creates a code generator starting at 1.
func NewSequenceCodes() *SequenceCodes {
	return &SequenceCodes{}
}

// Code returns the next code stamped with issuedAt.
func (g *SequenceCodes) Code(issuedAt time.Time) string {
	return fmt.Sprintf("CERT-%s-%08d", strconv.FormatInt(issuedAt.UnixMilli(), 36), g.n.Add(1))
}

// RepeatCodes returns the same code every time, for provoking verification
// code collisions.
type RepeatCodes string

// Code returns the fixed code.
func (c RepeatCodes) Code(time.Time) string { return string(c) }
