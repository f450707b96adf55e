// Package engine implements learner progression: module completion, track
// completion, certificate issuance and badge awards.
//
// ARCHITECTURE:
//
// The engine is request/response. Each call reads what it needs from the
// catalog and the store, decides, writes, and returns. There is no cached
// completion state; track completion is recomputed from stored progress on
// every call.
//
// Completion flow (CompleteModule):
//  1. Validate the module and the quiz score
//  2. Merge a Completed patch into the progress record (one transaction)
//  3. Fire a module_complete event into the badge engine
//  4. Issue the track certificate if every module is now Completed
//  5. Fire a certificate_complete event when a certificate exists
//
// IDEMPOTENCY:
//
// Every step is safe to repeat or race. The progress merge is monotonic
// (model.Apply), certificates and user badges are created with insert-unique
// writes, and a uniqueness conflict is absorbed by re-reading the row that
// won. Callers completing the same final module from two tabs both receive
// the same certificate.
//
// ERRORS:
//
// All failures are *Error values with a Code. Conflicts are never surfaced.
// Store failures carry ErrCodePersistence and are retryable.
package engine
