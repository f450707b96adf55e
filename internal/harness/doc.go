// Package harness runs YAML-defined learner scenarios against the
// progression engine and checks their outcomes.
//
// A scenario names a CUE catalog directory, a list of steps and a list of
// assertions:
//
//	name: track_certificate
//	description: Completing every module issues one certificate
//	catalog: ../../../../content
//	steps:
//	  - complete: res-001
//	    user: alice
//	    expect:
//	      status: completed
//	      badges: [badge-first-steps]
//	assertions:
//	  - type: certificate_count
//	    user: alice
//	    count: 1
//
// Each run uses a fresh in-memory SQLite store, a fixed clock and
// sequential ID and verification-code generators, so the recorded trace is
// byte-for-byte reproducible. RunWithGolden compares that trace against a
// golden file under testdata/golden.
//
// Steps may repeat sequentially (repeat: N) or fire concurrently
// (concurrent: N). A concurrent step records one trace event carrying the
// union of its calls' outcomes; every call must return the same
// certificate.
package harness
