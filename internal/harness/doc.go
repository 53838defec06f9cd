// Package harness runs an audit pipeline once against the local emulators.
//
// A run builds the synthetic audit message and runtime context, attaches
// the emulators the resolved configuration selects, lets the pipeline
// initialise, merges the seeded item store collections back into whatever
// store the pipeline installed, and then invokes the pipeline's handler.
// Every emulated call is journalled, so a run can be asserted on or compared
// against a golden trace.
//
// # Scenario Format
//
// Scenarios override the synthetic message and environment:
//
//	name: meta_tags_smoke
//	description: "Meta tags audit against two scraped pages"
//	message:
//	  type: meta-tags
//	  site_id: site-123
//	  audit_context:
//	    next: run-audit-and-generate-suggestions
//	env:
//	  AUDIT_MODE: local
//	assertions:
//	  - type: trace_contains
//	    operation: Audit.create
//	    args: { auditType: meta-tags }
//	  - type: trace_order
//	    operations: [Site.findById, Audit.create]
//	  - type: trace_count
//	    operation: GetObject
//	    count: 2
//	  - type: queue_count
//	    payload_type: guidance:meta-tags
//	    count: 1
//
// # Deterministic Runs
//
// Inject a fixed run id generator and clock (internal/testutil) and the
// journal of a scenario is byte-identical across runs, which is what
// AssertGolden relies on.
package harness
