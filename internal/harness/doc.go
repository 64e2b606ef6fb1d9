// Package harness checks that optimized programs behave like their sources.
//
// The harness loads scenarios, runs each program twice (once as written and
// once after optimization) under the same interpreter settings and input,
// and reports any observable difference.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: print_letter
//	description: "Nested loop builds 'A' in cell 1"
//	program: "++++++++[>++++++++<-]>+."
//	input: ""
//	interpreter:
//	  cell_bits: 8
//	  overflow: wrap
//	expect:
//	  output: "A"
//
// program_file may replace program; it is resolved relative to the scenario
// file. interpreter takes the same keys as the interpreter section of a
// basm.cue file. expect is optional: output must match exactly and error
// names the interpreter error code (for example E202) the source program
// must fail with.
//
// # Equivalence
//
// A scenario fails when the two runs produce different output or fail with
// different error codes. When the source run exhausts its step budget the
// optimized run may legitimately get further, so only the shared output
// prefix is compared.
//
// # Golden Files
//
// RunWithGolden snapshots the optimized program text under
// testdata/golden/{scenario.Name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
