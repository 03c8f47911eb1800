// Package operations runs a flash-test batch as an ordered pipeline of steps.
//
// A Manager executes registered Steps in registration order over a shared
// OperationState, recording each step's status and duration and stopping at
// the first failure. NewBatchPipeline wires the configured batch into the
// standard steps:
//
//	build          engine call per file and sun level
//	exclude        drop modules_to_exclude
//	map_intensity  round intensities to the configured increment
//	nameplate      <p>_pct_nameplate columns
//	degradation    <p>_plr columns at the PLR reference sun level
//	levels         per sun level: subset, control normalization, summary
//
// Each step replaces the state's table with a new one; no step edits a table
// it did not create.
package operations
