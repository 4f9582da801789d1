// Package sim provides the decision core of the adaptive signal controller.
//
// # Reading Guide
//
// One control decision flows through three files:
//   - state.go: ComputeState turns per-lane vehicle records into a StateSnapshot
//   - predictor.go: EmaPredictor smooths observed queue lengths into a forecast
//   - reasoner.go: DecideGreenTime labels the forecast and allocates a bounded green time
//
// knowledge.go holds the allocation rules (KnowledgeConfig) and their loader.
// The configuration is an explicit value built once by the caller; nothing in
// this package reads it from global state.
//
// # Sub-packages
//   - sim/workload/: arrival samplers used to generate synthetic traffic
//   - sim/trace/: per-cycle decision trace and summary
//   - sim/intersection/: queue-level harness that runs the pipeline every cycle
//
// None of the types here are goroutine-safe. The surrounding loop calls the
// pipeline once per cycle and each call completes before the next begins.
package sim
