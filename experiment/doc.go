// Package experiment derives deterministic filesystem locations for
// training runs from their hyperparameters.
//
// Each monitored parameter group is canonically serialized (recursively
// sorted keys, type-tagged scalars) and hashed into a fixed-width 8-digit
// fingerprint. The fingerprints join into an experiment identifier, and a
// minute-precision start timestamp names the run beneath it:
//
//	experiments/exp-75933634-45101139/run--20-03-03--15-52/
//
// Identical hyperparameters always resolve to the same experiment
// directory, across processes and machines: the hash is unseeded SHA-256
// over a canonical rendering, never a per-process map hash. Changing any
// value in a monitored group changes exactly that group's fingerprint
// segment.
//
// Manager is the entry point. Prepare validates the monitored keys,
// materializes the tree (idempotent at the experiment level, strict at the
// run level) and returns a RunHandle for the checkpoint and log writers.
package experiment
