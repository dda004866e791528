// Package expman assigns deterministic, collision-resistant filesystem
// locations to training runs of parameterized experiments.
//
// Each monitored hyperparameter group is reduced to a stable 8-digit
// fingerprint; the fingerprints compose into an experiment identifier,
// and every run lands under it keyed by a minute-precision timestamp:
//
//	<base_dir>/
//	  exp-<fp1>-<fp2>-.../
//	    run--20-03-03--15-52/
//	      hyperparameters.json
//	      performances.json
//	      training-logs.csv
//	      models/
//
// Re-running identical hyperparameters lands in the same experiment
// bucket; changing any value in a monitored group produces a new one.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "log"
//
//	    "github.com/maxpv/expman/experiment"
//	)
//
//	func main() {
//	    params := map[string]any{
//	        "training":   map[string]any{"batch_size": 128, "epochs": 12, "learning-rate": 0.008},
//	        "processing": map[string]any{"width": 128, "height": 128},
//	    }
//
//	    mgr := experiment.NewManager("experiments",
//	        experiment.WithMonitoredKeys("training", "processing"))
//	    handle, err := mgr.Prepare(params)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    log.Printf("run directory: %s", handle.RunDir)
//	}
//
// # Packages
//
// The module is organized into several packages:
//
//   - experiment: fingerprinting, identifier composition, path layout,
//     directory materialization and training callbacks
//   - report: training-log analysis (best epoch, metric plots)
//   - cli: the expman command-line interface
//   - pkg/errors: structured error types and warnings
//   - pkg/log: structured logging helpers
package expman
