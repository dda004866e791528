// Package log defines standard attribute keys for experiment bookkeeping.
//
// Using these keys consistently across run preparation and the training
// callbacks keeps the JSON logs filterable: every record about a given run
// carries the same experiment.id / run.id pair regardless of which
// component emitted it.
package log

// Experiment and run identity.
const (
	// ExperimentIDKey carries the composite fingerprint identifier,
	// e.g. "exp-75933634-45101139".
	ExperimentIDKey = "experiment.id"

	// RunIDKey carries the timestamped run segment, e.g. "run--20-03-03--15-52".
	RunIDKey = "run.id"

	// RunDirKey carries the absolute run directory path.
	RunDirKey = "run.dir"

	// BaseDirKey carries the experiment base directory.
	BaseDirKey = "experiment.base_dir"
)

// Hyperparameter context.
const (
	// MonitoredKeysKey lists the monitored parameter group names, in the
	// caller order that the identifier was composed with.
	MonitoredKeysKey = "params.monitored"

	// GroupCountKey is the number of top-level parameter groups supplied.
	GroupCountKey = "params.groups"

	// FingerprintKey carries a single group fingerprint when a component
	// logs about one group in isolation.
	FingerprintKey = "params.fingerprint"
)

// Training progress (used by the callbacks).
const (
	// EpochKey is the zero-based epoch index.
	EpochKey = "train.epoch"

	// MetricKey names the monitored metric, e.g. "val_loss".
	MetricKey = "train.metric"

	// MetricValueKey is the value of the monitored metric at EpochKey.
	MetricValueKey = "train.metric_value"

	// CheckpointPathKey is the file a model checkpoint was written to.
	CheckpointPathKey = "checkpoint.path"

	// ElapsedSecondsKey is the wall-clock training duration.
	ElapsedSecondsKey = "train.elapsed_seconds"
)

// Operation context.
const (
	// OperationKey names the expman operation being performed.
	// Standard values: "prepare", "resume", "materialize", "report".
	OperationKey = "expman.operation"

	// ComponentKey identifies the package emitting the record.
	// Examples: "experiment", "report", "cli"
	ComponentKey = "expman.component"
)
