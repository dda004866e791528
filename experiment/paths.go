package experiment

import (
	"fmt"
	"path/filepath"
	"time"
)

// Fixed names inside a run directory. Tooling built on top of the tree
// relies on these exactly.
const (
	HyperparamsFileName  = "hyperparameters.json"
	PerformancesFileName = "performances.json"
	TrainingLogFileName  = "training-logs.csv"
	ErrorLogFileName     = "errors.log"
	ModelsDirName        = "models"
	DebugDirName         = "debug"
)

// ModelFilenameTemplate is the fmt pattern checkpoint files are named
// with. The contract with the checkpoint-writing consumer: the first verb
// is the epoch index, the second is the monitored metric value at that
// epoch. See RunHandle.CheckpointPath.
const ModelFilenameTemplate = "model.%03d-%.4f.ckpt"

const (
	runPrefix = "run--"
	// Minute precision, fixed width, lexically sortable: 20-03-03--15-52.
	runTimeLayout = "06-01-02--15-04"
)

// FormatRunID renders a run identifier from a start instant, truncated to
// minute precision. Two runs starting within the same minute under one
// experiment identifier collide on this name; Materialize turns that into
// a RunDirectoryCollisionError instead of overwriting.
func FormatRunID(start time.Time) string {
	return runPrefix + start.Format(runTimeLayout)
}

// Paths is the full set of locations derived for one run. It is produced
// by BuildPaths as a pure function of its inputs; nothing is created on
// disk until Materialize.
type Paths struct {
	ExperimentID string
	RunID        string

	ExperimentDir    string
	RunDir           string
	ModelsDir        string
	HyperparamsFile  string
	PerformancesFile string
	TrainingLogFile  string
	ErrorLogFile     string

	// ModelFilenameTemplate is copied here so downstream consumers need
	// only the handle, not this package's constants.
	ModelFilenameTemplate string
}

// BuildPaths lays out the directory structure for a run starting at the
// given instant:
//
//	<base>/<experimentID>/<run--YY-MM-DD--HH-MM>/{hyperparameters.json,
//	performances.json, training-logs.csv, errors.log, models/}
//
// Pure: no I/O, no clock reads, no side effects.
func BuildPaths(baseDir, experimentID string, start time.Time) Paths {
	return layoutPaths(baseDir, experimentID, FormatRunID(start))
}

// DebugPaths lays out the flat debug tree <base>/debug used when
// fingerprinting is bypassed. The debug run directory is shared and
// reusable, so ExperimentDir and RunDir coincide.
func DebugPaths(baseDir string) Paths {
	p := layoutPaths(baseDir, "", DebugDirName)
	p.ExperimentDir = p.RunDir
	return p
}

func layoutPaths(baseDir, experimentID, runID string) Paths {
	runDir := filepath.Join(baseDir, experimentID, runID)
	return Paths{
		ExperimentID:          experimentID,
		RunID:                 runID,
		ExperimentDir:         filepath.Join(baseDir, experimentID),
		RunDir:                runDir,
		ModelsDir:             filepath.Join(runDir, ModelsDirName),
		HyperparamsFile:       filepath.Join(runDir, HyperparamsFileName),
		PerformancesFile:      filepath.Join(runDir, PerformancesFileName),
		TrainingLogFile:       filepath.Join(runDir, TrainingLogFileName),
		ErrorLogFile:          filepath.Join(runDir, ErrorLogFileName),
		ModelFilenameTemplate: ModelFilenameTemplate,
	}
}

// RunHandle bundles the concrete paths of a prepared run for downstream
// consumers: the checkpoint writer, the CSV logger and the performances
// writer all work purely from a handle.
type RunHandle struct {
	Paths
}

// CheckpointPath names a checkpoint file inside models/ from the template
// contract: epoch index and monitored metric value.
//
//	handle.CheckpointPath(7, 0.0123)  // models/model.007-0.0123.ckpt
func (h *RunHandle) CheckpointPath(epoch int, metric float64) string {
	return filepath.Join(h.ModelsDir, fmt.Sprintf(h.ModelFilenameTemplate, epoch, metric))
}
