package experiment

import (
	"encoding/csv"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/maxpv/expman/pkg/errors"
	"github.com/maxpv/expman/pkg/log"
	"github.com/maxpv/expman/report"
)

// CallbackEnv contains the environment passed to callbacks during training.
type CallbackEnv struct {
	Epoch      int
	Metrics    map[string]float64
	TrainEnded bool

	// StopTraining may be set by a callback to request early termination.
	StopTraining bool
}

// Callback is a function invoked after every epoch and once more, with
// TrainEnded set, when training finishes.
type Callback func(env *CallbackEnv) error

// CallbackList manages multiple callbacks over one training run.
type CallbackList struct {
	callbacks []Callback
	env       *CallbackEnv
}

// NewCallbackList creates a new callback list.
func NewCallbackList(callbacks ...Callback) *CallbackList {
	return &CallbackList{
		callbacks: callbacks,
		env: &CallbackEnv{
			Metrics: make(map[string]float64),
		},
	}
}

// AfterEpoch invokes every callback with the epoch's metric values.
func (cl *CallbackList) AfterEpoch(epoch int, metrics map[string]float64) error {
	cl.env.Epoch = epoch
	cl.env.Metrics = metrics

	for _, cb := range cl.callbacks {
		if err := cb(cl.env); err != nil {
			return err
		}
	}
	return nil
}

// Finish invokes every callback once with TrainEnded set.
func (cl *CallbackList) Finish() error {
	cl.env.TrainEnded = true
	for _, cb := range cl.callbacks {
		if err := cb(cl.env); err != nil {
			return err
		}
	}
	return nil
}

// ShouldStop returns whether a callback requested early termination.
func (cl *CallbackList) ShouldStop() bool {
	return cl.env.StopTraining
}

// CSVLogger appends one row per epoch to the run's training log. The
// header is written when the file is created; columns are "epoch" plus
// the metric names in sorted order, so the file stays parseable by
// report.ParseTrainingLog regardless of map iteration.
func CSVLogger(path string) Callback {
	var columns []string

	return func(env *CallbackEnv) error {
		if env.TrainEnded {
			return nil
		}

		if columns == nil {
			columns = metricColumns(env.Metrics)
		}

		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return errors.NewFilesystemError("open", path, err)
		}
		defer file.Close()

		info, err := file.Stat()
		if err != nil {
			return errors.NewFilesystemError("stat", path, err)
		}

		w := csv.NewWriter(file)
		if info.Size() == 0 {
			if err := w.Write(columns); err != nil {
				return errors.Wrapf(err, "writing training log header %s", path)
			}
		}

		row := make([]string, len(columns))
		row[0] = strconv.Itoa(env.Epoch)
		for i, name := range columns[1:] {
			row[i+1] = strconv.FormatFloat(env.Metrics[name], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "writing training log row %s", path)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return errors.NewFilesystemError("write", path, err)
		}
		return nil
	}
}

// CheckpointSaver persists a checkpoint to the given path. It is the
// opaque consumer side of the filename-template contract; SaveCheckpoint
// is a ready-made gob implementation for models without a native format.
type CheckpointSaver func(path string) error

// ModelCheckpoint names checkpoint files from the run's filename template
// and delegates the write to a saver. With saveBestOnly it writes only
// when the monitored metric improves (smaller when minimize).
func ModelCheckpoint(handle *RunHandle, monitor string, minimize, saveBestOnly bool, save CheckpointSaver) Callback {
	bestScore := math.Inf(1)
	if !minimize {
		bestScore = math.Inf(-1)
	}
	logger := log.GetLogger().With(log.ComponentKey, "experiment")

	return func(env *CallbackEnv) error {
		if env.TrainEnded {
			return nil
		}

		value, exists := env.Metrics[monitor]
		if !exists {
			return nil
		}

		if saveBestOnly {
			improved := value < bestScore
			if !minimize {
				improved = value > bestScore
			}
			if !improved {
				return nil
			}
			bestScore = value
		}

		path := handle.CheckpointPath(env.Epoch, value)
		if err := save(path); err != nil {
			return errors.Wrapf(err, "saving checkpoint %s", path)
		}

		logger.Info("checkpoint saved",
			log.EpochKey, env.Epoch,
			log.MetricKey, monitor,
			log.MetricValueKey, value,
			log.CheckpointPathKey, path,
		)
		return nil
	}
}

// WriteBestPerformances writes the best epoch of the training log to
// performances.json when training ends, with the elapsed wall-clock
// seconds since the callback was constructed added to the record.
func WriteBestPerformances(csvPath, outPath, watchedMetric string, minimize bool) Callback {
	start := time.Now()

	return func(env *CallbackEnv) error {
		if !env.TrainEnded {
			return nil
		}

		trainingLog, err := report.ParseTrainingLog(csvPath)
		if err != nil {
			return err
		}
		elapsed := time.Since(start).Seconds()
		return report.WriteBest(trainingLog, watchedMetric, minimize, elapsed, outPath)
	}
}

// Callbacks returns the standard callback set for a prepared run: CSV
// logging, best-only model checkpoints on the configured monitor metric,
// and the best-performances writer.
func (m *Manager) Callbacks(handle *RunHandle, save CheckpointSaver) []Callback {
	return []Callback{
		CSVLogger(handle.TrainingLogFile),
		ModelCheckpoint(handle, m.checkpointMonitor, m.checkpointMinimize, true, save),
		WriteBestPerformances(handle.TrainingLogFile, handle.PerformancesFile, m.checkpointMonitor, m.checkpointMinimize),
	}
}

// metricColumns builds the CSV header: epoch first, then metric names in
// sorted order.
func metricColumns(metrics map[string]float64) []string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return append([]string{"epoch"}, names...)
}
