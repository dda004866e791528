package experiment

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func preparedHandle(t *testing.T) *RunHandle {
	t.Helper()
	mgr := NewManager(filepath.Join(t.TempDir(), "experiments"),
		WithMonitoredKeys("training"),
		WithClock(frozenClock(time.Date(2020, 3, 3, 15, 52, 0, 0, time.UTC))),
	)
	handle, err := mgr.Prepare(referenceParams())
	require.NoError(t, err)
	return handle
}

func TestCSVLogger(t *testing.T) {
	handle := preparedHandle(t)
	logger := CSVLogger(handle.TrainingLogFile)
	list := NewCallbackList(logger)

	require.NoError(t, list.AfterEpoch(0, map[string]float64{"loss": 0.5, "val_loss": 0.6}))
	require.NoError(t, list.AfterEpoch(1, map[string]float64{"loss": 0.25, "val_loss": 0.3}))
	require.NoError(t, list.Finish())

	file, err := os.Open(handle.TrainingLogFile)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Header is epoch plus metric names in sorted order.
	assert.Equal(t, []string{"epoch", "loss", "val_loss"}, records[0])
	assert.Equal(t, []string{"0", "0.5", "0.6"}, records[1])
	assert.Equal(t, []string{"1", "0.25", "0.3"}, records[2])
}

func TestModelCheckpointSavesBestOnly(t *testing.T) {
	handle := preparedHandle(t)

	var saved []string
	save := func(path string) error {
		saved = append(saved, path)
		return os.WriteFile(path, []byte("ckpt"), 0o644)
	}

	cb := ModelCheckpoint(handle, "val_loss", true, true, save)
	list := NewCallbackList(cb)

	require.NoError(t, list.AfterEpoch(0, map[string]float64{"val_loss": 0.5}))
	require.NoError(t, list.AfterEpoch(1, map[string]float64{"val_loss": 0.7})) // worse, skipped
	require.NoError(t, list.AfterEpoch(2, map[string]float64{"val_loss": 0.25}))
	require.NoError(t, list.Finish())

	require.Len(t, saved, 2)
	assert.Equal(t, handle.CheckpointPath(0, 0.5), saved[0])
	assert.Equal(t, handle.CheckpointPath(2, 0.25), saved[1])
}

func TestModelCheckpointMaximizeMode(t *testing.T) {
	handle := preparedHandle(t)

	var saved []string
	save := func(path string) error {
		saved = append(saved, path)
		return nil
	}

	cb := ModelCheckpoint(handle, "accuracy", false, true, save)
	list := NewCallbackList(cb)

	require.NoError(t, list.AfterEpoch(0, map[string]float64{"accuracy": 0.70}))
	require.NoError(t, list.AfterEpoch(1, map[string]float64{"accuracy": 0.65})) // worse, skipped
	require.NoError(t, list.AfterEpoch(2, map[string]float64{"accuracy": 0.90}))

	require.Len(t, saved, 2)
	assert.Equal(t, handle.CheckpointPath(0, 0.70), saved[0])
	assert.Equal(t, handle.CheckpointPath(2, 0.90), saved[1])
}

func TestModelCheckpointIgnoresMissingMetric(t *testing.T) {
	handle := preparedHandle(t)

	calls := 0
	cb := ModelCheckpoint(handle, "val_loss", true, true, func(path string) error {
		calls++
		return nil
	})
	list := NewCallbackList(cb)

	require.NoError(t, list.AfterEpoch(0, map[string]float64{"loss": 0.5}))
	assert.Zero(t, calls)
}

func TestWriteBestPerformances(t *testing.T) {
	handle := preparedHandle(t)
	list := NewCallbackList(
		CSVLogger(handle.TrainingLogFile),
		WriteBestPerformances(handle.TrainingLogFile, handle.PerformancesFile, "loss", true),
	)

	require.NoError(t, list.AfterEpoch(0, map[string]float64{"loss": 0.5}))
	require.NoError(t, list.AfterEpoch(1, map[string]float64{"loss": 0.125}))
	require.NoError(t, list.AfterEpoch(2, map[string]float64{"loss": 0.25}))
	require.NoError(t, list.Finish())

	data, err := os.ReadFile(handle.PerformancesFile)
	require.NoError(t, err)

	var records []map[string]float64
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)

	assert.Equal(t, 1.0, records[0]["epoch"])
	assert.Equal(t, 0.125, records[0]["loss"])
	assert.GreaterOrEqual(t, records[0]["elapsed"], 0.0)
}

func TestManagerCallbacksIntegration(t *testing.T) {
	base := filepath.Join(t.TempDir(), "experiments")
	mgr := NewManager(base,
		WithMonitoredKeys("training"),
		WithClock(frozenClock(time.Date(2020, 3, 3, 15, 52, 0, 0, time.UTC))),
		WithCheckpointMonitor("val_loss", true),
	)
	handle, err := mgr.Prepare(referenceParams())
	require.NoError(t, err)

	weights := []float64{1, 2, 3}
	save := func(path string) error { return SaveCheckpoint(weights, path) }

	list := NewCallbackList(mgr.Callbacks(handle, save)...)
	losses := []float64{0.5, 0.4, 0.45, 0.2}
	for epoch, loss := range losses {
		metrics := map[string]float64{"loss": loss, "val_loss": loss * 1.1}
		require.NoError(t, list.AfterEpoch(epoch, metrics))
	}
	require.NoError(t, list.Finish())

	assert.FileExists(t, handle.TrainingLogFile)
	assert.FileExists(t, handle.PerformancesFile)

	latest, err := LatestCheckpoint(handle.ModelsDir)
	require.NoError(t, err)
	assert.Contains(t, latest, "model.")

	var restored []float64
	require.NoError(t, LoadCheckpoint(&restored, latest))
	assert.Equal(t, weights, restored)
}

func TestCallbackListStopTraining(t *testing.T) {
	stopper := func(env *CallbackEnv) error {
		if env.Epoch >= 1 {
			env.StopTraining = true
		}
		return nil
	}
	list := NewCallbackList(stopper)

	require.NoError(t, list.AfterEpoch(0, nil))
	assert.False(t, list.ShouldStop())
	require.NoError(t, list.AfterEpoch(1, nil))
	assert.True(t, list.ShouldStop())
}
