package experiment

import (
	"os"
	"sort"
	"time"

	"github.com/maxpv/expman/pkg/errors"
	"github.com/maxpv/expman/pkg/log"
)

// DefaultBaseDir is used when NewManager is given an empty base directory.
const DefaultBaseDir = "experiments"

// Manager is the run preparer: the public entry point that turns raw
// hyperparameters into a materialized run directory. It runs once per
// training-process startup, synchronously; any failure aborts preparation
// before the training run wastes resources.
type Manager struct {
	baseDir       string
	monitoredKeys []string
	debug         bool
	now           func() time.Time
	serialize     Serializer
	logger        log.Logger

	checkpointMonitor  string
	checkpointMinimize bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithMonitoredKeys sets which top-level hyperparameter groups participate
// in the experiment identifier, in order. The order is part of the
// identifier: permuting it produces a different identifier for the same
// values.
func WithMonitoredKeys(keys ...string) Option {
	return func(m *Manager) {
		m.monitoredKeys = keys
	}
}

// WithDebug routes runs to <base>/debug, bypassing fingerprinting and the
// run-collision check. Meant for quick iteration where artifacts are
// disposable.
func WithDebug(debug bool) Option {
	return func(m *Manager) {
		m.debug = debug
	}
}

// WithClock overrides the wall-clock source used to timestamp runs.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithSerializer overrides the hyperparameter snapshot serializer.
func WithSerializer(serialize Serializer) Option {
	return func(m *Manager) {
		m.serialize = serialize
	}
}

// WithLogger overrides the logger used for preparation bookkeeping.
func WithLogger(logger log.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithCheckpointMonitor sets the metric the ModelCheckpoint callback
// watches and whether improvement means smaller values.
func WithCheckpointMonitor(metric string, minimize bool) Option {
	return func(m *Manager) {
		m.checkpointMonitor = metric
		m.checkpointMinimize = minimize
	}
}

// NewManager creates a Manager rooted at baseDir ("experiments" if empty).
// Monitored keys default to "model" and "training".
func NewManager(baseDir string, opts ...Option) *Manager {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	m := &Manager{
		baseDir:            baseDir,
		monitoredKeys:      []string{"model", "training"},
		now:                time.Now,
		serialize:          JSONSnapshot,
		checkpointMonitor:  "val_loss",
		checkpointMinimize: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = log.GetLogger().With(log.ComponentKey, "experiment")
	}
	return m
}

// ExperimentID validates the monitored keys against params and composes
// the experiment identifier without touching the filesystem.
func (m *Manager) ExperimentID(params map[string]any) (string, error) {
	groups, err := m.monitoredGroups(params)
	if err != nil {
		return "", err
	}
	return ComposeID(groups)
}

// Prepare derives the run location from params, materializes the tree and
// returns the handle downstream consumers work from.
//
// The run timestamp is captured exactly once, at the start of preparation,
// so every derived path shares one instant even if preparation itself
// straddles a minute boundary. Monitored-key validation happens before
// any filesystem mutation.
func (m *Manager) Prepare(params map[string]any) (*RunHandle, error) {
	if len(params) == 0 {
		return nil, errors.ErrEmptyParams
	}

	if m.debug {
		return m.prepareDebug(params)
	}

	groups, err := m.monitoredGroups(params)
	if err != nil {
		return nil, err
	}

	experimentID, err := ComposeID(groups)
	if err != nil {
		return nil, err
	}

	start := m.now()
	paths := BuildPaths(m.baseDir, experimentID, start)

	if _, statErr := os.Stat(paths.ExperimentDir); statErr == nil {
		errors.Warn(errors.NewSharedExperimentWarning(experimentID, paths.ExperimentDir))
	}

	handle, err := Materialize(paths, params, m.serialize)
	if err != nil {
		return nil, err
	}

	m.logger.Info("run prepared",
		log.OperationKey, "prepare",
		log.ExperimentIDKey, handle.ExperimentID,
		log.RunIDKey, handle.RunID,
		log.RunDirKey, handle.RunDir,
		log.MonitoredKeysKey, m.monitoredKeys,
		log.GroupCountKey, len(params),
	)
	return handle, nil
}

func (m *Manager) prepareDebug(params map[string]any) (*RunHandle, error) {
	paths := DebugPaths(m.baseDir)
	errors.Warn(errors.NewDebugRunWarning(paths.RunDir))

	handle, err := materializeDebug(paths, params, m.serialize)
	if err != nil {
		return nil, err
	}

	m.logger.Info("debug run prepared",
		log.OperationKey, "prepare",
		log.RunDirKey, handle.RunDir,
	)
	return handle, nil
}

// Resume reattaches to an existing run identified by its experiment and
// run folder names and returns its handle together with the newest
// checkpoint in models/. It fails with RunNotFoundError when the run
// directory does not exist and ErrNoCheckpoints when it holds none.
func (m *Manager) Resume(experimentID, runID string) (*RunHandle, string, error) {
	paths := layoutPaths(m.baseDir, experimentID, runID)

	info, err := os.Stat(paths.RunDir)
	if err != nil || !info.IsDir() {
		return nil, "", errors.NewRunNotFoundError(experimentID, runID, paths.RunDir)
	}

	latest, err := LatestCheckpoint(paths.ModelsDir)
	if err != nil {
		return nil, "", err
	}

	m.logger.Info("run resumed",
		log.OperationKey, "resume",
		log.ExperimentIDKey, experimentID,
		log.RunIDKey, runID,
		log.CheckpointPathKey, latest,
	)
	return &RunHandle{Paths: paths}, latest, nil
}

// monitoredGroups checks every monitored key is present and returns the
// named groups in monitored order.
func (m *Manager) monitoredGroups(params map[string]any) ([]NamedGroup, error) {
	if len(m.monitoredKeys) == 0 {
		return nil, errors.ErrNoMonitoredKeys
	}

	groups := make([]NamedGroup, 0, len(m.monitoredKeys))
	for _, key := range m.monitoredKeys {
		value, ok := params[key]
		if !ok {
			return nil, errors.NewMissingMonitoredKeyError(key, topLevelKeys(params))
		}
		group, ok := value.(map[string]any)
		if !ok {
			// Scalar monitored values are fingerprinted as a singleton group.
			group = map[string]any{key: value}
		}
		groups = append(groups, NamedGroup{Name: key, Group: group})
	}
	return groups, nil
}

func topLevelKeys(params map[string]any) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
