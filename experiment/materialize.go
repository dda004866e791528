package experiment

import (
	"encoding/json"
	"io/fs"
	"os"

	"github.com/maxpv/expman/pkg/errors"
)

// Serializer turns the raw hyperparameter structure into the bytes written
// to hyperparameters.json. The default produces human-readable JSON with
// stable key order.
type Serializer func(params map[string]any) ([]byte, error)

// JSONSnapshot is the default Serializer: two-space indented UTF-8 JSON.
// encoding/json sorts map keys, which gives the stable ordering the
// snapshot format requires.
func JSONSnapshot(params map[string]any) ([]byte, error) {
	data, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "serializing hyperparameters")
	}
	return append(data, '\n'), nil
}

// Materialize creates the on-disk tree for a run and writes the
// hyperparameter snapshot.
//
// The experiment directory is created if absent and silently shared if
// present: parallel search workers running the same configuration race on
// it benignly. The run directory is strict. A pre-existing run directory
// that already holds content means another run started within the same
// minute, and Materialize fails with RunDirectoryCollisionError rather
// than clobber its artifacts; a pre-existing empty one is reused.
//
// hyperparameters.json receives the full raw structure, not just the
// monitored subset, so the run directory is self-describing even for
// untracked parameters. It is written once and never mutated afterwards.
//
// On failure after the experiment directory exists, no run artifacts are
// left behind; the experiment directory itself is harmless to keep.
func Materialize(paths Paths, params map[string]any, serialize Serializer) (*RunHandle, error) {
	if serialize == nil {
		serialize = JSONSnapshot
	}

	if err := os.MkdirAll(paths.ExperimentDir, 0o755); err != nil {
		return nil, errors.NewFilesystemError("mkdir", paths.ExperimentDir, err)
	}

	if err := os.Mkdir(paths.RunDir, 0o755); err != nil {
		if !errors.Is(err, fs.ErrExist) {
			return nil, errors.NewFilesystemError("mkdir", paths.RunDir, err)
		}
		entries, readErr := os.ReadDir(paths.RunDir)
		if readErr != nil {
			return nil, errors.NewFilesystemError("readdir", paths.RunDir, readErr)
		}
		if len(entries) > 0 {
			return nil, errors.NewRunDirectoryCollisionError(paths.RunDir, len(entries))
		}
	}

	if err := os.MkdirAll(paths.ModelsDir, 0o755); err != nil {
		return nil, errors.NewFilesystemError("mkdir", paths.ModelsDir, err)
	}

	snapshot, err := serialize(params)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(paths.HyperparamsFile, snapshot, 0o644); err != nil {
		return nil, errors.NewFilesystemError("write", paths.HyperparamsFile, err)
	}

	return &RunHandle{Paths: paths}, nil
}

// materializeDebug creates the shared debug directory. It is idempotent
// end to end: repeated debug runs reuse the directory and overwrite the
// snapshot, which is the point of debug mode.
func materializeDebug(paths Paths, params map[string]any, serialize Serializer) (*RunHandle, error) {
	if serialize == nil {
		serialize = JSONSnapshot
	}

	if err := os.MkdirAll(paths.ModelsDir, 0o755); err != nil {
		return nil, errors.NewFilesystemError("mkdir", paths.ModelsDir, err)
	}

	snapshot, err := serialize(params)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(paths.HyperparamsFile, snapshot, 0o644); err != nil {
		return nil, errors.NewFilesystemError("write", paths.HyperparamsFile, err)
	}

	return &RunHandle{Paths: paths}, nil
}
