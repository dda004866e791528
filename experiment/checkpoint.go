package experiment

import (
	"encoding/gob"
	"os"
	"path/filepath"

	"github.com/maxpv/expman/pkg/errors"
)

// SaveCheckpoint writes a model value to path using gob encoding. It is a
// convenience for consumers that have no serialization format of their
// own; checkpoint writers with a native format should write to
// RunHandle.CheckpointPath themselves.
func SaveCheckpoint(model any, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.NewFilesystemError("create", path, err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(model); err != nil {
		return errors.Wrapf(err, "encoding checkpoint %s", path)
	}
	return nil
}

// LoadCheckpoint reads a gob-encoded model value from path into model,
// which must be a pointer.
func LoadCheckpoint(model any, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.NewFilesystemError("open", path, err)
	}
	defer file.Close()

	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(model); err != nil {
		return errors.Wrapf(err, "decoding checkpoint %s", path)
	}
	return nil
}

// LatestCheckpoint returns the most recently modified file in a models
// directory. Resume uses it to pick the checkpoint training continues
// from. Returns ErrNoCheckpoints when the directory holds no files.
func LatestCheckpoint(modelsDir string) (string, error) {
	entries, err := os.ReadDir(modelsDir)
	if err != nil {
		return "", errors.NewFilesystemError("readdir", modelsDir, err)
	}

	var latest string
	var latestMod int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return "", errors.NewFilesystemError("stat", filepath.Join(modelsDir, entry.Name()), err)
		}
		if latest == "" || info.ModTime().UnixNano() > latestMod {
			latest = filepath.Join(modelsDir, entry.Name())
			latestMod = info.ModTime().UnixNano()
		}
	}

	if latest == "" {
		return "", errors.ErrNoCheckpoints
	}
	return latest, nil
}
