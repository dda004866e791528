// Package report analyzes the training-logs.csv a run accumulates:
// selecting the best epoch for performances.json and plotting metric
// curves.
package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/maxpv/expman/pkg/errors"
)

// TrainingLog is the parsed form of a run's training-logs.csv: a header
// row naming the columns ("epoch", "loss", "val_loss", ...) and one float
// row per epoch.
type TrainingLog struct {
	Columns []string
	Rows    [][]float64
}

// ParseTrainingLog reads and parses a training log CSV.
func ParseTrainingLog(path string) (*TrainingLog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewFilesystemError("open", path, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "parsing training log %s", path)
	}
	if len(records) == 0 {
		return nil, errors.Newf("training log %s is empty", path)
	}

	log := &TrainingLog{Columns: records[0]}
	for i, record := range records[1:] {
		row := make([]float64, len(record))
		for j, cell := range record {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "training log %s row %d column %q", path, i+1, log.Columns[j])
			}
			row[j] = v
		}
		log.Rows = append(log.Rows, row)
	}
	return log, nil
}

// ColumnIndex returns the position of a named column.
func (l *TrainingLog) ColumnIndex(name string) (int, error) {
	for i, c := range l.Columns {
		if c == name {
			return i, nil
		}
	}
	return 0, errors.Newf("training log has no column %q", name)
}

// Column extracts a named column as a slice, one value per epoch.
func (l *TrainingLog) Column(name string) ([]float64, error) {
	idx, err := l.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	col := make([]float64, len(l.Rows))
	for i, row := range l.Rows {
		col[i] = row[idx]
	}
	return col, nil
}

// Best returns the row where metric is best (smallest when minimize, else
// largest), as a column-name to value map.
func Best(l *TrainingLog, metric string, minimize bool) (map[string]float64, error) {
	if len(l.Rows) == 0 {
		return nil, errors.New("training log has no rows")
	}
	col, err := l.Column(metric)
	if err != nil {
		return nil, err
	}

	var idx int
	if minimize {
		idx = floats.MinIdx(col)
	} else {
		idx = floats.MaxIdx(col)
	}

	best := make(map[string]float64, len(l.Columns))
	for j, name := range l.Columns {
		best[name] = l.Rows[idx][j]
	}
	return best, nil
}

// WriteBest writes the best epoch of a training log to outPath as a
// one-element JSON records array, with the wall-clock training duration
// added under "elapsed":
//
//	[{"epoch":7,"loss":0.0123,"val_loss":0.0200,"elapsed":412.5}]
func WriteBest(l *TrainingLog, metric string, minimize bool, elapsedSeconds float64, outPath string) error {
	best, err := Best(l, metric, minimize)
	if err != nil {
		return err
	}
	best["elapsed"] = elapsedSeconds

	data, err := json.Marshal([]map[string]float64{best})
	if err != nil {
		return errors.Wrap(err, "serializing performances")
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
		return errors.NewFilesystemError("write", outPath, err)
	}
	return nil
}
