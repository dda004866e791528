package report

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/maxpv/expman/pkg/errors"
)

// PlotMetric renders a metric-vs-epoch line chart to a PNG file.
func PlotMetric(l *TrainingLog, metric, outPath string) error {
	col, err := l.Column(metric)
	if err != nil {
		return err
	}
	epochs, err := l.Column("epoch")
	if err != nil {
		// No epoch column: use the row index.
		epochs = make([]float64, len(col))
		for i := range epochs {
			epochs[i] = float64(i)
		}
	}

	pts := make(plotter.XYs, len(col))
	for i := range col {
		pts[i].X = epochs[i]
		pts[i].Y = col[i]
	}

	p := plot.New()
	p.Title.Text = metric
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = metric

	line, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(err, "building metric line")
	}
	p.Add(line)
	p.Add(plotter.NewGrid())

	if err := p.Save(6*vg.Inch, 4*vg.Inch, outPath); err != nil {
		return errors.Wrapf(err, "saving plot %s", outPath)
	}
	return nil
}
