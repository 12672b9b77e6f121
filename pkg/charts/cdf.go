package charts

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/dessertlab/preempt-k8s/pkg/statistics"
)

// SaveCDF renders one empirical CDF line per series. Empty series are
// skipped.
func SaveCDF(series [][]float64, labels []string, title, xlabel, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "CDF"
	p.Add(plotter.NewGrid())

	var args []interface{}
	for i, data := range series {
		if len(data) == 0 {
			continue
		}
		sorted, cum := statistics.CDF(data)
		pts := make(plotter.XYs, len(sorted))
		for j := range sorted {
			pts[j].X = sorted[j]
			pts[j].Y = cum[j]
		}
		args = append(args, labels[i], pts)
	}
	if len(args) == 0 {
		return fmt.Errorf("cdf plot %s: no data", title)
	}
	if err := plotutil.AddLinePoints(p, args...); err != nil {
		return fmt.Errorf("cdf plot %s: %w", title, err)
	}

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save cdf plot %s: %w", path, err)
	}
	return nil
}
