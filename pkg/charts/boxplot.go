// Package charts renders the PNG figures of the analysis tools: box
// plots, CDFs, and event-timeline scatter plots.
package charts

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// SaveBoxPlot renders one box per group, colored in rotation, and
// writes the figure to path. Empty groups keep their slot on the axis
// but draw nothing.
func SaveBoxPlot(groups [][]float64, labels []string, title, ylabel, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())

	for i, group := range groups {
		if len(group) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(25), float64(i), plotter.Values(group))
		if err != nil {
			return fmt.Errorf("box plot %s: %w", title, err)
		}
		box.FillColor = plotutil.Color(i)
		p.Add(box)
	}
	p.NominalX(labels...)

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save box plot %s: %w", path, err)
	}
	return nil
}

// SaveComparativeBoxPlot renders paired boxes per label, the first
// series left of each tick and the second right, so the two
// controllers can be read off side by side.
func SaveComparativeBoxPlot(first, second [][]float64, firstName, secondName string, labels []string, title, ylabel, path string) error {
	if len(first) != len(second) {
		return fmt.Errorf("comparative box plot %s: group count mismatch (%d vs %d)", title, len(first), len(second))
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())

	firstColor := plotutil.Color(0)
	secondColor := plotutil.Color(1)

	for i := range first {
		if len(first[i]) > 0 {
			box, err := plotter.NewBoxPlot(vg.Points(15), float64(i)-0.2, plotter.Values(first[i]))
			if err != nil {
				return fmt.Errorf("comparative box plot %s: %w", title, err)
			}
			box.FillColor = firstColor
			p.Add(box)
		}
		if len(second[i]) > 0 {
			box, err := plotter.NewBoxPlot(vg.Points(15), float64(i)+0.2, plotter.Values(second[i]))
			if err != nil {
				return fmt.Errorf("comparative box plot %s: %w", title, err)
			}
			box.FillColor = secondColor
			p.Add(box)
		}
	}
	p.NominalX(labels...)

	p.Legend.Add(firstName, swatch{firstColor})
	p.Legend.Add(secondName, swatch{secondColor})
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save box plot %s: %w", path, err)
	}
	return nil
}

// swatch is a filled legend thumbnail for plotters that don't provide
// their own, like box plots.
type swatch struct {
	color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	poly := c.ClipPolygonY(pts)
	c.FillPolygon(s.Color, poly)
}
