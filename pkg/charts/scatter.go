package charts

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// EventKind is one of the four lifecycle events placed on a timeline.
type EventKind int

const (
	EventScaleUp EventKind = iota
	EventStartsProcessing
	EventPodCreated
	EventPodStarted
	numEventKinds
)

// EventPoint is one lifecycle event on an experiment timeline,
// milliseconds after that experiment's scale-up.
type EventPoint struct {
	Kind     EventKind
	OffsetMs float64
}

// Timeline is the event sequence of one experiment iteration.
type Timeline struct {
	Events []EventPoint
}

var eventGlyphs = [numEventKinds]draw.GlyphDrawer{
	draw.BoxGlyph{},
	draw.PyramidGlyph{},
	draw.CircleGlyph{},
	draw.CrossGlyph{},
}

// SaveScatterTimeline renders experiment iterations as horizontal
// bands, perBand iterations each, with lifecycle events plotted at
// their scale-up-relative offsets. With collapsed set, the
// starts-processing legend entry also stands for pod creation, for
// controllers where the two are the same instant and timelines carry
// no separate pod-created point.
func SaveScatterTimeline(timelines []Timeline, collapsed bool, title, path string, perBand int) error {
	if len(timelines) == 0 {
		return fmt.Errorf("scatter timeline %s: no data", title)
	}
	if perBand <= 0 {
		perBand = 5
	}

	labels := [numEventKinds]string{
		"Scale-up",
		"Starts Processing",
		"Pod Created",
		"Pod Started",
	}
	if collapsed {
		labels[EventStartsProcessing] = "Starts Processing / Pod Created"
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time [ms]"
	p.Y.Label.Text = "Experiment Bands"

	numBands := (len(timelines) + perBand - 1) / perBand

	// Each iteration gets a fixed y inside its band, leaving a 10%
	// margin at the band edges so neighboring bands stay readable.
	var points [numEventKinds]plotter.XYs
	var maxX float64
	for idx, tl := range timelines {
		band := idx / perBand
		posInBand := idx % perBand
		y := float64(band) + 0.1 + (float64(posInBand)+0.5)*(0.8/float64(perBand))
		for _, ev := range tl.Events {
			points[ev.Kind] = append(points[ev.Kind], plotter.XY{X: ev.OffsetMs, Y: y})
			if ev.OffsetMs > maxX {
				maxX = ev.OffsetMs
			}
		}
	}

	for kind := EventKind(0); kind < numEventKinds; kind++ {
		if len(points[kind]) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(points[kind])
		if err != nil {
			return fmt.Errorf("scatter timeline %s: %w", title, err)
		}
		sc.GlyphStyle = draw.GlyphStyle{
			Color:  plotutil.Color(int(kind)),
			Radius: vg.Points(4),
			Shape:  eventGlyphs[kind],
		}
		p.Add(sc)
		p.Legend.Add(labels[kind], sc)
	}

	// Band separators and one labeled tick per band.
	ticks := make([]plot.Tick, 0, numBands)
	for band := 0; band < numBands; band++ {
		sep, err := plotter.NewLine(plotter.XYs{
			{X: 0, Y: float64(band)},
			{X: maxX, Y: float64(band)},
		})
		if err != nil {
			return fmt.Errorf("scatter timeline %s: %w", title, err)
		}
		sep.LineStyle.Color = plotutil.Color(7)
		sep.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(sep)

		start := band*perBand + 1
		end := (band + 1) * perBand
		if end > len(timelines) {
			end = len(timelines)
		}
		label := fmt.Sprintf("Exp %d-%d", start, end)
		if start == end {
			label = fmt.Sprintf("Exp %d", start)
		}
		ticks = append(ticks, plot.Tick{Value: float64(band) + 0.5, Label: label})
	}
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Min = -0.1
	p.Y.Max = float64(numBands) + 0.1
	p.Legend.Top = true

	height := vg.Length(3 * numBands)
	if height < 10 {
		height = 10
	}
	if err := p.Save(16*vg.Inch, height*vg.Inch, path); err != nil {
		return fmt.Errorf("save scatter timeline %s: %w", path, err)
	}
	return nil
}
