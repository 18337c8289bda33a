package prep

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/jsdoublel/f4clades/internal/check"
)

const (
	plotH = 4 * vg.Inch
	plotW = 6 * vg.Inch

	maxTicks = 10
)

var ErrNothingToPlot = errors.New("no tested clades")

// Line plot with the number of violating statistics at each level of every
// walk, saved as <prefix>.png
func WriteViolationsPlot(r *check.Report, prefix string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("f4 violations (|Z| > %s)", r.Threshold)
	p.X.Label.Text = "Level (steps from target leaf)"
	p.Y.Label.Text = "Number of Violating Statistics"
	p.Legend.Top = true
	maxLevel, maxCount := 0, 0
	for i, lr := range r.Leaves {
		if len(lr.Levels) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(lr.Levels))
		for j, l := range lr.Levels {
			pts[j].X = float64(l.Index + 1)
			pts[j].Y = float64(len(l.Result.Violations))
			maxLevel = max(maxLevel, l.Index+1)
			maxCount = max(maxCount, len(l.Result.Violations))
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i)
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(i)
		points.Radius = vg.Points(3)
		p.Add(line, points)
		p.Legend.Add(lr.Leaf, line, points)
	}
	if maxLevel == 0 {
		return ErrNothingToPlot
	}
	p.X.Min = 0
	p.X.Max = float64(maxLevel + 1)
	p.X.Tick.Marker = integerTicks{}
	p.Y.Min = 0
	p.Y.Max = float64(maxCount + 1)
	p.Y.Tick.Marker = integerTicks{}
	return p.Save(plotW, plotH, fmt.Sprintf("%s.png", prefix))
}

// ticks on integers only, labelling at most maxTicks of them
type integerTicks struct{}

func (integerTicks) Ticks(_, max float64) []plot.Tick {
	step := 1
	if int(max) > maxTicks {
		step = int(math.Ceil(max / maxTicks))
	}
	ticks := make([]plot.Tick, 0, int(max)/step+2)
	for i := range int(max) + 1 {
		if i%step == 0 {
			ticks = append(ticks, plot.Tick{Value: float64(i), Label: fmt.Sprintf("%d", i)})
		} else {
			ticks = append(ticks, plot.Tick{Value: float64(i)})
		}
	}
	return ticks
}
