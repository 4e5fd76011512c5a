package main

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	vb "visionbridge/pkg/visionbridge"
)

// stepStats summarizes the displacement of the points that survived one
// flow step.
type stepStats struct {
	Frame   int     `json:"frame"`
	Tracked int     `json:"tracked"`
	Lost    int     `json:"lost"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Median  float64 `json:"median"`
	Max     float64 `json:"max"`
}

func summarizeFlow(frame int, r vb.FlowResult) stepStats {
	s := stepStats{Frame: frame}
	d := make([]float64, 0, len(r.Results))
	for i, p := range r.Results {
		if !p.Status {
			s.Lost++
			continue
		}
		dx := float64(p.Point.X - r.Previous[i].X)
		dy := float64(p.Point.Y - r.Previous[i].Y)
		d = append(d, math.Hypot(dx, dy))
	}
	s.Tracked = len(d)
	if len(d) == 0 {
		return s
	}
	sort.Float64s(d)
	if len(d) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(d, nil)
	} else {
		s.Mean = d[0]
	}
	s.Median = stat.Quantile(0.5, stat.Empirical, d, nil)
	s.Max = d[len(d)-1]
	return s
}

// plotFlow saves mean and peak displacement per frame. The format follows
// the file extension.
func plotFlow(steps []stepStats, path string) error {
	p := plot.New()
	p.Title.Text = "Optical flow displacement"
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Displacement (px)"

	mean := make(plotter.XYs, 0, len(steps))
	peak := make(plotter.XYs, 0, len(steps))
	for _, s := range steps {
		if s.Tracked == 0 {
			continue
		}
		mean = append(mean, plotter.XY{X: float64(s.Frame), Y: s.Mean})
		peak = append(peak, plotter.XY{X: float64(s.Frame), Y: s.Max})
	}
	if len(mean) == 0 {
		return fmt.Errorf("no tracked points to plot")
	}

	meanLine, err := plotter.NewLine(mean)
	if err != nil {
		return fmt.Errorf("mean line: %w", err)
	}
	meanLine.Width = vg.Points(1)
	meanLine.Color = color.RGBA{R: 30, G: 90, B: 200, A: 255}

	peakPts, err := plotter.NewScatter(peak)
	if err != nil {
		return fmt.Errorf("peak scatter: %w", err)
	}
	peakPts.GlyphStyle.Color = color.RGBA{R: 200, G: 40, B: 40, A: 255}
	peakPts.GlyphStyle.Radius = vg.Points(2)

	p.Add(meanLine, peakPts)
	p.Legend.Add("mean", meanLine)
	p.Legend.Add("max", peakPts)
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save flow plot: %w", err)
	}
	return nil
}
