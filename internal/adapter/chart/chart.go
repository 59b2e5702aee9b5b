// Package chart renders trend series as PNG line charts.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/infection-report-service/internal/report"
)

// ErrNoPoints is returned for a series without a single plottable value.
var ErrNoPoints = errors.New("chart: no points to plot")

// markerThreshold is the point count below which each sample gets a marker.
const markerThreshold = 14

var lineColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}

// Renderer draws series at a fixed size.
type Renderer struct {
	width  vg.Length
	height vg.Length
}

// NewRenderer returns a renderer producing 8x4.5 inch charts.
func NewRenderer() *Renderer {
	return &Renderer{width: 8 * vg.Inch, height: 4.5 * vg.Inch}
}

// Render returns the PNG encoding of s. Missing values are skipped.
func (r *Renderer) Render(s report.Series) ([]byte, error) {
	if len(s.Dates) != len(s.Values) {
		return nil, fmt.Errorf("chart: %d dates for %d values", len(s.Dates), len(s.Values))
	}

	points := make(plotter.XYs, 0, len(s.Values))
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		points = append(points, plotter.XY{X: float64(s.Dates[i].Unix()), Y: v})
	}
	if len(points) == 0 {
		return nil, ErrNoPoints
	}

	p := plot.New()
	p.Title.Text = s.Title()
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = s.StatLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "02/01/06"}
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(points)
	if err != nil {
		return nil, fmt.Errorf("chart: build line: %w", err)
	}
	line.Color = lineColor
	line.Width = vg.Points(2)
	p.Add(line)

	if len(points) < markerThreshold {
		markers, err := plotter.NewScatter(points)
		if err != nil {
			return nil, fmt.Errorf("chart: build markers: %w", err)
		}
		markers.GlyphStyle.Shape = draw.CircleGlyph{}
		markers.GlyphStyle.Color = lineColor
		markers.GlyphStyle.Radius = vg.Points(3)
		p.Add(markers)
	}

	wt, err := p.WriterTo(r.width, r.height, "png")
	if err != nil {
		return nil, fmt.Errorf("chart: encoder: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("chart: encode png: %w", err)
	}
	return buf.Bytes(), nil
}
