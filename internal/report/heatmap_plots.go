package report

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/ratevthresh_go/internal/collector"
	"github.com/user/ratevthresh_go/internal/parser"
)

// rateGrid exposes one threshold of a RateTable as a channel × slot grid.
// Unset cells are NaN.
type rateGrid struct {
	z [parser.NumSlots][parser.NumChannels]float64
}

func newRateGrid(table *collector.RateTable, threshold int) (*rateGrid, int) {
	g := &rateGrid{}
	filled := 0
	for i := range g.z {
		for ch := range g.z[i] {
			v, ok := table.Lookup(threshold, i+parser.MinSlot, ch)
			if !ok {
				v = math.NaN()
			} else {
				filled++
			}
			g.z[i][ch] = v
		}
	}
	return g, filled
}

func (g *rateGrid) Dims() (c, r int)   { return parser.NumChannels, parser.NumSlots }
func (g *rateGrid) Z(c, r int) float64 { return g.z[r][c] }
func (g *rateGrid) X(c int) float64    { return float64(c) }
func (g *rateGrid) Y(r int) float64    { return float64(r + parser.MinSlot) }

// CreateRateHeatmap draws the rate of every slot/channel at one threshold.
func CreateRateHeatmap(table *collector.RateTable, threshold int) ([]byte, error) {
	if table == nil || table.Len() == 0 {
		return nil, fmt.Errorf("no rates to plot heatmap")
	}
	grid, filled := newRateGrid(table, threshold)
	if filled == 0 {
		return nil, fmt.Errorf("no rates at threshold %d", threshold)
	}

	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, row := range grid.z {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	if minVal == maxVal {
		maxVal = minVal + 1
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Rates at Threshold %d", threshold)
	p.X.Label.Text = "Channel"
	p.Y.Label.Text = "Slot"

	xTicks := make([]plot.Tick, 0, parser.NumChannels)
	for ch := 0; ch < parser.NumChannels; ch++ {
		xTicks = append(xTicks, plot.Tick{Value: float64(ch), Label: fmt.Sprintf("%d", ch)})
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.X.Min = -0.5
	p.X.Max = float64(parser.NumChannels) - 0.5

	yTicks := make([]plot.Tick, 0, parser.NumSlots)
	for slot := parser.MinSlot; slot <= parser.MaxSlot; slot++ {
		yTicks = append(yTicks, plot.Tick{Value: float64(slot), Label: fmt.Sprintf("%d", slot)})
	}
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	p.Y.Min = float64(parser.MinSlot) - 0.5
	p.Y.Max = float64(parser.MaxSlot) + 0.5

	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	hm.Min = minVal
	hm.Max = maxVal
	hm.NaN = color.Gray{Y: 200}
	p.Add(hm)

	writer, err := p.WriterTo(vg.Points(800), vg.Points(450), "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create heatmap writer: %w", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write heatmap to buffer: %w", err)
	}
	return buf.Bytes(), nil
}
