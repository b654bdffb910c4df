package report

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/ratevthresh_go/internal/collector"
	"github.com/user/ratevthresh_go/internal/parser"
)

// channelColors cycles over the 16 channels of a slot.
var channelColors = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 255},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 255},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 255},
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 255},
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 255},
	color.RGBA{R: 0x8c, G: 0x56, B: 0x4b, A: 255},
	color.RGBA{R: 0xe3, G: 0x77, B: 0xc2, A: 255},
	color.RGBA{R: 0x7f, G: 0x7f, B: 0x7f, A: 255},
}

// CreateRateCurvePlot draws count versus threshold for every channel of one
// slot. The Y axis is logarithmic, so points with a count <= 0 are dropped.
func CreateRateCurvePlot(table *collector.RateTable, slot int) ([]byte, error) {
	if table == nil || table.Len() == 0 {
		return nil, fmt.Errorf("no rates to plot")
	}
	if !parser.ValidSlot(slot) {
		return nil, fmt.Errorf("slot %d outside %d..%d", slot, parser.MinSlot, parser.MaxSlot)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Rate vs Threshold (Slot %d)", slot)
	p.X.Label.Text = "Threshold"
	p.Y.Label.Text = "Rate"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Add(plotter.NewGrid())

	linesPlotted := 0
	for ch := 0; ch < parser.NumChannels; ch++ {
		thresholds, counts := table.Curve(slot, ch)
		pts := make(plotter.XYs, 0, len(thresholds))
		for i, th := range thresholds {
			if counts[i] > 0 {
				pts = append(pts, plotter.XY{X: float64(th), Y: counts[i]})
			}
		}
		if len(pts) == 0 {
			continue
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create line for slot %d channel %d: %w", slot, ch, err)
		}
		line.Color = channelColors[ch%len(channelColors)]
		line.LineStyle.Width = vg.Points(1.2)
		if ch >= len(channelColors) {
			line.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		}
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("ch %02d", ch), line)
		linesPlotted++
	}
	if linesPlotted == 0 {
		return nil, fmt.Errorf("slot %d has no positive rates to plot", slot)
	}

	p.Legend.Top = true
	p.Legend.XOffs = vg.Points(-10)

	writer, err := p.WriterTo(vg.Points(800), vg.Points(400), "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %w", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %w", err)
	}
	return buf.Bytes(), nil
}
