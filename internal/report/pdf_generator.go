package report

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/spf13/afero"

	"github.com/user/ratevthresh_go/internal/analysis"
	"github.com/user/ratevthresh_go/internal/parser"
)

const (
	inchToMm               = 25.4
	pdfPageWidthLandscape  = 11 * inchToMm // Letter landscape
	pdfPageHeightLandscape = 8.5 * inchToMm
	pdfMargin              = 0.5 * inchToMm
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)
)

// Plot image keys understood by BuildPDFReport.
const HeatmapPlotKey = "heatmap"

func CurvePlotKey(slot int) string {
	return fmt.Sprintf("curve_s%02d", slot)
}

// ReportInfo describes the run in the PDF title block.
type ReportInfo struct {
	Suffixes         []string
	HeatmapThreshold int
}

// pdfStyler holds reusable styling and state for PDF generation
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	styles      map[string]func()
	lineHeight  float64
	currentY    float64 // manually tracked Y for flowing content
	pageHeight  float64
	contentTopY float64
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		styles:      make(map[string]func()),
		lineHeight:  6, // mm
		pageHeight:  pdfPageHeightLandscape - (2 * pdfMargin),
		contentTopY: pdfMargin,
	}
	s.currentY = s.contentTopY
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 14)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetFillColor(200, 200, 200)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", 9)
		s.pdf.SetTextColor(50, 50, 50)
	}
	s.styles["tableCellRed"] = func() { // channel never reached the target rate
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetTextColor(200, 0, 0)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
	} else {
		s.styles["normal"]()
	}
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > s.pageHeight {
		s.newPage()
	}
}

func (s *pdfStyler) newPage() {
	s.pdf.AddPage()
	s.currentY = s.contentTopY
}

func (s *pdfStyler) writeParagraph(text string, styleName string, align string) {
	s.applyStyle(styleName)
	lines := s.pdf.SplitLines([]byte(text), pdfContentWidth)
	s.checkAddPage(float64(len(lines)) * s.lineHeight)

	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, text, "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width float64, height float64, caption string) {
	s.pdf.RegisterImageReader(imageName, "PNG", bytes.NewReader(imageBytes))

	if width > pdfContentWidth {
		ratio := pdfContentWidth / width
		width = pdfContentWidth
		height *= ratio
	}
	captionHeight := 0.0
	if caption != "" {
		captionHeight = s.lineHeight + 1
	}
	s.checkAddPage(height + captionHeight)

	x := pdfMargin + (pdfContentWidth-width)/2
	s.pdf.Image(imageName, x, s.currentY, width, height, false, "PNG", 0, "")
	s.currentY += height

	if caption != "" {
		s.addSpacer(1)
		s.writeParagraph(caption, "normal", "C")
	}
	s.addSpacer(2)
}

// writeTable draws a header row and data rows; cellStyle picks the style of each row.
func (s *pdfStyler) writeTable(headers []string, colWidthsRel []float64, rows [][]string, cellStyle func(row int) string) {
	colWidths := make([]float64, len(colWidthsRel))
	for i, rel := range colWidthsRel {
		colWidths[i] = rel * pdfContentWidth
	}

	writeRow := func(cells []string, fill bool) {
		x := pdfMargin
		for i, cell := range cells {
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(colWidths[i], s.lineHeight, cell, "1", 0, "C", fill, 0, "")
			x += colWidths[i]
		}
		s.currentY += s.lineHeight
	}

	s.checkAddPage(2 * s.lineHeight)
	s.applyStyle("tableHeader")
	writeRow(headers, true)
	for i, row := range rows {
		if s.currentY+s.lineHeight > s.pageHeight {
			s.newPage()
			s.applyStyle("tableHeader")
			writeRow(headers, true)
		}
		s.applyStyle(cellStyle(i))
		writeRow(row, false)
	}
}

// BuildPDFReport renders the rate report as a landscape Letter PDF to w.
func BuildPDFReport(w io.Writer, results *analysis.AnalysisResults, info ReportInfo, plotImages map[string][]byte) error {
	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AddPage()

	styler := newPDFStyler(pdf)

	styler.writeParagraph(fmt.Sprintf("DSC Rate vs Threshold Report (%s)", strings.Join(info.Suffixes, ", ")), "h1", "C")
	styler.addSpacer(5)

	if results == nil {
		styler.writeParagraph("No analysis results to display.", "normal", "L")
		return pdf.Output(w)
	}

	if n := len(results.Thresholds); n > 0 {
		styler.writeParagraph(fmt.Sprintf("Thresholds scanned: %d (%d to %d)", n,
			results.Thresholds[0], results.Thresholds[n-1]), "normal", "L")
	}
	styler.writeParagraph(fmt.Sprintf("Target rate: %s", FormatCount(results.TargetRate)), "normal", "L")
	styler.addSpacer(5)

	if len(results.AnalysisErrors) > 0 {
		styler.writeParagraph("Warnings", "h2", "L")
		for _, msg := range results.AnalysisErrors {
			styler.writeParagraph("- "+msg, "normal", "L")
		}
		styler.addSpacer(5)
	}

	styler.writeParagraph(fmt.Sprintf("Lowest Threshold Reaching Rate <= %s", FormatCount(results.TargetRate)), "h2", "L")
	if len(results.Crossings) > 0 {
		rows := make([][]string, 0, len(results.Crossings))
		for _, c := range results.Crossings {
			row := []string{strconv.Itoa(c.Slot), strconv.Itoa(c.Channel), "not reached", "-"}
			if c.Found {
				row[2] = strconv.Itoa(c.Threshold)
				row[3] = fmt.Sprintf("%.3f", c.Count)
			}
			rows = append(rows, row)
		}
		styler.writeTable([]string{"Slot", "Channel", "Threshold", "Rate"}, []float64{0.2, 0.2, 0.3, 0.3}, rows,
			func(i int) string {
				if !results.Crossings[i].Found {
					return "tableCellRed"
				}
				return "tableCell"
			})
	} else {
		styler.writeParagraph("No channel curves available.", "normal", "L")
	}
	styler.addSpacer(5)

	styler.newPage()
	styler.writeParagraph("Top 10 Noisiest Channels (lowest threshold)", "h2", "L")
	if len(results.RankedNoisy) > 0 {
		n := int(math.Min(10, float64(len(results.RankedNoisy))))
		rows := make([][]string, 0, n)
		for i, item := range results.RankedNoisy[:n] {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				strconv.Itoa(item.Slot),
				strconv.Itoa(item.Channel),
				strconv.Itoa(item.Threshold),
				fmt.Sprintf("%.3f", item.Value),
			})
		}
		styler.writeTable([]string{"Rank", "Slot", "Channel", "Threshold", "Rate"}, []float64{0.1, 0.15, 0.15, 0.25, 0.35}, rows,
			func(int) string { return "tableCell" })
	} else {
		styler.writeParagraph("No data for noisy channel ranking.", "normal", "L")
	}
	styler.addSpacer(5)

	styler.newPage()
	styler.writeParagraph("Graphical Analysis", "h1", "C")
	styler.addSpacer(5)

	imgWidth := pdfContentWidth * 0.8
	heatmapHeight := imgWidth * (450.0 / 800.0)
	curveHeight := imgWidth * (400.0 / 800.0)

	styler.writeParagraph(fmt.Sprintf("Slot/Channel Rates at Threshold %d", info.HeatmapThreshold), "h2", "L")
	if imgBytes, ok := plotImages[HeatmapPlotKey]; ok && len(imgBytes) > 0 {
		styler.addImage(imgBytes, HeatmapPlotKey, imgWidth, heatmapHeight, "Grey cells have no value at this threshold.")
	} else {
		styler.writeParagraph("Heatmap not available.", "normal", "L")
	}

	for slot := parser.MinSlot; slot <= parser.MaxSlot; slot++ {
		styler.newPage()
		styler.writeParagraph(fmt.Sprintf("Slot %d", slot), "h2", "L")
		key := CurvePlotKey(slot)
		if imgBytes, ok := plotImages[key]; ok && len(imgBytes) > 0 {
			styler.addImage(imgBytes, key, imgWidth, curveHeight, fmt.Sprintf("Slot %d rate vs threshold, all channels", slot))
		} else {
			styler.writeParagraph(fmt.Sprintf("Rate curves for slot %d not available.", slot), "normal", "L")
		}
	}

	return pdf.Output(w)
}

// WritePDFFile creates path on fsys and writes the PDF report into it.
func WritePDFFile(fsys afero.Fs, path string, results *analysis.AnalysisResults, info ReportInfo, plotImages map[string][]byte) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create PDF file: %w", err)
	}
	if err := BuildPDFReport(f, results, info, plotImages); err != nil {
		f.Close()
		return fmt.Errorf("failed to generate PDF report: %w", err)
	}
	return f.Close()
}
