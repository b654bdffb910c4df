package report

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/ratevthresh_go/internal/analysis"
	"github.com/user/ratevthresh_go/internal/collector"
	"github.com/user/ratevthresh_go/internal/parser"
)

var pngMagic = []byte("\x89PNG")

func scanTable(t *testing.T) *collector.RateTable {
	t.Helper()
	table := collector.NewRateTable()
	for _, th := range []int{10, 20, 30} {
		for slot := parser.MinSlot; slot <= parser.MaxSlot; slot++ {
			fillSlot(t, table, th, slot, func(ch int) float64 {
				return float64(10000*(ch+1)) / float64(th*th)
			})
		}
	}
	return table
}

func TestCreateRateCurvePlot(t *testing.T) {
	table := scanTable(t)
	img, err := CreateRateCurvePlot(table, 5)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = CreateRateCurvePlot(table, 3)
	assert.Error(t, err)
	_, err = CreateRateCurvePlot(collector.NewRateTable(), 5)
	assert.Error(t, err)

	zeros := collector.NewRateTable()
	fillSlot(t, zeros, 10, 6, func(int) float64 { return 0 })
	_, err = CreateRateCurvePlot(zeros, 6)
	assert.Error(t, err, "nothing positive to draw on a log axis")
}

func TestCreateRateHeatmap(t *testing.T) {
	table := scanTable(t)
	img, err := CreateRateHeatmap(table, 20)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = CreateRateHeatmap(table, 25)
	assert.Error(t, err)

	sparse := collector.NewRateTable()
	require.NoError(t, sparse.Set(10, 4, 0, 5))
	img, err = CreateRateHeatmap(sparse, 10)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))
}

func TestWritePDFFile(t *testing.T) {
	table := scanTable(t)
	results, err := analysis.AnalyzeRates(table, 50)
	require.NoError(t, err)

	plots := map[string][]byte{}
	img, err := CreateRateHeatmap(table, 10)
	require.NoError(t, err)
	plots[HeatmapPlotKey] = img
	img, err = CreateRateCurvePlot(table, 4)
	require.NoError(t, err)
	plots[CurvePlotKey(4)] = img

	fsys := afero.NewMemMapFs()
	info := ReportInfo{Suffixes: []string{"abcde", "fghij"}, HeatmapThreshold: 10}
	require.NoError(t, WritePDFFile(fsys, "out/report.pdf", results, info, plots))

	data, err := afero.ReadFile(fsys, "out/report.pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestBuildPDFReportWithoutResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, BuildPDFReport(&buf, nil, ReportInfo{Suffixes: []string{"x"}}, nil))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestCurvePlotKey(t *testing.T) {
	assert.Equal(t, "curve_s04", CurvePlotKey(4))
	assert.Equal(t, "curve_s11", CurvePlotKey(11))
}
