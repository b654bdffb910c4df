package report

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/ratevthresh_go/internal/collector"
	"github.com/user/ratevthresh_go/internal/parser"
)

func fillSlot(t *testing.T, table *collector.RateTable, threshold, slot int, count func(ch int) float64) {
	t.Helper()
	for ch := 0; ch < parser.NumChannels; ch++ {
		require.NoError(t, table.Set(threshold, slot, ch, count(ch)))
	}
}

func TestWriteTextLayout(t *testing.T) {
	table := collector.NewRateTable()
	fillSlot(t, table, 100, 5, func(ch int) float64 {
		if ch == 9 {
			return 3.5
		}
		return float64(ch)
	})
	fillSlot(t, table, 100, 4, func(ch int) float64 { return 1000 })
	fillSlot(t, table, 20, 11, func(ch int) float64 { return 0.125 })

	var out bytes.Buffer
	require.NoError(t, WriteText(&out, table, TextOptions{}))

	want := "threshold 20\n" +
		"slot 11:  0.125 0.125 0.125 0.125 0.125 0.125 0.125 0.125 0.125 0.125 0.125 0.125 0.125 0.125 0.125 0.125\n" +
		"threshold 100\n" +
		"slot 4:  1000.0 1000.0 1000.0 1000.0 1000.0 1000.0 1000.0 1000.0 1000.0 1000.0 1000.0 1000.0 1000.0 1000.0 1000.0 1000.0\n" +
		"slot 5:  0.0 1.0 2.0 3.0 4.0 5.0 6.0 7.0 8.0 3.5 10.0 11.0 12.0 13.0 14.0 15.0\n"
	assert.Equal(t, want, out.String())
}

func TestWriteTextSixteenValuesPerSlot(t *testing.T) {
	table := collector.NewRateTable()
	for _, th := range []int{5, 15, 25} {
		for slot := parser.MinSlot; slot <= parser.MaxSlot; slot++ {
			fillSlot(t, table, th, slot, func(ch int) float64 { return float64(th*ch) / 3 })
		}
	}

	var out bytes.Buffer
	require.NoError(t, WriteText(&out, table, TextOptions{}))

	var thresholds []string
	for _, line := range strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n") {
		if strings.HasPrefix(line, "threshold ") {
			thresholds = append(thresholds, strings.TrimPrefix(line, "threshold "))
			continue
		}
		require.True(t, strings.HasPrefix(line, "slot "), line)
		_, values, found := strings.Cut(line, ":  ")
		require.True(t, found, line)
		assert.Len(t, strings.Split(values, " "), parser.NumChannels, line)
	}
	assert.Equal(t, []string{"5", "15", "25"}, thresholds)
}

func TestWriteTextMissingChannel(t *testing.T) {
	table := collector.NewRateTable()
	fillSlot(t, table, 10, 4, func(ch int) float64 { return 1 })
	require.NoError(t, table.Set(10, 6, 0, 2))
	require.NoError(t, table.Set(10, 6, 2, 4))

	t.Run("fail", func(t *testing.T) {
		var out bytes.Buffer
		err := WriteText(&out, table, TextOptions{Missing: MissingFail})
		var mk *MissingKeyError
		require.True(t, errors.As(err, &mk))
		assert.Equal(t, MissingKeyError{Threshold: 10, Slot: 6, Channel: 1}, *mk)
		assert.Empty(t, out.String(), "no partial table is written")
	})

	t.Run("placeholder", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, WriteText(&out, table, TextOptions{Missing: MissingPlaceholder, Placeholder: "-"}))
		assert.Contains(t, out.String(), "slot 6:  2.0 - 4.0 - - - - - - - - - - - - -\n")
	})

	t.Run("default placeholder", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, WriteText(&out, table, TextOptions{Missing: MissingPlaceholder}))
		assert.Contains(t, out.String(), "slot 6:  2.0 nan 4.0 nan")
	})
}

func TestWriteTextEmptyTable(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, WriteText(&out, collector.NewRateTable(), TextOptions{}))
	assert.Empty(t, out.String())
}

func TestWriteTextDeterministic(t *testing.T) {
	table := collector.NewRateTable()
	for _, th := range []int{40, 10, 30, 20} {
		for _, slot := range []int{9, 4, 11} {
			fillSlot(t, table, th, slot, func(ch int) float64 { return float64(th+slot) * 1.1 })
		}
	}
	var first, second bytes.Buffer
	require.NoError(t, WriteText(&first, table, TextOptions{}))
	require.NoError(t, WriteText(&second, table, TextOptions{}))
	assert.Equal(t, first.String(), second.String())
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{3.5, "3.5"},
		{100, "100.0"},
		{0, "0.0"},
		{math.Copysign(0, -1), "-0.0"},
		{1234.567, "1234.567"},
		{0.1, "0.1"},
		{1e12, "1e+12"},
		{123456789012, "1.23456789012e+11"},
		{1e11, "1e+11"},
		{1.5e11, "1.5e+11"},
		{99999999999.99998, "1e+11"},
		{99999999999.5, "99999999999.5"},
		{12345678901.25, "12345678901.2"},
		{999999999999.9, "1e+12"},
		{-2.5e11, "-2.5e+11"},
		{0.0001, "0.0001"},
		{1e-5, "1e-05"},
		{2.0 / 3.0, "0.666666666667"},
		{math.NaN(), "nan"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCount(tt.in), "%v", tt.in)
	}
}

func TestParseMissingPolicy(t *testing.T) {
	p, err := ParseMissingPolicy("Placeholder")
	require.NoError(t, err)
	assert.Equal(t, MissingPlaceholder, p)

	p, err = ParseMissingPolicy("")
	require.NoError(t, err)
	assert.Equal(t, MissingFail, p)

	_, err = ParseMissingPolicy("skip")
	assert.Error(t, err)
}
