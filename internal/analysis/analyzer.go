package analysis

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/user/ratevthresh_go/internal/collector"
	"github.com/user/ratevthresh_go/internal/parser"
)

// summarizeSlot computes the channel statistics of one slot.
func summarizeSlot(threshold, slot int, sr *collector.SlotRates) SlotSummary {
	vals := sr.Values()
	sum := SlotSummary{Threshold: threshold, Slot: slot, FilledChannels: len(vals)}
	if len(vals) == 0 {
		return sum
	}
	sum.Mean, sum.StdDev = stat.PopMeanStdDev(vals, nil)
	sum.Min = floats.Min(vals)
	sum.Max = floats.Max(vals)
	return sum
}

// findCrossing walks a curve from the lowest threshold up and returns the
// first point at or below target.
func findCrossing(slot, channel int, thresholds []int, counts []float64, target float64) ChannelCrossing {
	c := ChannelCrossing{Slot: slot, Channel: channel}
	for i, th := range thresholds {
		if counts[i] <= target {
			c.Threshold = th
			c.Count = counts[i]
			c.Found = true
			break
		}
	}
	return c
}

// AnalyzeRates summarizes a collected rate table. targetRate is the rate
// used to pick a threshold per channel.
func AnalyzeRates(table *collector.RateTable, targetRate float64) (*AnalysisResults, error) {
	if table == nil || table.Len() == 0 {
		return nil, fmt.Errorf("rate table is nil or empty, cannot analyze")
	}

	results := NewAnalysisResults(targetRate)
	results.Thresholds = table.Thresholds()
	lowest := results.Thresholds[0]

	for _, th := range results.Thresholds {
		for _, slot := range table.Slots(th) {
			sr, _ := table.Slot(th, slot)
			if !sr.Complete() {
				results.AnalysisErrors = append(results.AnalysisErrors,
					fmt.Sprintf("Threshold %d, slot %d: no value for channels %v.", th, slot, sr.Missing()))
			}
			results.Summaries = append(results.Summaries, summarizeSlot(th, slot, sr))
		}
	}

	for slot := parser.MinSlot; slot <= parser.MaxSlot; slot++ {
		for ch := 0; ch < parser.NumChannels; ch++ {
			thresholds, counts := table.Curve(slot, ch)
			if len(thresholds) == 0 {
				continue
			}
			crossing := findCrossing(slot, ch, thresholds, counts, targetRate)
			if !crossing.Found {
				results.AnalysisErrors = append(results.AnalysisErrors,
					fmt.Sprintf("Slot %d channel %d never drops to %.3f (last count %.3f at threshold %d).",
						slot, ch, targetRate, counts[len(counts)-1], thresholds[len(thresholds)-1]))
			}
			results.Crossings = append(results.Crossings, crossing)

			if v, ok := table.Lookup(lowest, slot, ch); ok {
				results.RankedNoisy = append(results.RankedNoisy,
					RankedChannel{Slot: slot, Channel: ch, Threshold: lowest, Value: v})
			}
		}
	}

	sort.SliceStable(results.RankedNoisy, func(i, j int) bool {
		return results.RankedNoisy[i].Value > results.RankedNoisy[j].Value // Descending
	})

	return results, nil
}
