package analysis

// SlotSummary holds the statistics over the channels of one slot at one threshold.
type SlotSummary struct {
	Threshold      int
	Slot           int
	FilledChannels int
	Mean           float64
	StdDev         float64 // population standard deviation
	Min            float64
	Max            float64
}

// ChannelCrossing is the lowest scanned threshold at which a channel's
// rate dropped to or below the target rate.
type ChannelCrossing struct {
	Slot      int
	Channel   int
	Threshold int
	Count     float64 // count at Threshold
	Found     bool    // false when the rate never reached the target
}

// RankedChannel is used for ranking channels by rate.
type RankedChannel struct {
	Slot      int
	Channel   int
	Threshold int
	Value     float64
}

// AnalysisResults holds all results from the analysis.
type AnalysisResults struct {
	TargetRate  float64
	Thresholds  []int
	Summaries   []SlotSummary     // ordered by threshold, then slot
	Crossings   []ChannelCrossing // ordered by slot, then channel
	RankedNoisy []RankedChannel   // by rate at the lowest threshold, descending

	AnalysisErrors []string
}

func NewAnalysisResults(targetRate float64) *AnalysisResults {
	return &AnalysisResults{
		TargetRate:     targetRate,
		Summaries:      make([]SlotSummary, 0),
		Crossings:      make([]ChannelCrossing, 0),
		RankedNoisy:    make([]RankedChannel, 0),
		AnalysisErrors: make([]string, 0),
	}
}
