package collector

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/user/ratevthresh_go/internal/parser"
)

// SlotRates holds the counts of the 16 channels of one slot at one threshold.
// Filled marks which channels were actually read; unset channels stay zero.
type SlotRates struct {
	Counts [parser.NumChannels]float64
	Filled [parser.NumChannels]bool
}

// Complete reports whether every channel has a value.
func (s *SlotRates) Complete() bool {
	for _, ok := range s.Filled {
		if !ok {
			return false
		}
	}
	return true
}

// Missing lists the channels without a value, ascending.
func (s *SlotRates) Missing() []int {
	var missing []int
	for ch, ok := range s.Filled {
		if !ok {
			missing = append(missing, ch)
		}
	}
	return missing
}

// Values returns the filled counts in channel order.
func (s *SlotRates) Values() []float64 {
	vals := make([]float64, 0, parser.NumChannels)
	for ch, ok := range s.Filled {
		if ok {
			vals = append(vals, s.Counts[ch])
		}
	}
	return vals
}

// ThresholdRates holds the slots seen at one threshold, indexed by slot-MinSlot.
type ThresholdRates struct {
	slots [parser.NumSlots]*SlotRates
}

// RateTable maps threshold -> slot -> channel -> count.
// Intermediate levels are created on first write.
type RateTable struct {
	rows map[int]*ThresholdRates
}

func NewRateTable() *RateTable {
	return &RateTable{rows: make(map[int]*ThresholdRates)}
}

// Set stores count for (threshold, slot, channel), overwriting any earlier value.
func (t *RateTable) Set(threshold, slot, channel int, count float64) error {
	if !parser.ValidSlot(slot) {
		return fmt.Errorf("slot %d outside %d..%d", slot, parser.MinSlot, parser.MaxSlot)
	}
	if !parser.ValidChannel(channel) {
		return fmt.Errorf("channel %d outside 0..%d", channel, parser.NumChannels-1)
	}
	row, ok := t.rows[threshold]
	if !ok {
		row = &ThresholdRates{}
		t.rows[threshold] = row
	}
	sr := row.slots[slot-parser.MinSlot]
	if sr == nil {
		sr = &SlotRates{}
		row.slots[slot-parser.MinSlot] = sr
	}
	sr.Counts[channel] = count
	sr.Filled[channel] = true
	return nil
}

// Lookup returns the count stored for (threshold, slot, channel).
func (t *RateTable) Lookup(threshold, slot, channel int) (float64, bool) {
	sr, ok := t.Slot(threshold, slot)
	if !ok || !parser.ValidChannel(channel) || !sr.Filled[channel] {
		return 0, false
	}
	return sr.Counts[channel], true
}

// Slot returns the rates of one slot at one threshold.
func (t *RateTable) Slot(threshold, slot int) (*SlotRates, bool) {
	if !parser.ValidSlot(slot) {
		return nil, false
	}
	row, ok := t.rows[threshold]
	if !ok {
		return nil, false
	}
	sr := row.slots[slot-parser.MinSlot]
	return sr, sr != nil
}

// Thresholds returns all thresholds in ascending order.
func (t *RateTable) Thresholds() []int {
	keys := maps.Keys(t.rows)
	slices.Sort(keys)
	return keys
}

// Slots returns the slots present at threshold in ascending order.
func (t *RateTable) Slots(threshold int) []int {
	row, ok := t.rows[threshold]
	if !ok {
		return nil
	}
	var slots []int
	for i, sr := range row.slots {
		if sr != nil {
			slots = append(slots, i+parser.MinSlot)
		}
	}
	return slots
}

// Curve returns the rate-vs-threshold curve of one channel, ascending in threshold.
// Thresholds where the channel has no value are left out.
func (t *RateTable) Curve(slot, channel int) ([]int, []float64) {
	var thresholds []int
	var counts []float64
	for _, th := range t.Thresholds() {
		if v, ok := t.Lookup(th, slot, channel); ok {
			thresholds = append(thresholds, th)
			counts = append(counts, v)
		}
	}
	return thresholds, counts
}

// Len is the number of distinct thresholds.
func (t *RateTable) Len() int {
	return len(t.rows)
}
