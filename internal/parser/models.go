package parser

import "fmt"

// Grid covered by one DSC crate scan.
const (
	MinSlot     = 4
	MaxSlot     = 11
	NumSlots    = MaxSlot - MinSlot + 1
	NumChannels = 16
)

// DefaultFilePrefix is the prefix ratevsthreshold_allchan gives the roctagm2 discriminator files.
const DefaultFilePrefix = "DSC_ratevthresh_roctagm2_"

// RateRecord is one "threshold count" line of a scan file.
type RateRecord struct {
	Threshold int
	Count     float64
	Line      int // 1-based line number in the source file
}

// ScanFileName builds the name of the file holding one slot/channel curve,
// e.g. DSC_ratevthresh_roctagm2_abcde_s05c09.txt.
// The suffix is used verbatim.
func ScanFileName(prefix, suffix string, slot, channel int) string {
	return fmt.Sprintf("%s%s_s%02dc%02d.txt", prefix, suffix, slot, channel)
}

// ValidSlot reports whether slot lies in the scanned slot range.
func ValidSlot(slot int) bool {
	return slot >= MinSlot && slot <= MaxSlot
}

// ValidChannel reports whether channel lies in 0..NumChannels-1.
func ValidChannel(channel int) bool {
	return channel >= 0 && channel < NumChannels
}
