package report

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/user/ratevthresh_go/internal/collector"
	"github.com/user/ratevthresh_go/internal/parser"
)

// MissingPolicy selects what WriteText does with a channel that has no value.
type MissingPolicy string

const (
	MissingFail        MissingPolicy = "fail"
	MissingPlaceholder MissingPolicy = "placeholder"
)

const DefaultPlaceholder = "nan"

// ParseMissingPolicy accepts "fail" or "placeholder".
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch p := MissingPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case MissingFail, MissingPlaceholder:
		return p, nil
	case "":
		return MissingFail, nil
	}
	return "", fmt.Errorf("unknown missing-channel policy %q (want %q or %q)", s, MissingFail, MissingPlaceholder)
}

// TextOptions controls WriteText.
type TextOptions struct {
	Missing     MissingPolicy
	Placeholder string
}

// MissingKeyError reports a slot line that cannot be printed because a
// channel was never read at that threshold.
type MissingKeyError struct {
	Threshold int
	Slot      int
	Channel   int
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("no count for threshold %d slot %d channel %d", e.Threshold, e.Slot, e.Channel)
}

// WriteText prints table as
//
//	threshold <t>
//	slot <s>:  <c0> <c1> ... <c15>
//
// with thresholds and slots ascending. Nothing is written to w unless the
// whole table could be rendered.
func WriteText(w io.Writer, table *collector.RateTable, opts TextOptions) error {
	if opts.Missing == "" {
		opts.Missing = MissingFail
	}
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}

	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	for _, th := range table.Thresholds() {
		fmt.Fprintf(bw, "threshold %d\n", th)
		for _, slot := range table.Slots(th) {
			sr, _ := table.Slot(th, slot)
			fmt.Fprintf(bw, "slot %d:  ", slot)
			for ch := 0; ch < parser.NumChannels; ch++ {
				if ch > 0 {
					bw.WriteByte(' ')
				}
				if sr.Filled[ch] {
					bw.WriteString(FormatCount(sr.Counts[ch]))
					continue
				}
				if opts.Missing == MissingFail {
					return &MissingKeyError{Threshold: th, Slot: slot, Channel: ch}
				}
				bw.WriteString(opts.Placeholder)
			}
			bw.WriteByte('\n')
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// FormatCount renders a count the way the scan collector always has:
// up to 12 significant digits, with ".0" on integral values. Exponent form
// is used once the rounded value has 12 integer digits (1e+11 and up) or
// is below 1e-4.
func FormatCount(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	e := strconv.FormatFloat(v, 'e', 11, 64)
	mant, exp, _ := strings.Cut(e, "e")
	if x, _ := strconv.Atoi(exp); x < -4 || x >= 11 {
		mant = strings.TrimRight(strings.TrimRight(mant, "0"), ".")
		return mant + "e" + exp
	}
	s := strconv.FormatFloat(v, 'g', 12, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
