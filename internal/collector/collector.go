package collector

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/user/ratevthresh_go/internal/parser"
)

// UsageError is returned when no scan suffix was supplied.
type UsageError struct{}

func (UsageError) Error() string { return "at least one scan suffix is required" }

// Config locates the scan files.
type Config struct {
	Dir    string // directory holding the files, "" means the working directory
	Prefix string // filename prefix, "" means parser.DefaultFilePrefix
}

// Collector reads the full slot/channel grid of scan files for each suffix
// into a single RateTable.
type Collector struct {
	fs     afero.Fs
	cfg    Config
	logger *zap.Logger
}

func NewCollector(fsys afero.Fs, cfg Config, logger *zap.Logger) *Collector {
	if cfg.Prefix == "" {
		cfg.Prefix = parser.DefaultFilePrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{fs: fsys, cfg: cfg, logger: logger}
}

// FilePath returns the path of the scan file for one suffix/slot/channel.
func (c *Collector) FilePath(suffix string, slot, channel int) string {
	name := parser.ScanFileName(c.cfg.Prefix, suffix, slot, channel)
	if c.cfg.Dir == "" {
		return name
	}
	return filepath.Join(c.cfg.Dir, name)
}

// Collect reads every file for every suffix. Any missing file or malformed
// line aborts the run; the partially filled table is discarded.
// Later values for the same (threshold, slot, channel) overwrite earlier ones.
func (c *Collector) Collect(suffixes []string) (*RateTable, error) {
	if len(suffixes) == 0 {
		return nil, UsageError{}
	}

	table := NewRateTable()
	for _, suffix := range suffixes {
		records := 0
		for slot := parser.MinSlot; slot <= parser.MaxSlot; slot++ {
			for ch := 0; ch < parser.NumChannels; ch++ {
				n, err := c.collectFile(table, c.FilePath(suffix, slot, ch), slot, ch)
				if err != nil {
					return nil, err
				}
				records += n
			}
		}
		c.logger.Debug("Collected scan",
			zap.String("suffix", suffix),
			zap.Int("records", records),
			zap.Int("thresholds", table.Len()))
	}
	return table, nil
}

func (c *Collector) collectFile(table *RateTable, path string, slot, channel int) (int, error) {
	records, err := parser.ParseRateFile(c.fs, path)
	if err != nil {
		return 0, err
	}
	for _, rec := range records {
		if err := table.Set(rec.Threshold, slot, channel, rec.Count); err != nil {
			return 0, fmt.Errorf("%s:%d: %w", path, rec.Line, err)
		}
	}
	c.logger.Debug("Read scan file", zap.String("path", path), zap.Int("records", len(records)))
	return len(records), nil
}
