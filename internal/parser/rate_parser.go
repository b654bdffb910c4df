package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

var errTooFewFields = errors.New("expected threshold and count fields")

// maxLineSize bounds a single line; scan files hold "%4i %10.3f" records.
const maxLineSize = 1024 * 1024

// ParseRateFile opens path on fsys and parses every record in it.
// The file is closed before returning.
func ParseRateFile(fsys afero.Fs, path string) ([]RateRecord, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}
	defer file.Close()

	return ParseRates(file, path)
}

// ParseRates reads "threshold count" records from r. Blank lines are skipped
// and fields after the second are ignored. name is only used in errors.
func ParseRates(r io.Reader, name string) ([]RateRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	var records []RateRecord
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		rec, err := parseFields(fields)
		if err != nil {
			return nil, &ParseError{Path: name, Line: lineNo, Text: text, Err: err}
		}
		rec.Line = lineNo
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, &FileAccessError{Path: name, Err: err}
	}
	return records, nil
}

func parseFields(fields []string) (RateRecord, error) {
	if len(fields) < 2 {
		return RateRecord{}, errTooFewFields
	}
	threshold, err := strconv.Atoi(fields[0])
	if err != nil {
		return RateRecord{}, fmt.Errorf("threshold: %w", err)
	}
	count, err := strconv.ParseFloat(fields[1], 64)
	var numErr *strconv.NumError
	if err != nil && !(errors.As(err, &numErr) && numErr.Err == strconv.ErrRange) {
		return RateRecord{}, fmt.Errorf("count: %w", err)
	}
	// out-of-range counts keep the ±Inf ParseFloat returns
	return RateRecord{Threshold: threshold, Count: count}, nil
}
