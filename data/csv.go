package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantsmith/backtester/common"
)

const csvDateFormat = "2006-01-02"

var errCSVHeaderInvalid = errors.New("csv header requires a date column followed by symbol columns")

// ReadPanelFromCSV loads a wide-format panel where the first column is a
// date (2006-01-02) and every remaining column is a symbol. Empty cells
// are treated as missing data, not zeroes
func ReadPanelFromCSV(path string) (*Panel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not load csv %q: %w", path, err)
	}
	defer f.Close()
	return ParsePanelCSV(f)
}

// ParsePanelCSV parses wide-format panel rows from a reader
func ParsePanelCSV(r io.Reader) (*Panel, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errCSVHeaderInvalid, err)
	}
	if len(header) < 2 {
		return nil, errCSVHeaderInvalid
	}
	symbols := make([]string, len(header)-1)
	for i := 1; i < len(header); i++ {
		symbols[i-1] = strings.TrimSpace(header[i])
	}
	panel := NewPanel()
	var errs common.Errors
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		date, err := time.Parse(csvDateFormat, strings.TrimSpace(record[0]))
		if err != nil {
			errs = append(errs, fmt.Errorf("csv line %d: %w", line, err))
			continue
		}
		for i := 1; i < len(record) && i <= len(symbols); i++ {
			cell := strings.TrimSpace(record[i])
			if cell == "" {
				continue
			}
			value, err := decimal.NewFromString(cell)
			if err != nil {
				errs = append(errs, fmt.Errorf("csv line %d column %q: %w", line, symbols[i-1], err))
				continue
			}
			if err := panel.Set(date, symbols[i-1], value); err != nil {
				return nil, err
			}
		}
	}
	// malformed cells are collected so one pass reports every problem in
	// the file, not just the first
	if len(errs) > 0 {
		return nil, errs
	}
	if panel.Len() == 0 {
		return nil, ErrNoData
	}
	return panel, nil
}
