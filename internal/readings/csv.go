package readings

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chrissnell/feedercast/internal/log"
	"github.com/chrissnell/feedercast/internal/timestamp"
)

// CSVSource reads readings from a CSV file with a header row
type CSVSource struct {
	Path            string
	TimestampColumn string
	ValueColumn     string
	Normalizer      *timestamp.Normalizer
}

// NewCSVSource creates a CSV source reading the given value column
func NewCSVSource(path, valueColumn string, n *timestamp.Normalizer) *CSVSource {
	return &CSVSource{
		Path:            path,
		TimestampColumn: TimestampColumn,
		ValueColumn:     valueColumn,
		Normalizer:      n,
	}
}

// Load opens the file and parses it
func (s *CSVSource) Load(ctx context.Context) ([]Reading, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open readings CSV: %w", err)
	}
	defer f.Close()

	rs, stats, err := ParseCSV(ctx, f, s.TimestampColumn, s.ValueColumn, s.Normalizer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}

	log.Debugw("loaded readings CSV", "path", s.Path, "column", s.ValueColumn,
		"rows", stats.Rows, "kept", stats.Kept, "dropped", stats.Dropped)
	return rs, nil
}

// ParseCSV parses CSV data. Malformed rows (wrong field count, bad timestamp,
// non-numeric value) are dropped.
func ParseCSV(ctx context.Context, r io.Reader, tsColumn, valueColumn string, n *timestamp.Normalizer) ([]Reading, Stats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, Stats{}, fmt.Errorf("empty CSV, expected a header row")
		}
		return nil, Stats{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	tsIdx, valIdx := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch name {
		case tsColumn:
			tsIdx = i
		case valueColumn:
			valIdx = i
		}
	}
	if tsIdx < 0 {
		return nil, Stats{}, fmt.Errorf("CSV has no %q column", tsColumn)
	}
	if valIdx < 0 {
		return nil, Stats{}, fmt.Errorf("CSV has no %q column", valueColumn)
	}

	b := &builder{normalizer: n}
	for {
		if err := ctx.Err(); err != nil {
			return nil, Stats{}, err
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				b.stats.Rows++
				b.stats.Dropped++
				continue
			}
			return nil, Stats{}, fmt.Errorf("failed to read CSV: %w", err)
		}

		if tsIdx >= len(record) || valIdx >= len(record) {
			b.stats.Rows++
			b.stats.Dropped++
			continue
		}
		b.add(record[tsIdx], record[valIdx])
	}

	return b.result(), b.stats, nil
}
