// Package kaggle extracts enrichment records from a downloaded CSV
// dataset. Column positions are resolved from the header row, so
// datasets with reordered or extra columns still load.
package kaggle

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/screamdb/etl-core/internal/config"
	"github.com/screamdb/etl-core/internal/core"
)

// Extractor reads the flat-file source.
type Extractor struct {
	cfg        config.KaggleConfig
	logger     *slog.Logger
	normalizer Normalizer
}

// NewExtractor creates the flat-file extractor.
func NewExtractor(cfg config.KaggleConfig, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		cfg:    cfg,
		logger: logger.With("component", "kaggle"),
	}
}

// Name implements the extractor contract.
func (e *Extractor) Name() string { return "kaggle" }

// Extract reads and normalizes every row. A missing or unreadable file
// is structural; a malformed row is an item error.
func (e *Extractor) Extract(ctx context.Context, params core.ExtractionParams) ([]core.KaggleRecord, *core.ExtractionResult, error) {
	start := time.Now()
	result := &core.ExtractionResult{Source: e.Name()}

	path := filepath.Join(e.cfg.DataDir, e.cfg.CSVFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, result, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, result, fmt.Errorf("read header %s: %w", path, err)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, result, fmt.Errorf("dataset %s: %w", path, err)
	}

	var records []core.KaggleRecord
	line := 1
	for {
		if ctx.Err() != nil {
			return records, result, ctx.Err()
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.AddError(fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if params.MaxItems > 0 && len(records) >= params.MaxItems {
			break
		}
		if rec, ok := e.normalizer.Normalize(row, cols); ok {
			records = append(records, rec)
		}
	}

	result.Success = true
	result.Count = len(records)
	result.Duration = time.Since(start)
	e.logger.Info("extraction finished", "records", len(records),
		"skipped", e.normalizer.Stats.Skipped, "errors", len(result.Errors))
	return records, result, nil
}

// Stats exposes the normalizer's outcome counters.
func (e *Extractor) Stats() core.NormalizerStats {
	return e.normalizer.Stats
}

// columns holds resolved header indexes; -1 means the column is absent.
type columns struct {
	title    int
	date     int
	rating   int
	overview int
}

// resolveColumns maps known header names to indexes. Title is the only
// required column.
func resolveColumns(header []string) (columns, error) {
	cols := columns{title: -1, date: -1, rating: -1, overview: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "title", "original_title":
			if cols.title == -1 {
				cols.title = i
			}
		case "release_date", "year", "release_year":
			if cols.date == -1 {
				cols.date = i
			}
		case "vote_average", "rating", "score":
			if cols.rating == -1 {
				cols.rating = i
			}
		case "overview", "description", "plot":
			if cols.overview == -1 {
				cols.overview = i
			}
		}
	}
	if cols.title == -1 {
		return cols, fmt.Errorf("no title column in header %v", header)
	}
	return cols, nil
}
