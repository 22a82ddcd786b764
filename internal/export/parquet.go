// Package export writes the canonical dataset as a parquet file and
// optionally publishes run artifacts to an object store.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/screamdb/etl-core/internal/core"
)

// parquetFilm is the flat column layout of one canonical record.
// Optional enrichment scores keep their absent/zero distinction.
type parquetFilm struct {
	TMDBID           int32    `parquet:"name=tmdb_id, type=INT32"`
	IMDBID           string   `parquet:"name=imdb_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Title            string   `parquet:"name=title, type=BYTE_ARRAY, convertedtype=UTF8"`
	ReleaseDate      string   `parquet:"name=release_date, type=BYTE_ARRAY, convertedtype=UTF8"`
	Year             int32    `parquet:"name=year, type=INT32"`
	Overview         string   `parquet:"name=overview, type=BYTE_ARRAY, convertedtype=UTF8"`
	Popularity       float64  `parquet:"name=popularity, type=DOUBLE"`
	VoteAverage      float64  `parquet:"name=vote_average, type=DOUBLE"`
	VoteCount        int32    `parquet:"name=vote_count, type=INT32"`
	Runtime          int32    `parquet:"name=runtime, type=INT32"`
	Genres           string   `parquet:"name=genres, type=BYTE_ARRAY, convertedtype=UTF8"`
	TomatometerScore *int32   `parquet:"name=tomatometer_score, type=INT32, repetitiontype=OPTIONAL"`
	AudienceScore    *int32   `parquet:"name=audience_score, type=INT32, repetitiontype=OPTIONAL"`
	IMDBRating       *float64 `parquet:"name=imdb_rating, type=DOUBLE, repetitiontype=OPTIONAL"`
	KaggleRating     *float64 `parquet:"name=kaggle_rating, type=DOUBLE, repetitiontype=OPTIONAL"`
	SparkRating      *float64 `parquet:"name=spark_rating, type=DOUBLE, repetitiontype=OPTIONAL"`
	AggregatedScore  float64  `parquet:"name=aggregated_score, type=DOUBLE"`
	Sources          string   `parquet:"name=sources, type=BYTE_ARRAY, convertedtype=UTF8"`
	EnrichmentCount  int32    `parquet:"name=enrichment_count, type=INT32"`
}

func toParquet(f *core.Film) parquetFilm {
	rec := parquetFilm{
		TMDBID:          int32(f.TMDBID),
		IMDBID:          f.IMDBID,
		Title:           f.Title,
		ReleaseDate:     f.ReleaseDate,
		Year:            int32(f.ReleaseYear()),
		Overview:        f.Overview,
		Popularity:      f.Popularity,
		VoteAverage:     f.VoteAverage,
		VoteCount:       int32(f.VoteCount),
		Runtime:         int32(f.Runtime),
		Genres:          strings.Join(f.Genres, "|"),
		IMDBRating:      f.IMDBRating,
		KaggleRating:    f.KaggleRating,
		SparkRating:     f.SparkRating,
		AggregatedScore: f.AggregatedScore,
		Sources:         strings.Join(f.Sources, "|"),
		EnrichmentCount: int32(f.EnrichmentCount),
	}
	if f.TomatometerScore != nil {
		v := int32(*f.TomatometerScore)
		rec.TomatometerScore = &v
	}
	if f.AudienceScore != nil {
		v := int32(*f.AudienceScore)
		rec.AudienceScore = &v
	}
	return rec
}

// WriteParquet writes the films to a timestamped parquet file under
// dir and returns the file path.
func WriteParquet(dir string, films []core.Film, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("films_%s.parquet", time.Now().UTC().Format("20060102T150405Z")))

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return "", fmt.Errorf("create parquet file: %w", err)
	}
	pw, err := writer.NewParquetWriter(fw, new(parquetFilm), 2)
	if err != nil {
		fw.Close()
		return "", fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i := range films {
		if err := pw.Write(toParquet(&films[i])); err != nil {
			pw.WriteStop()
			fw.Close()
			return "", fmt.Errorf("write record %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return "", fmt.Errorf("finalize parquet: %w", err)
	}
	if err := fw.Close(); err != nil {
		return "", fmt.Errorf("close parquet file: %w", err)
	}

	logger.Info("dataset exported", "path", path, "records", len(films))
	return path, nil
}
