// Package config provides environment-sourced configuration for the
// ingestion pipeline. A Config is constructed once at process start and
// injected into every component; nothing reads ambient state after
// Load returns.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// MissingKeyError reports a required configuration key that was absent
// at startup, with enough context to act on.
type MissingKeyError struct {
	Key    string
	Source string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing configuration: %s is required for the %s source (set it in the environment or skip the source)", e.Key, e.Source)
}

// TMDBConfig configures the primary REST source.
type TMDBConfig struct {
	APIKey   string
	BaseURL  string
	Language string
	GenreID  int
	YearMin  int
	YearMax  int
	MaxPages int

	// Rate budget: RequestsPerPeriod calls per Period, with a minimum
	// inter-request delay on top.
	RequestsPerPeriod int
	Period            time.Duration
	MinRequestDelay   time.Duration

	// CheckpointInterval is how many discover pages are processed
	// between progress checkpoints.
	CheckpointInterval int
}

// RottenConfig configures the HTML-scraped enrichment source.
type RottenConfig struct {
	BaseURL string

	// MaxConcurrent bounds the worker pool; unbounded concurrency
	// against a scraped target is treated as a correctness violation.
	MaxConcurrent int
	BatchSize     int
	BatchPause    time.Duration

	UserAgent string

	// ProgressInterval is how many films are enriched between
	// processed-ID checkpoints.
	ProgressInterval int
}

// YouTubeConfig configures the quota-limited video source.
type YouTubeConfig struct {
	APIKey         string
	BaseURL        string
	ChannelHandles []string
	MaxVideos      int
	DailyQuota     int
}

// SpotifyConfig configures the OAuth podcast source.
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	BaseURL      string
	ShowIDs      []string
}

// KaggleConfig configures the flat-file source.
type KaggleConfig struct {
	DataDir string
	CSVFile string
}

// IMDBConfig configures the foreign PostgreSQL source.
type IMDBConfig struct {
	DSN      string
	MaxFilms int
}

// SparkConfig configures the big-data SQL gateway boundary.
type SparkConfig struct {
	GatewayURL string
	ViewName   string
	MinVotes   int
}

// AggregateConfig holds the reconciliation thresholds. The similarity
// and year-tolerance defaults were not tuned against a labeled dataset;
// they are deliberately configurable.
type AggregateConfig struct {
	SimilarityThreshold float64
	YearTolerance       int
}

// MatchConfig holds the entity-matcher thresholds.
type MatchConfig struct {
	MinScore        float64
	TrustedChannels []string
}

// ExportConfig configures the optional export step.
type ExportConfig struct {
	Dir string

	// MinIO publication is enabled when Endpoint is set.
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
}

// Config is the process-wide configuration tree.
type Config struct {
	CheckpointDir string

	TMDB      TMDBConfig
	Rotten    RottenConfig
	YouTube   YouTubeConfig
	Spotify   SpotifyConfig
	Kaggle    KaggleConfig
	IMDB      IMDBConfig
	Spark     SparkConfig
	Aggregate AggregateConfig
	Match     MatchConfig
	Export    ExportConfig
}

// Load reads configuration from the environment. Values are defaulted
// where a sane default exists; required credentials are checked by
// Validate, not here, so that skipped sources do not need keys.
func Load() *Config {
	return &Config{
		CheckpointDir: getEnv("PIPELINE_CHECKPOINT_DIR", "data/checkpoints"),
		TMDB: TMDBConfig{
			APIKey:             os.Getenv("TMDB_API_KEY"),
			BaseURL:            getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			Language:           getEnv("TMDB_LANGUAGE", "en-US"),
			GenreID:            getEnvInt("TMDB_HORROR_GENRE_ID", 27),
			YearMin:            getEnvInt("TMDB_YEAR_MIN", 2010),
			YearMax:            getEnvInt("TMDB_YEAR_MAX", 2025),
			MaxPages:           getEnvInt("TMDB_MAX_PAGES", 500),
			RequestsPerPeriod:  getEnvInt("TMDB_REQUESTS_PER_PERIOD", 40),
			Period:             getEnvDuration("TMDB_PERIOD", 10*time.Second),
			MinRequestDelay:    getEnvDuration("TMDB_MIN_REQUEST_DELAY", 250*time.Millisecond),
			CheckpointInterval: getEnvInt("TMDB_CHECKPOINT_SAVE_INTERVAL", 10),
		},
		Rotten: RottenConfig{
			BaseURL:          getEnv("RT_BASE_URL", "https://www.rottentomatoes.com"),
			MaxConcurrent:    getEnvInt("RT_MAX_CONCURRENT", 3),
			BatchSize:        getEnvInt("RT_BATCH_SIZE", 5),
			BatchPause:       getEnvDuration("RT_BATCH_PAUSE", 2*time.Second),
			UserAgent:        getEnv("RT_USER_AGENT", "screamdb-etl/1.0"),
			ProgressInterval: getEnvInt("RT_PROGRESS_INTERVAL", 25),
		},
		YouTube: YouTubeConfig{
			APIKey:         os.Getenv("YOUTUBE_API_KEY"),
			BaseURL:        getEnv("YOUTUBE_BASE_URL", "https://www.googleapis.com/youtube/v3"),
			ChannelHandles: getEnvList("YOUTUBE_CHANNEL_HANDLES"),
			MaxVideos:      getEnvInt("YOUTUBE_MAX_VIDEOS", 200),
			DailyQuota:     getEnvInt("YOUTUBE_DAILY_QUOTA", 10000),
		},
		Spotify: SpotifyConfig{
			ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
			ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
			TokenURL:     getEnv("SPOTIFY_TOKEN_URL", "https://accounts.spotify.com/api/token"),
			BaseURL:      getEnv("SPOTIFY_BASE_URL", "https://api.spotify.com/v1"),
			ShowIDs:      getEnvList("SPOTIFY_SHOW_IDS"),
		},
		Kaggle: KaggleConfig{
			DataDir: getEnv("KAGGLE_DATA_DIR", "data/kaggle"),
			CSVFile: getEnv("KAGGLE_CSV_FILE", "horror_movies.csv"),
		},
		IMDB: IMDBConfig{
			DSN:      os.Getenv("IMDB_POSTGRES_DSN"),
			MaxFilms: getEnvInt("IMDB_MAX_FILMS", 5000),
		},
		Spark: SparkConfig{
			GatewayURL: os.Getenv("SPARK_GATEWAY_URL"),
			ViewName:   getEnv("SPARK_VIEW_NAME", "horror_movies"),
			MinVotes:   getEnvInt("SPARK_MIN_VOTES", 100),
		},
		Aggregate: AggregateConfig{
			SimilarityThreshold: getEnvFloat("DEDUP_SIMILARITY_THRESHOLD", 0.90),
			YearTolerance:       getEnvInt("DEDUP_YEAR_TOLERANCE", 1),
		},
		Match: MatchConfig{
			MinScore:        getEnvFloat("MATCH_MIN_SCORE", 0.70),
			TrustedChannels: getEnvList("MATCH_TRUSTED_CHANNELS"),
		},
		Export: ExportConfig{
			Dir:            getEnv("EXPORT_DIR", "data/export"),
			MinIOEndpoint:  os.Getenv("EXPORT_MINIO_ENDPOINT"),
			MinIOAccessKey: os.Getenv("EXPORT_MINIO_ACCESS_KEY"),
			MinIOSecretKey: os.Getenv("EXPORT_MINIO_SECRET_KEY"),
			MinIOBucket:    getEnv("EXPORT_MINIO_BUCKET", "etl-artifacts"),
			MinIOUseSSL:    getEnvBool("EXPORT_MINIO_USE_SSL", false),
		},
	}
}

// Validate checks that every source which will run has its required
// credentials. It runs eagerly at startup so a misconfigured run fails
// before any network work. Sources named in skip are not checked.
func (c *Config) Validate(skip []string) error {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[strings.TrimSpace(s)] = true
	}

	if !skipped["tmdb"] && c.TMDB.APIKey == "" {
		return &MissingKeyError{Key: "TMDB_API_KEY", Source: "tmdb"}
	}
	if !skipped["youtube"] && c.YouTube.APIKey == "" {
		return &MissingKeyError{Key: "YOUTUBE_API_KEY", Source: "youtube"}
	}
	if !skipped["spotify"] {
		if c.Spotify.ClientID == "" {
			return &MissingKeyError{Key: "SPOTIFY_CLIENT_ID", Source: "spotify"}
		}
		if c.Spotify.ClientSecret == "" {
			return &MissingKeyError{Key: "SPOTIFY_CLIENT_SECRET", Source: "spotify"}
		}
	}
	if !skipped["imdb"] && c.IMDB.DSN == "" {
		return &MissingKeyError{Key: "IMDB_POSTGRES_DSN", Source: "imdb"}
	}
	if !skipped["spark"] && c.Spark.GatewayURL == "" {
		return &MissingKeyError{Key: "SPARK_GATEWAY_URL", Source: "spark"}
	}

	if c.TMDB.RequestsPerPeriod <= 0 || c.TMDB.Period <= 0 {
		return fmt.Errorf("invalid TMDB rate budget: %d per %s", c.TMDB.RequestsPerPeriod, c.TMDB.Period)
	}
	if c.Rotten.MaxConcurrent < 1 {
		return fmt.Errorf("RT_MAX_CONCURRENT must be at least 1, got %d", c.Rotten.MaxConcurrent)
	}
	if c.Aggregate.SimilarityThreshold <= 0 || c.Aggregate.SimilarityThreshold > 1 {
		return fmt.Errorf("DEDUP_SIMILARITY_THRESHOLD must be in (0,1], got %.2f", c.Aggregate.SimilarityThreshold)
	}
	if c.Match.MinScore <= 0 || c.Match.MinScore > 1 {
		return fmt.Errorf("MATCH_MIN_SCORE must be in (0,1], got %.2f", c.Match.MinScore)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
