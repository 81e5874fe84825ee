package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"videothingy/media-pipeline/internal/ffmpeg"
)

// Store backends.
const (
	StoreSQLite    = "sqlite"
	StorePostgrest = "postgrest"
)

// Config is the runtime configuration shared by the CLI and the server.
type Config struct {
	HTTPAddr string `toml:"http_addr"`
	GRPCAddr string `toml:"grpc_addr"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	FFmpegPath            string  `toml:"ffmpeg_path"`
	FFprobePath           string  `toml:"ffprobe_path"`
	CommandTimeoutSeconds int     `toml:"command_timeout_seconds"`
	AudioBitrate          string  `toml:"audio_bitrate"`
	SilenceNoiseDB        float64 `toml:"silence_noise_db"`
	SilenceMinSeconds     float64 `toml:"silence_min_seconds"`
	CloseTrailingSilence  bool    `toml:"close_trailing_silence"`
	MaxParallelSegments   int     `toml:"max_parallel_segments"`

	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`

	StoreBackend string `toml:"store_backend"`
	SQLitePath   string `toml:"sqlite_path"`
	SupabaseURL  string `toml:"supabase_url"`
	SupabaseKey  string `toml:"supabase_service_key"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() Config {
	return Config{
		HTTPAddr:          ":4000",
		LogLevel:          "info",
		LogFormat:         "json",
		FFmpegPath:        "ffmpeg",
		FFprobePath:       "ffprobe",
		AudioBitrate:      "192k",
		SilenceNoiseDB:    -20,
		SilenceMinSeconds: 5,
		Workers:           5,
		QueueSize:         100,
		StoreBackend:      StoreSQLite,
		SQLitePath:        "pipeline.db",
	}
}

// Load builds a Config from defaults, an optional TOML file and the
// environment, in that order, and validates the result. A missing file at
// an explicitly given path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).DisallowUnknownFields().Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"PIPELINE_HTTP_ADDR":     &c.HTTPAddr,
		"PIPELINE_GRPC_ADDR":     &c.GRPCAddr,
		"PIPELINE_LOG_LEVEL":     &c.LogLevel,
		"PIPELINE_LOG_FORMAT":    &c.LogFormat,
		"PIPELINE_FFMPEG_PATH":   &c.FFmpegPath,
		"PIPELINE_FFPROBE_PATH":  &c.FFprobePath,
		"PIPELINE_AUDIO_BITRATE": &c.AudioBitrate,
		"PIPELINE_STORE_BACKEND": &c.StoreBackend,
		"PIPELINE_SQLITE_PATH":   &c.SQLitePath,
		"SUPABASE_URL":           &c.SupabaseURL,
		"SUPABASE_SERVICE_KEY":   &c.SupabaseKey,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	ints := map[string]*int{
		"PIPELINE_COMMAND_TIMEOUT_SECONDS": &c.CommandTimeoutSeconds,
		"PIPELINE_MAX_PARALLEL_SEGMENTS":   &c.MaxParallelSegments,
		"PIPELINE_WORKERS":                 &c.Workers,
		"PIPELINE_QUEUE_SIZE":              &c.QueueSize,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}

	floats := map[string]*float64{
		"PIPELINE_SILENCE_NOISE_DB":    &c.SilenceNoiseDB,
		"PIPELINE_SILENCE_MIN_SECONDS": &c.SilenceMinSeconds,
	}
	for key, dst := range floats {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = f
	}

	if v, ok := os.LookupEnv("PIPELINE_CLOSE_TRAILING_SILENCE"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("PIPELINE_CLOSE_TRAILING_SILENCE: %w", err)
		}
		c.CloseTrailingSilence = b
	}
	return nil
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.FFmpegPath == "" {
		errs = append(errs, errors.New("ffmpeg_path is required"))
	}
	if c.FFprobePath == "" {
		errs = append(errs, errors.New("ffprobe_path is required"))
	}
	if c.CommandTimeoutSeconds < 0 {
		errs = append(errs, errors.New("command_timeout_seconds must be >= 0"))
	}
	if c.SilenceMinSeconds <= 0 {
		errs = append(errs, errors.New("silence_min_seconds must be > 0"))
	}
	if c.SilenceNoiseDB >= 0 {
		errs = append(errs, errors.New("silence_noise_db must be negative"))
	}
	if c.MaxParallelSegments < 0 {
		errs = append(errs, errors.New("max_parallel_segments must be >= 0"))
	}
	if c.Workers <= 0 {
		errs = append(errs, errors.New("workers must be > 0"))
	}
	if c.QueueSize <= 0 {
		errs = append(errs, errors.New("queue_size must be > 0"))
	}
	switch c.StoreBackend {
	case StoreSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("sqlite_path is required for the sqlite store"))
		}
	case StorePostgrest:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			errs = append(errs, errors.New("SUPABASE_URL and SUPABASE_SERVICE_KEY must be set for the postgrest store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store_backend %q", c.StoreBackend))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// CommandTimeout is the per-invocation limit for external commands.
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutSeconds) * time.Second
}

// PipelineSettings maps the configuration onto the processor policy.
func (c *Config) PipelineSettings() ffmpeg.Settings {
	s := ffmpeg.DefaultSettings()
	s.FFmpegPath = c.FFmpegPath
	s.FFprobePath = c.FFprobePath
	s.AudioBitrate = c.AudioBitrate
	s.SilenceNoiseDB = c.SilenceNoiseDB
	s.SilenceMinDuration = c.SilenceMinSeconds
	s.CloseTrailingSilence = c.CloseTrailingSilence
	s.MaxParallelSegments = c.MaxParallelSegments
	return s
}
