package ffmpeg

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/sirupsen/logrus"
)

const ffmpegInstallURL = "https://ffmpeg.org/download.html"

// Settings holds the fixed encoding and analysis policy of the pipeline.
type Settings struct {
	FFmpegPath  string
	FFprobePath string

	AudioCodec   string
	AudioBitrate string

	SubtitleVideoCodec string
	SubtitleAudioCodec string

	SilenceNoiseDB       float64
	SilenceMinDuration   float64
	CloseTrailingSilence bool

	// MaxParallelSegments caps concurrent segment extractions. Zero launches
	// every topic at once.
	MaxParallelSegments int
}

// DefaultSettings returns the stock policy: mp3 at 192k, silence below
// -20dB for at least 5s, x264 for subtitle renders.
func DefaultSettings() Settings {
	return Settings{
		FFmpegPath:         "ffmpeg",
		FFprobePath:        "ffprobe",
		AudioCodec:         "libmp3lame",
		AudioBitrate:       "192k",
		SubtitleVideoCodec: "libx264",
		SubtitleAudioCodec: "aac",
		SilenceNoiseDB:     -20,
		SilenceMinDuration: 5,
	}
}

// Processor runs the pipeline stages against an external media engine.
type Processor struct {
	runner Runner
	cfg    Settings
	log    *logrus.Logger
}

// New creates a Processor. Empty settings fields fall back to
// DefaultSettings.
func New(runner Runner, cfg Settings, logger *logrus.Logger) *Processor {
	def := DefaultSettings()
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = def.FFmpegPath
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = def.FFprobePath
	}
	if cfg.AudioCodec == "" {
		cfg.AudioCodec = def.AudioCodec
	}
	if cfg.AudioBitrate == "" {
		cfg.AudioBitrate = def.AudioBitrate
	}
	if cfg.SubtitleVideoCodec == "" {
		cfg.SubtitleVideoCodec = def.SubtitleVideoCodec
	}
	if cfg.SubtitleAudioCodec == "" {
		cfg.SubtitleAudioCodec = def.SubtitleAudioCodec
	}
	if cfg.SilenceMinDuration <= 0 {
		cfg.SilenceMinDuration = def.SilenceMinDuration
	}
	if cfg.SilenceNoiseDB == 0 {
		cfg.SilenceNoiseDB = def.SilenceNoiseDB
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.PanicLevel)
	}
	return &Processor{runner: runner, cfg: cfg, log: logger}
}

// CheckTools reports ffmpeg/ffprobe binaries missing from PATH.
func (p *Processor) CheckTools() []error {
	var errs []error
	for _, bin := range []string{p.cfg.FFmpegPath, p.cfg.FFprobePath} {
		if _, err := exec.LookPath(bin); err != nil {
			errs = append(errs, &DependencyError{Name: bin, InstallURL: ffmpegInstallURL})
		}
	}
	return errs
}

// ensureArtifact is the post-condition applied after every command that
// promises an output file: it must exist, be a regular file and be non-empty.
func ensureArtifact(stage, path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() == 0 {
		return &ArtifactMissingError{Path: path, Stage: stage}
	}
	return nil
}

func requireFile(field, path string) error {
	if path == "" {
		return &ValidationError{Field: field, Message: "path is required"}
	}
	info, err := os.Stat(path)
	if err != nil {
		return &ValidationError{Field: field, Message: fmt.Sprintf("cannot access %s: %v", path, err)}
	}
	if info.IsDir() {
		return &ValidationError{Field: field, Message: fmt.Sprintf("%s is a directory", path)}
	}
	return nil
}

// artifactName appends a job-scoped suffix so concurrent jobs sharing an
// output directory do not overwrite each other's intermediates.
func artifactName(base, jobID string) string {
	if jobID == "" {
		return base
	}
	return base + "_" + jobID
}
