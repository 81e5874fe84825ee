package ffmpeg

import (
	"fmt"
	"strings"
)

// ValidationError reports bad or missing input. No subprocess is started
// for an operation that fails validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ExternalToolError is returned when ffmpeg/ffprobe exits non-zero, fails to
// start or is killed. Stderr holds the captured diagnostic stream.
type ExternalToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExternalToolError) Error() string {
	msg := fmt.Sprintf("%s failed (exit %d): %v", e.Tool, e.ExitCode, e.Err)
	if tail := lastLines(e.Stderr, 5); tail != "" {
		msg += "\nStderr: " + tail
	}
	return msg
}

func (e *ExternalToolError) Unwrap() error { return e.Err }

// ArtifactMissingError is returned when a command reported success but its
// promised output file is absent or empty.
type ArtifactMissingError struct {
	Path  string
	Stage string
}

func (e *ArtifactMissingError) Error() string {
	return fmt.Sprintf("%s: expected output %s was not produced", e.Stage, e.Path)
}

// AudioExtractionError wraps any failure of ExtractAudio.
type AudioExtractionError struct {
	VideoPath string
	Err       error
}

func (e *AudioExtractionError) Error() string {
	return fmt.Sprintf("audio extraction failed for %s: %v", e.VideoPath, e.Err)
}

func (e *AudioExtractionError) Unwrap() error { return e.Err }

// SegmentError identifies the topic (1-based) whose extraction failed first.
type SegmentError struct {
	Index int
	Err   error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d failed: %v", e.Index, e.Err)
}

func (e *SegmentError) Unwrap() error { return e.Err }

// SubtitleBurnError wraps any failure of BurnSubtitles.
type SubtitleBurnError struct {
	OutputPath string
	Err        error
}

func (e *SubtitleBurnError) Error() string {
	return fmt.Sprintf("subtitle burn to %s failed: %v", e.OutputPath, e.Err)
}

func (e *SubtitleBurnError) Unwrap() error { return e.Err }

// DependencyError contains information about a missing external binary.
type DependencyError struct {
	Name       string
	InstallURL string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s not found. Install from: %s", e.Name, e.InstallURL)
}

func lastLines(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
